package domain

import "errors"

var (
	ErrMissingParameter   = errors.New("missing parameter")
	ErrUnknownPool        = errors.New("unknown pool")
	ErrDomainNotReady     = errors.New("domain not ready")
	ErrNoAvailableAccount = errors.New("no available account")
)

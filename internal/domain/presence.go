package domain

// State is a presence label as reported by the platform. The platform may
// introduce labels beyond the ones named here; unknown labels are carried
// opaquely and never count as available.
type State string

const (
	StateAvailable State = "AVAILABLE"
	StateBusy      State = "BUSY"
)

// Available reports whether an account in this state may be dispensed.
// Only an exact AVAILABLE counts; any other label is treated conservatively.
func (s State) Available() bool {
	return s == StateAvailable
}

package session

// State is the lifecycle state of a Session.
type State int

const (
	// Idle is the state before the first frame is submitted.
	Idle State = iota
	// Accepting means the encoder takes frames and output is drained between them.
	Accepting
	// Draining is held while a drain cycle runs on an accepting session.
	Draining
	// Flushing follows end of input; only draining is allowed.
	Flushing
	// Closed is terminal: the encoder reported end of stream or failed.
	Closed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Accepting:
		return "accepting"
	case Draining:
		return "draining"
	case Flushing:
		return "flushing"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

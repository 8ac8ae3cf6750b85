// Package session tracks authenticated sessions and their lifecycle.
package session

// State is the session lifecycle state. A session starts Unknown until the
// identity layer reports a definitive state.
type State string

const (
	StateUnknown         State = "unknown"
	StateAuthenticated   State = "authenticated"
	StateUnauthenticated State = "unauthenticated"
)

// Event is a lifecycle notification from the identity layer. The session
// never polls; it only reacts to these.
type Event string

const (
	EventAuthenticated Event = "authenticated"
	EventSignedOut     Event = "signed_out"
	EventExpired       Event = "expired"
)

// Apply is the pure transition function from (state, event) to the next
// state. Unrecognized events leave the state unchanged.
func (s State) Apply(event Event) State {
	switch event {
	case EventAuthenticated:
		return StateAuthenticated
	case EventSignedOut, EventExpired:
		return StateUnauthenticated
	default:
		return s
	}
}

// Live reports whether the session may perform journal operations.
func (s State) Live() bool {
	return s == StateAuthenticated
}

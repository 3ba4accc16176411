package models

// Transport identifies how a subscriber receives signals.
type Transport string

const (
	TransportPush Transport = "PUSH"
	TransportPoll Transport = "POLL"
)

// IsValid returns true if t is a supported transport.
func (t Transport) IsValid() bool {
	return t == TransportPush || t == TransportPoll
}

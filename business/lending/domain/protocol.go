// Package domain contains the core domain types for the lending context.
package domain

// Protocol identifies a supported money-market protocol.
type Protocol string

const (
	// ProtocolAave is Aave V3.
	ProtocolAave Protocol = "aave"

	// ProtocolCompound is Compound V3 (Comet).
	ProtocolCompound Protocol = "compound"
)

// String returns a human-readable protocol name.
func (p Protocol) String() string {
	switch p {
	case ProtocolAave:
		return "Aave V3"
	case ProtocolCompound:
		return "Compound V3"
	default:
		return "Unknown"
	}
}

// Valid reports whether p is a known protocol.
func (p Protocol) Valid() bool {
	return p == ProtocolAave || p == ProtocolCompound
}

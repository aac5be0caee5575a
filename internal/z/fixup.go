package z

// FixupKind enumerates the relocation kinds the encoder emits. The "DBL"
// kinds are PC-relative displacements measured in halfword (2-byte) units,
// following the architecture's branch-target convention.
type FixupKind uint8

const (
	// FixupPC16DBL is a 16-bit PC-relative halfword displacement.
	FixupPC16DBL FixupKind = iota

	// FixupPC32DBL is a 32-bit PC-relative halfword displacement.
	FixupPC32DBL

	// FixupTLSCall marks a call instruction that participates in
	// thread-local-storage resolution. It is anchored at the start of the
	// instruction and carries no in-place value.
	FixupTLSCall
)

// String returns the relocation name used in listings.
func (k FixupKind) String() string {
	switch k {
	case FixupPC16DBL:
		return "PC16DBL"
	case FixupPC32DBL:
		return "PC32DBL"
	case FixupTLSCall:
		return "TLS_CALL"
	}
	return "UNKNOWN"
}

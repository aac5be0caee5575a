// Package optab is the instruction descriptor table: for every supported
// opcode it supplies the mnemonic, the format, the instruction byte length,
// the fixed opcode bits, and the field-placement plan that tells the encoder
// how each operand group is packed into the final instruction value.
//
// The table is hand-maintained from the z/Architecture Principles of
// Operation. It is initialized at package load and never mutated, so it is
// safe for concurrent readers.
package optab

// Op identifies an opcode.
type Op uint16

const (
	// RR
	OpLR Op = iota
	OpAR
	OpSR
	OpCLR
	OpBASR

	// RI
	OpLHI
	OpAHI
	OpMHI
	OpCHI
	OpBRC
	OpBRAS

	// RIL
	OpLARL
	OpLGFI
	OpBRCL
	OpBRASL

	// RX
	OpL
	OpST
	OpLA
	OpIC
	OpSTC

	// RXY
	OpLG
	OpSTG
	OpLGF
	OpLLGF

	// RS
	OpLM
	OpSTM
	OpSLL

	// RSY
	OpLMG
	OpSTMG
	OpSLLG

	// SI
	OpMVI
	OpCLI
	OpTM

	// SS
	OpMVC
	OpCLC
	OpXC

	// VRX
	OpVL
	OpVST

	// VRV
	OpVGEF
	OpVSCEF

	numOps
)

// Format is the instruction format family, named per the Principles of
// Operation.
type Format uint8

const (
	FormatRR Format = iota
	FormatRI
	FormatRIL
	FormatRX
	FormatRXY
	FormatRS
	FormatRSY
	FormatSI
	FormatSS
	FormatVRX
	FormatVRV
)

func (f Format) String() string {
	switch f {
	case FormatRR:
		return "RR"
	case FormatRI:
		return "RI"
	case FormatRIL:
		return "RIL"
	case FormatRX:
		return "RX"
	case FormatRXY:
		return "RXY"
	case FormatRS:
		return "RS"
	case FormatRSY:
		return "RSY"
	case FormatSI:
		return "SI"
	case FormatSS:
		return "SS"
	case FormatVRX:
		return "VRX"
	case FormatVRV:
		return "VRV"
	}
	return "?"
}

// EncKind selects the packer or resolver the encoder runs for a slot.
type EncKind uint8

const (
	EncReg  EncKind = iota // 4-bit register number
	EncVReg                // 5-bit vector register number
	EncImm                 // immediate, truncated to the slot's field width

	EncBDAddr12      // base + 12-bit displacement
	EncBDAddr20      // base + 20-bit split displacement
	EncBDXAddr12     // base + index + 12-bit displacement
	EncBDXAddr20     // base + index + 20-bit split displacement
	EncBDLAddr12Len8 // base + 12-bit displacement + 8-bit length
	EncBDVAddr12     // base + 12-bit displacement + 5-bit vector index

	EncPC16DBL    // 16-bit PC-relative halfword target
	EncPC32DBL    // 32-bit PC-relative halfword target
	EncPC16DBLTLS // as PC16DBL, optional trailing TLS marker
	EncPC32DBLTLS // as PC32DBL, optional trailing TLS marker
)

func (k EncKind) String() string {
	switch k {
	case EncReg:
		return "reg"
	case EncVReg:
		return "vreg"
	case EncImm:
		return "imm"
	case EncBDAddr12:
		return "bdaddr12"
	case EncBDAddr20:
		return "bdaddr20"
	case EncBDXAddr12:
		return "bdxaddr12"
	case EncBDXAddr20:
		return "bdxaddr20"
	case EncBDLAddr12Len8:
		return "bdladdr12len8"
	case EncBDVAddr12:
		return "bdvaddr12"
	case EncPC16DBL:
		return "pc16dbl"
	case EncPC32DBL:
		return "pc32dbl"
	case EncPC16DBLTLS:
		return "pc16dbl+tls"
	case EncPC32DBLTLS:
		return "pc32dbl+tls"
	}
	return "?"
}

// ArgCount is the number of consecutive instruction operands the slot
// consumes, starting at Slot.Arg. The optional TLS marker operand of the
// *TLS kinds is not counted; its presence is detected at encode time.
func (k EncKind) ArgCount() int {
	switch k {
	case EncBDAddr12, EncBDAddr20:
		return 2
	case EncBDXAddr12, EncBDXAddr20, EncBDLAddr12Len8, EncBDVAddr12:
		return 3
	default:
		return 1
	}
}

// PCRel reports whether the slot emits a PC-relative fixup instead of an
// in-place value.
func (k EncKind) PCRel() bool {
	switch k {
	case EncPC16DBL, EncPC32DBL, EncPC16DBLTLS, EncPC32DBLTLS:
		return true
	}
	return false
}

// AllowTLS reports whether the slot accepts a trailing TLS marker operand.
func (k EncKind) AllowTLS() bool {
	return k == EncPC16DBLTLS || k == EncPC32DBLTLS
}

// Field places part of a slot's packed value into the instruction: the
// packed value is masked with Mask, then shifted left by Shift (right when
// Shift is negative) and ORed into the combined instruction value. Most
// slots use a single field; vector formats use a second one to route the
// high register or index bit into the RXB nibble.
type Field struct {
	Mask  uint64
	Shift int
}

// Slot is one entry of an opcode's field-placement plan.
type Slot struct {
	Arg    int // index of the first operand the slot consumes
	Kind   EncKind
	Fields []Field
}

// Desc describes one opcode.
type Desc struct {
	Mnemonic string
	Format   Format
	Length   int    // instruction size in bytes (2, 4 or 6)
	Opcode   uint64 // fixed opcode bits, positioned within Length bytes
	Slots    []Slot
}

func one(mask uint64, shift int) []Field { return []Field{{Mask: mask, Shift: shift}} }

func reg(arg, shift int) Slot { return Slot{Arg: arg, Kind: EncReg, Fields: one(0xf, shift)} }

// vreg places the low 4 bits of a vector register number in the regular
// register position and its high bit in the RXB nibble at rxbShift.
func vreg(arg, shift, rxbShift int) Slot {
	return Slot{Arg: arg, Kind: EncVReg, Fields: []Field{
		{Mask: 0xf, Shift: shift},
		{Mask: 0x10, Shift: rxbShift - 4},
	}}
}

func imm(arg int, mask uint64, shift int) Slot {
	return Slot{Arg: arg, Kind: EncImm, Fields: one(mask, shift)}
}

func mem(arg int, kind EncKind, mask uint64, shift int) Slot {
	return Slot{Arg: arg, Kind: kind, Fields: one(mask, shift)}
}

func pcrel(arg int, kind EncKind, mask uint64) Slot {
	return Slot{Arg: arg, Kind: kind, Fields: one(mask, 0)}
}

// descs maps Op to its descriptor. Operand groups follow packer order:
// addresses are (base, disp), (base, disp, index), (base, disp, length) or
// (base, disp, vector index).
var descs = [numOps]Desc{
	// RR: op8 | R1 | R2
	OpLR:   {"lr", FormatRR, 2, 0x1800, []Slot{reg(0, 4), reg(1, 0)}},
	OpAR:   {"ar", FormatRR, 2, 0x1a00, []Slot{reg(0, 4), reg(1, 0)}},
	OpSR:   {"sr", FormatRR, 2, 0x1b00, []Slot{reg(0, 4), reg(1, 0)}},
	OpCLR:  {"clr", FormatRR, 2, 0x1500, []Slot{reg(0, 4), reg(1, 0)}},
	OpBASR: {"basr", FormatRR, 2, 0x0d00, []Slot{reg(0, 4), reg(1, 0)}},

	// RI: 0xA7 | R1/M1 | op4 | I2/RI2
	OpLHI:  {"lhi", FormatRI, 4, 0xa708_0000, []Slot{reg(0, 20), imm(1, 0xffff, 0)}},
	OpAHI:  {"ahi", FormatRI, 4, 0xa70a_0000, []Slot{reg(0, 20), imm(1, 0xffff, 0)}},
	OpMHI:  {"mhi", FormatRI, 4, 0xa70c_0000, []Slot{reg(0, 20), imm(1, 0xffff, 0)}},
	OpCHI:  {"chi", FormatRI, 4, 0xa70e_0000, []Slot{reg(0, 20), imm(1, 0xffff, 0)}},
	OpBRC:  {"brc", FormatRI, 4, 0xa704_0000, []Slot{imm(0, 0xf, 20), pcrel(1, EncPC16DBL, 0xffff)}},
	OpBRAS: {"bras", FormatRI, 4, 0xa705_0000, []Slot{reg(0, 20), pcrel(1, EncPC16DBLTLS, 0xffff)}},

	// RIL: 0xC0 | R1/M1 | op4 | I2/RI2
	OpLARL:  {"larl", FormatRIL, 6, 0xc000_0000_0000, []Slot{reg(0, 36), pcrel(1, EncPC32DBL, 0xffffffff)}},
	OpLGFI:  {"lgfi", FormatRIL, 6, 0xc001_0000_0000, []Slot{reg(0, 36), imm(1, 0xffffffff, 0)}},
	OpBRCL:  {"brcl", FormatRIL, 6, 0xc004_0000_0000, []Slot{imm(0, 0xf, 36), pcrel(1, EncPC32DBL, 0xffffffff)}},
	OpBRASL: {"brasl", FormatRIL, 6, 0xc005_0000_0000, []Slot{reg(0, 36), pcrel(1, EncPC32DBLTLS, 0xffffffff)}},

	// RX: op8 | R1 | X2 | B2 | D2
	OpL:   {"l", FormatRX, 4, 0x5800_0000, []Slot{reg(0, 20), mem(1, EncBDXAddr12, 0xfffff, 0)}},
	OpST:  {"st", FormatRX, 4, 0x5000_0000, []Slot{reg(0, 20), mem(1, EncBDXAddr12, 0xfffff, 0)}},
	OpLA:  {"la", FormatRX, 4, 0x4100_0000, []Slot{reg(0, 20), mem(1, EncBDXAddr12, 0xfffff, 0)}},
	OpIC:  {"ic", FormatRX, 4, 0x4300_0000, []Slot{reg(0, 20), mem(1, EncBDXAddr12, 0xfffff, 0)}},
	OpSTC: {"stc", FormatRX, 4, 0x4200_0000, []Slot{reg(0, 20), mem(1, EncBDXAddr12, 0xfffff, 0)}},

	// RXY: 0xE3 | R1 | X2 | B2 | DL2 | DH2 | op8
	OpLG:   {"lg", FormatRXY, 6, 0xe300_0000_0004, []Slot{reg(0, 36), mem(1, EncBDXAddr20, 0xfffffff, 8)}},
	OpSTG:  {"stg", FormatRXY, 6, 0xe300_0000_0024, []Slot{reg(0, 36), mem(1, EncBDXAddr20, 0xfffffff, 8)}},
	OpLGF:  {"lgf", FormatRXY, 6, 0xe300_0000_0014, []Slot{reg(0, 36), mem(1, EncBDXAddr20, 0xfffffff, 8)}},
	OpLLGF: {"llgf", FormatRXY, 6, 0xe300_0000_0016, []Slot{reg(0, 36), mem(1, EncBDXAddr20, 0xfffffff, 8)}},

	// RS: op8 | R1 | R3 | B2 | D2
	OpLM:  {"lm", FormatRS, 4, 0x9800_0000, []Slot{reg(0, 20), reg(1, 16), mem(2, EncBDAddr12, 0xffff, 0)}},
	OpSTM: {"stm", FormatRS, 4, 0x9000_0000, []Slot{reg(0, 20), reg(1, 16), mem(2, EncBDAddr12, 0xffff, 0)}},
	OpSLL: {"sll", FormatRS, 4, 0x8900_0000, []Slot{reg(0, 20), mem(1, EncBDAddr12, 0xffff, 0)}},

	// RSY: 0xEB | R1 | R3 | B2 | DL2 | DH2 | op8
	OpLMG:  {"lmg", FormatRSY, 6, 0xeb00_0000_0004, []Slot{reg(0, 36), reg(1, 32), mem(2, EncBDAddr20, 0xffffff, 8)}},
	OpSTMG: {"stmg", FormatRSY, 6, 0xeb00_0000_0024, []Slot{reg(0, 36), reg(1, 32), mem(2, EncBDAddr20, 0xffffff, 8)}},
	OpSLLG: {"sllg", FormatRSY, 6, 0xeb00_0000_000d, []Slot{reg(0, 36), reg(1, 32), mem(2, EncBDAddr20, 0xffffff, 8)}},

	// SI: op8 | I2 | B1 | D1
	OpMVI: {"mvi", FormatSI, 4, 0x9200_0000, []Slot{mem(0, EncBDAddr12, 0xffff, 0), imm(2, 0xff, 16)}},
	OpCLI: {"cli", FormatSI, 4, 0x9500_0000, []Slot{mem(0, EncBDAddr12, 0xffff, 0), imm(2, 0xff, 16)}},
	OpTM:  {"tm", FormatSI, 4, 0x9100_0000, []Slot{mem(0, EncBDAddr12, 0xffff, 0), imm(2, 0xff, 16)}},

	// SS: op8 | L | B1 | D1 | B2 | D2
	OpMVC: {"mvc", FormatSS, 6, 0xd200_0000_0000, []Slot{mem(0, EncBDLAddr12Len8, 0xffffff, 16), mem(3, EncBDAddr12, 0xffff, 0)}},
	OpCLC: {"clc", FormatSS, 6, 0xd500_0000_0000, []Slot{mem(0, EncBDLAddr12Len8, 0xffffff, 16), mem(3, EncBDAddr12, 0xffff, 0)}},
	OpXC:  {"xc", FormatSS, 6, 0xd700_0000_0000, []Slot{mem(0, EncBDLAddr12Len8, 0xffffff, 16), mem(3, EncBDAddr12, 0xffff, 0)}},

	// VRX: 0xE7 | V1 | X2 | B2 | D2 | M3 | RXB | op8
	OpVL:  {"vl", FormatVRX, 6, 0xe700_0000_0006, []Slot{vreg(0, 36, 11), mem(1, EncBDXAddr12, 0xfffff, 16)}},
	OpVST: {"vst", FormatVRX, 6, 0xe700_0000_000e, []Slot{vreg(0, 36, 11), mem(1, EncBDXAddr12, 0xfffff, 16)}},

	// VRV: 0xE7 | V1 | V2 | B2 | D2 | M3 | RXB | op8. The vector index's
	// fifth bit lands in RXB bit 10, the regular fields in bits 35-16.
	OpVGEF: {"vgef", FormatVRV, 6, 0xe700_0000_0013, []Slot{
		vreg(0, 36, 11),
		{Arg: 1, Kind: EncBDVAddr12, Fields: []Field{{Mask: 0xfffff, Shift: 16}, {Mask: 0x100000, Shift: -10}}},
		imm(4, 0xf, 12),
	}},
	OpVSCEF: {"vscef", FormatVRV, 6, 0xe700_0000_001b, []Slot{
		vreg(0, 36, 11),
		{Arg: 1, Kind: EncBDVAddr12, Fields: []Field{{Mask: 0xfffff, Shift: 16}, {Mask: 0x100000, Shift: -10}}},
		imm(4, 0xf, 12),
	}},
}

var byMnemonic = make(map[string]Op, numOps)

func init() {
	for op := Op(0); op < numOps; op++ {
		byMnemonic[descs[op].Mnemonic] = op
	}
}

// Lookup returns the descriptor for op.
func Lookup(op Op) (Desc, bool) {
	if op >= numOps {
		return Desc{}, false
	}
	return descs[op], true
}

// ByMnemonic resolves a lowercase mnemonic to its opcode.
func ByMnemonic(name string) (Op, bool) {
	op, ok := byMnemonic[name]
	return op, ok
}

// Ops returns all opcodes in table order.
func Ops() []Op {
	ops := make([]Op, numOps)
	for i := range ops {
		ops[i] = Op(i)
	}
	return ops
}

// String returns the opcode's mnemonic.
func (op Op) String() string {
	if op >= numOps {
		return "?"
	}
	return descs[op].Mnemonic
}

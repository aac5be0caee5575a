// Package z holds z/Architecture target definitions shared by the encoder:
// the register file with its hardware encoding numbers, and the relocation
// (fixup) kinds the target uses.
package z

import (
	"fmt"
	"strconv"
	"strings"
)

// Reg identifies a machine register. The zero value is R0.
type Reg uint8

// Register numbering is dense per class: 16 GPRs, 16 FPRs, 32 vector
// registers, 16 access registers.
const (
	R0 Reg = iota
	R1
	R2
	R3
	R4
	R5
	R6
	R7
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15

	F0
	F1
	F2
	F3
	F4
	F5
	F6
	F7
	F8
	F9
	F10
	F11
	F12
	F13
	F14
	F15

	V0
	V1
	V2
	V3
	V4
	V5
	V6
	V7
	V8
	V9
	V10
	V11
	V12
	V13
	V14
	V15
	V16
	V17
	V18
	V19
	V20
	V21
	V22
	V23
	V24
	V25
	V26
	V27
	V28
	V29
	V30
	V31

	A0
	A1
	A2
	A3
	A4
	A5
	A6
	A7
	A8
	A9
	A10
	A11
	A12
	A13
	A14
	A15

	numRegs
)

// RegClass is a register bank.
type RegClass uint8

const (
	ClassGPR RegClass = iota // general purpose, 4-bit encoding
	ClassFPR                 // floating point, 4-bit encoding
	ClassVR                  // vector, 5-bit encoding
	ClassAR                  // access, 4-bit encoding
)

// Class returns the register's bank.
func (r Reg) Class() RegClass {
	switch {
	case r < F0:
		return ClassGPR
	case r < V0:
		return ClassFPR
	case r < A0:
		return ClassVR
	default:
		return ClassAR
	}
}

// Encoding returns the hardware encoding number for the register: the
// class-relative index (4 bits for GPR/FPR/AR, 5 bits for VR).
func (r Reg) Encoding() uint8 {
	if r >= numRegs {
		panic(fmt.Sprintf("z: invalid register %d", r))
	}
	switch r.Class() {
	case ClassGPR:
		return uint8(r - R0)
	case ClassFPR:
		return uint8(r - F0)
	case ClassVR:
		return uint8(r - V0)
	default:
		return uint8(r - A0)
	}
}

// String returns the assembler name, e.g. "%r1" or "%v24".
func (r Reg) String() string {
	n := r.Encoding()
	switch r.Class() {
	case ClassGPR:
		return fmt.Sprintf("%%r%d", n)
	case ClassFPR:
		return fmt.Sprintf("%%f%d", n)
	case ClassVR:
		return fmt.Sprintf("%%v%d", n)
	default:
		return fmt.Sprintf("%%a%d", n)
	}
}

// ParseReg parses an assembler register name such as "%r15" or "v3".
// The leading percent sign is optional; names are case-insensitive.
func ParseReg(s string) (Reg, error) {
	name := strings.ToLower(strings.TrimPrefix(s, "%"))
	if len(name) < 2 {
		return 0, fmt.Errorf("invalid register %q", s)
	}

	n, err := strconv.Atoi(name[1:])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid register %q", s)
	}

	var base Reg
	var limit int
	switch name[0] {
	case 'r':
		base, limit = R0, 16
	case 'f':
		base, limit = F0, 16
	case 'v':
		base, limit = V0, 32
	case 'a':
		base, limit = A0, 16
	default:
		return 0, fmt.Errorf("invalid register %q", s)
	}
	if n >= limit {
		return 0, fmt.Errorf("register number out of range in %q", s)
	}
	return base + Reg(n), nil
}

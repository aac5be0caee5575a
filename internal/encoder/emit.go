package encoder

import (
	"fmt"

	"zenc/internal/expr"
	"zenc/internal/optab"
	"zenc/internal/z"
)

// Encoder encodes instructions against the descriptor table in
// zenc/internal/optab. Expressions created during encoding (adjusted branch
// targets) are allocated from the caller-supplied context.
//
// An Encoder retains no state between Encode calls; concurrent use is safe
// as long as each goroutine has its own expression context.
type Encoder struct {
	ctx *expr.Context
}

// New returns an encoder allocating expressions from ctx.
func New(ctx *expr.Context) *Encoder {
	return &Encoder{ctx: ctx}
}

// opValue resolves a single operand to its raw encoding value: the
// register's hardware number, or the immediate reinterpreted as unsigned.
// Expression operands have no direct value; they must be routed to the
// PC-relative path, so reaching one here is fatal.
func opValue(o Operand) uint64 {
	switch o.Kind() {
	case KindReg:
		return uint64(o.Reg().Encoding())
	case KindImm:
		return uint64(o.Imm())
	}
	panic(fmt.Sprintf("encoder: expression operand %s reached the value resolver", o))
}

// placeField ORs the masked, shifted portion of a packed value into bits.
func placeField(bits, v uint64, f optab.Field) uint64 {
	v &= f.Mask
	if f.Shift >= 0 {
		return bits | v<<uint(f.Shift)
	}
	return bits | v>>uint(-f.Shift)
}

// immValue resolves an immediate slot and checks that it fits the field.
// Both unsigned values and sign-extended negatives of the field's width
// are accepted; anything wider is an upstream selection error.
func immValue(o Operand, mask uint64) uint64 {
	v := opValue(o)
	if v&^mask != 0 && v|mask != ^uint64(0) {
		panic(fmt.Sprintf("encoder: immediate %d does not fit field mask %#x", int64(v), mask))
	}
	return v
}

// slotValue evaluates one descriptor slot, dispatching to the resolver,
// the addressing-mode packers, or the PC-relative fixup generator.
func (e *Encoder) slotValue(inst Inst, s optab.Slot, fixups []Fixup) (uint64, []Fixup) {
	if s.Arg+s.Kind.ArgCount() > len(inst.Operands) {
		panic(fmt.Sprintf("encoder: %s: slot needs operands %d..%d, have %d",
			inst.Op, s.Arg, s.Arg+s.Kind.ArgCount()-1, len(inst.Operands)))
	}

	switch s.Kind {
	case optab.EncReg:
		v := opValue(inst.Operands[s.Arg])
		fitsUint(v, 4, "register")
		return v, fixups
	case optab.EncVReg:
		v := opValue(inst.Operands[s.Arg])
		fitsUint(v, 5, "vector register")
		return v, fixups
	case optab.EncImm:
		return immValue(inst.Operands[s.Arg], s.Fields[0].Mask), fixups
	case optab.EncBDAddr12:
		return bdAddr12(inst, s.Arg), fixups
	case optab.EncBDAddr20:
		return bdAddr20(inst, s.Arg), fixups
	case optab.EncBDXAddr12:
		return bdxAddr12(inst, s.Arg), fixups
	case optab.EncBDXAddr20:
		return bdxAddr20(inst, s.Arg), fixups
	case optab.EncBDLAddr12Len8:
		return bdlAddr12Len8(inst, s.Arg), fixups
	case optab.EncBDVAddr12:
		return bdvAddr12(inst, s.Arg), fixups
	case optab.EncPC16DBL:
		return e.pcRel(inst, s.Arg, z.FixupPC16DBL, pcRelOffset, false, fixups)
	case optab.EncPC32DBL:
		return e.pcRel(inst, s.Arg, z.FixupPC32DBL, pcRelOffset, false, fixups)
	case optab.EncPC16DBLTLS:
		return e.pcRel(inst, s.Arg, z.FixupPC16DBL, pcRelOffset, true, fixups)
	case optab.EncPC32DBLTLS:
		return e.pcRel(inst, s.Arg, z.FixupPC32DBL, pcRelOffset, true, fixups)
	}
	panic(fmt.Sprintf("encoder: unknown slot kind %d", s.Kind))
}

// Encode appends the byte encoding of inst to dst and any relocation
// records to fixups, returning both. One call encodes one instruction;
// output is deterministic and no state is carried between calls.
func (e *Encoder) Encode(dst []byte, inst Inst, fixups []Fixup) ([]byte, []Fixup) {
	d, ok := optab.Lookup(inst.Op)
	if !ok {
		panic(fmt.Sprintf("encoder: unknown opcode %d", inst.Op))
	}

	bits := d.Opcode
	for _, s := range d.Slots {
		var v uint64
		v, fixups = e.slotValue(inst, s, fixups)
		for _, f := range s.Fields {
			bits = placeField(bits, v, f)
		}
	}

	// Big-endian, most significant byte first, independent of host order.
	for shift := (d.Length - 1) * 8; shift >= 0; shift -= 8 {
		dst = append(dst, byte(bits>>uint(shift)))
	}
	return dst, fixups
}

// Length returns the byte length of the instruction for op.
func Length(op optab.Op) int {
	d, ok := optab.Lookup(op)
	if !ok {
		panic(fmt.Sprintf("encoder: unknown opcode %d", op))
	}
	return d.Length
}

package encoder

import (
	"zenc/internal/z"
)

// pcRelOffset is the byte offset of the displacement field from the start
// of the instruction. It is the same for every relative-branch format of
// this architecture.
const pcRelOffset = 2

// pcRel handles a PC-relative branch or call target at operand index op.
// It appends a fixup of the given kind anchored offset bytes into the
// instruction and returns the in-place addend, which is always 0: the
// displacement is resolved entirely through the relocation.
//
// If allowTLS is set and a trailing operand exists, a second fixup is
// appended for the TLS call marker co-located with the branch.
func (e *Encoder) pcRel(inst Inst, op int, kind z.FixupKind, offset int64, allowTLS bool, fixups []Fixup) (uint64, []Fixup) {
	mo := inst.Operands[op]

	var ex = mo.Expr()
	if mo.IsImm() {
		// A constant target needs no further relocation, so the field
		// offset is folded directly into the value.
		ex = e.ctx.Constant(mo.Imm() + offset)
	} else if offset != 0 {
		// The operand value is relative to the start of the instruction,
		// but the fixup is anchored at the field itself, offset bytes in.
		// Adding the offset to the relocation value cancels the
		// difference.
		ex = e.ctx.Add(ex, e.ctx.Constant(offset))
	}
	fixups = append(fixups, Fixup{Offset: int(offset), Expr: ex, Kind: kind})

	if allowTLS && op+1 < len(inst.Operands) {
		fixups = append(fixups, Fixup{Offset: 0, Expr: inst.Operands[op+1].Expr(), Kind: z.FixupTLSCall})
	}
	return 0, fixups
}

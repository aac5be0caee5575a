package encoder

import "fmt"

// fitsUint panics unless v fits in bits as an unsigned value. Operand
// values were chosen by an earlier, correct-by-construction stage; an
// overflow here is an internal consistency error.
func fitsUint(v uint64, bits uint, what string) {
	if v>>bits != 0 {
		panic(fmt.Sprintf("encoder: %s value %#x does not fit in %d bits", what, v, bits))
	}
}

// fitsInt panics unless v, reinterpreted as signed, fits in bits.
func fitsInt(v uint64, bits uint, what string) {
	sv := int64(v)
	min, max := int64(-1)<<(bits-1), int64(1)<<(bits-1)-1
	if sv < min || sv > max {
		panic(fmt.Sprintf("encoder: %s value %d does not fit in %d signed bits", what, sv, bits))
	}
}

// splitDisp20 places a 20-bit displacement in its split form: the low 12
// bits sit above the high 8 bits.
func splitDisp20(disp uint64) uint64 {
	return ((disp & 0xfff) << 8) | ((disp & 0xff000) >> 12)
}

// The address packers consume a run of operands starting at op and return
// the packed value for that addressing mode. Operand order within a group
// is base, displacement, then index or length, matching the descriptor
// table's operand layout.

// bdAddr12 packs base(4) and displacement(12).
func bdAddr12(inst Inst, op int) uint64 {
	base := opValue(inst.Operands[op])
	disp := opValue(inst.Operands[op+1])
	fitsUint(base, 4, "base")
	fitsUint(disp, 12, "displacement")
	return base<<12 | disp
}

// bdAddr20 packs base(4) and a signed 20-bit displacement in split form.
func bdAddr20(inst Inst, op int) uint64 {
	base := opValue(inst.Operands[op])
	disp := opValue(inst.Operands[op+1])
	fitsUint(base, 4, "base")
	fitsInt(disp, 20, "displacement")
	return base<<20 | splitDisp20(disp)
}

// bdxAddr12 packs base(4), displacement(12) and index(4).
func bdxAddr12(inst Inst, op int) uint64 {
	base := opValue(inst.Operands[op])
	disp := opValue(inst.Operands[op+1])
	index := opValue(inst.Operands[op+2])
	fitsUint(base, 4, "base")
	fitsUint(disp, 12, "displacement")
	fitsUint(index, 4, "index")
	return index<<16 | base<<12 | disp
}

// bdxAddr20 packs base(4), a signed split displacement(20) and index(4).
func bdxAddr20(inst Inst, op int) uint64 {
	base := opValue(inst.Operands[op])
	disp := opValue(inst.Operands[op+1])
	index := opValue(inst.Operands[op+2])
	fitsUint(base, 4, "base")
	fitsInt(disp, 20, "displacement")
	fitsUint(index, 4, "index")
	return index<<24 | base<<20 | splitDisp20(disp)
}

// bdlAddr12Len8 packs base(4), displacement(12) and length(8). The encoded
// length field holds the operand length minus one.
func bdlAddr12Len8(inst Inst, op int) uint64 {
	base := opValue(inst.Operands[op])
	disp := opValue(inst.Operands[op+1])
	length := opValue(inst.Operands[op+2]) - 1
	fitsUint(base, 4, "base")
	fitsUint(disp, 12, "displacement")
	fitsUint(length, 8, "length")
	return length<<16 | base<<12 | disp
}

// bdvAddr12 packs base(4), displacement(12) and a 5-bit vector index.
func bdvAddr12(inst Inst, op int) uint64 {
	base := opValue(inst.Operands[op])
	disp := opValue(inst.Operands[op+1])
	index := opValue(inst.Operands[op+2])
	fitsUint(base, 4, "base")
	fitsUint(disp, 12, "displacement")
	fitsUint(index, 5, "vector index")
	return index<<16 | base<<12 | disp
}

package optab

import "testing"

// placedBits returns the instruction bits a field can touch.
func placedBits(f Field) uint64 {
	if f.Shift >= 0 {
		return f.Mask << uint(f.Shift)
	}
	return f.Mask >> uint(-f.Shift)
}

func TestTableConsistency(t *testing.T) {
	for _, op := range Ops() {
		d, ok := Lookup(op)
		if !ok {
			t.Fatalf("Lookup(%d) failed", op)
		}
		t.Run(d.Mnemonic, func(t *testing.T) {
			if d.Mnemonic == "" {
				t.Fatal("missing mnemonic")
			}
			if d.Length != 2 && d.Length != 4 && d.Length != 6 {
				t.Errorf("length %d, want 2, 4 or 6", d.Length)
			}

			limit := uint64(1)<<(uint(d.Length)*8) - 1
			if d.Opcode > limit {
				t.Errorf("opcode bits %#x exceed %d-byte instruction", d.Opcode, d.Length)
			}

			// Fields must stay within the instruction and must not collide
			// with the fixed opcode bits or each other.
			used := d.Opcode
			args := 0
			for _, s := range d.Slots {
				if len(s.Fields) == 0 {
					t.Errorf("slot at arg %d has no fields", s.Arg)
				}
				if s.Arg < args {
					t.Errorf("slot args not in order: %d after %d", s.Arg, args)
				}
				args = s.Arg + s.Kind.ArgCount()
				for _, f := range s.Fields {
					bits := placedBits(f)
					if bits > limit {
						t.Errorf("field %+v reaches past the instruction", f)
					}
					if used&bits != 0 {
						t.Errorf("field %+v overlaps bits %#x", f, used&bits)
					}
					used |= bits
				}
			}
		})
	}
}

func TestByMnemonic(t *testing.T) {
	for _, op := range Ops() {
		d, _ := Lookup(op)
		got, ok := ByMnemonic(d.Mnemonic)
		if !ok || got != op {
			t.Errorf("ByMnemonic(%q) = %v, %v; want %v", d.Mnemonic, got, ok, op)
		}
	}
	if _, ok := ByMnemonic("nonsense"); ok {
		t.Error("ByMnemonic accepted an unknown mnemonic")
	}
}

func TestArgCount(t *testing.T) {
	tests := []struct {
		kind EncKind
		want int
	}{
		{EncReg, 1},
		{EncVReg, 1},
		{EncImm, 1},
		{EncBDAddr12, 2},
		{EncBDAddr20, 2},
		{EncBDXAddr12, 3},
		{EncBDXAddr20, 3},
		{EncBDLAddr12Len8, 3},
		{EncBDVAddr12, 3},
		{EncPC16DBL, 1},
		{EncPC32DBLTLS, 1},
	}
	for _, tt := range tests {
		if got := tt.kind.ArgCount(); got != tt.want {
			t.Errorf("ArgCount(%d) = %d, want %d", tt.kind, got, tt.want)
		}
	}
}

func TestKindPredicates(t *testing.T) {
	if !EncPC16DBL.PCRel() || !EncPC32DBLTLS.PCRel() || EncBDAddr12.PCRel() {
		t.Error("PCRel misclassifies kinds")
	}
	if !EncPC16DBLTLS.AllowTLS() || !EncPC32DBLTLS.AllowTLS() || EncPC32DBL.AllowTLS() {
		t.Error("AllowTLS misclassifies kinds")
	}
}

func TestRelativeBranchLayout(t *testing.T) {
	// Every PC-relative opcode keeps its displacement field in the low
	// bits, two bytes from the instruction start.
	for _, op := range Ops() {
		d, _ := Lookup(op)
		for _, s := range d.Slots {
			if !s.Kind.PCRel() {
				continue
			}
			if len(s.Fields) != 1 || s.Fields[0].Shift != 0 {
				t.Errorf("%s: relative field not at bit 0", d.Mnemonic)
			}
			wantMask := uint64(0xffff)
			if s.Kind == EncPC32DBL || s.Kind == EncPC32DBLTLS {
				wantMask = 0xffffffff
			}
			if s.Fields[0].Mask != wantMask {
				t.Errorf("%s: field mask %#x, want %#x", d.Mnemonic, s.Fields[0].Mask, wantMask)
			}
		}
	}
}

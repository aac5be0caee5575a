package asm

import (
	"bytes"
	"testing"

	"zenc/internal/encoder"
	"zenc/internal/expr"
	"zenc/internal/z"
)

// encode runs a parsed line through the encoder, so these tests double as
// end-to-end checks of the text form.
func encode(t *testing.T, line string) ([]byte, []encoder.Fixup) {
	t.Helper()
	ctx := expr.NewContext()
	inst, err := NewReader(ctx).ReadInst(line)
	if err != nil {
		t.Fatalf("ReadInst(%q) failed: %v", line, err)
	}
	return encoder.New(ctx).Encode(nil, inst, nil)
}

func TestReadAndEncode(t *testing.T) {
	tests := []struct {
		line string
		want []byte
	}{
		{"lr %r1,%r2", []byte{0x18, 0x12}},
		{"LR %R1,%R2", []byte{0x18, 0x12}},
		{"lr %r1,%r2 # copy", []byte{0x18, 0x12}},
		{"lhi %r1,-1", []byte{0xa7, 0x18, 0xff, 0xff}},
		{"lhi %r1,0x7fff", []byte{0xa7, 0x18, 0x7f, 0xff}},
		{"l %r1,2064(%r10,%r5)", []byte{0x58, 0x1a, 0x58, 0x10}},
		{"l %r1,8(%r2)", []byte{0x58, 0x10, 0x20, 0x08}},
		{"la %r1,4095(%r2,%r3)", []byte{0x41, 0x12, 0x3f, 0xff}},
		{"lg %r1,-524288(%r2,%r3)", []byte{0xe3, 0x12, 0x30, 0x00, 0x80, 0x04}},
		{"lm %r2,%r4,16(%r13)", []byte{0x98, 0x24, 0xd0, 0x10}},
		{"lmg %r6,%r15,48(%r15)", []byte{0xeb, 0x6f, 0xf0, 0x30, 0x00, 0x04}},
		{"mvi 0(%r1),255", []byte{0x92, 0xff, 0x10, 0x00}},
		{"mvc 0(256,%r1),0(%r2)", []byte{0xd2, 0xff, 0x10, 0x00, 0x20, 0x00}},
		{"sll %r1,3(%r0)", []byte{0x89, 0x10, 0x00, 0x03}},
		{"vl %v17,0(%r2)", []byte{0xe7, 0x10, 0x20, 0x00, 0x08, 0x06}},
		{"vgef %v1,100(%v20,%r3),2", []byte{0xe7, 0x14, 0x30, 0x64, 0x24, 0x13}},
		{"brc 15,0", []byte{0xa7, 0xf4, 0x00, 0x00}},
		{"brasl %r14,printf", []byte{0xc0, 0xe5, 0x00, 0x00, 0x00, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, _ := encode(t, tt.line)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("encoded % x, want % x", got, tt.want)
			}
		})
	}
}

func TestReadFixups(t *testing.T) {
	_, fixups := encode(t, "brasl %r14,__tls_get_offset,x:tls")
	if len(fixups) != 2 {
		t.Fatalf("got %d fixups, want 2", len(fixups))
	}
	if fixups[0].Kind != z.FixupPC32DBL || fixups[0].Expr.String() != "__tls_get_offset+2" {
		t.Errorf("call fixup = %v", fixups[0])
	}
	if fixups[1].Kind != z.FixupTLSCall || fixups[1].Expr.String() != "x" {
		t.Errorf("TLS fixup = %v", fixups[1])
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"empty", ""},
		{"comment only", "  # nothing"},
		{"unknown mnemonic", "frob %r1,%r2"},
		{"missing operand", "lr %r1"},
		{"extra operand", "lr %r1,%r2,%r3"},
		{"bad register", "lr %r1,%r16"},
		{"bad immediate", "lhi %r1,abc"},
		{"bad address", "l %r1,nope"},
		{"three address parts", "l %r1,0(%r1,%r2,%r3)"},
		{"unbalanced parens", "l %r1,0(%r2"},
		{"scalar index on vgef", "vgef %v1,0(%r2,%r3),0"},
		{"bad branch target", "brc 15,not a symbol"},
		{"trailing non tls operand", "brasl %r14,foo,bar"},
		{"tls marker on plain branch", "brc 15,foo,x:tls"},
	}

	ctx := expr.NewContext()
	r := NewReader(ctx)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if inst, err := r.ReadInst(tt.line); err == nil {
				t.Errorf("ReadInst(%q) = %v, want error", tt.line, inst)
			}
		})
	}
}

func TestSplitOperands(t *testing.T) {
	got, err := splitOperands("0(256,%r1),0(%r2)")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != "0(256,%r1)" || got[1] != "0(%r2)" {
		t.Errorf("splitOperands = %q", got)
	}
}

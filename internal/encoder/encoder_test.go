package encoder

import (
	"bytes"
	"testing"

	"zenc/internal/expr"
	"zenc/internal/optab"
	"zenc/internal/z"
)

func mustPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	fn()
}

func TestBDAddr12RoundTrip(t *testing.T) {
	// Packing then the documented unpacking must recover the inputs.
	for base := int64(0); base < 16; base++ {
		for _, disp := range []int64{0, 1, 0x123, 0x800, 0xfff} {
			inst := Inst{Operands: []Operand{ImmOp(base), ImmOp(disp)}}
			v := bdAddr12(inst, 0)
			if got := v >> 12; got != uint64(base) {
				t.Fatalf("base=%d disp=%#x: unpacked base %d", base, disp, got)
			}
			if got := v & 0xfff; got != uint64(disp) {
				t.Fatalf("base=%d disp=%#x: unpacked disp %#x", base, disp, got)
			}
		}
	}
}

func TestBDAddr20SplitRoundTrip(t *testing.T) {
	// The 20-bit displacement is stored as low 12 bits above high 8 bits;
	// reassembly must be exact, including negative displacements.
	for base := int64(0); base < 16; base++ {
		for _, disp := range []int64{0, 1, 0x7ffff, -1, -0x80000, 0x12345, -0x12345} {
			inst := Inst{Operands: []Operand{ImmOp(base), ImmOp(disp)}}
			v := bdAddr20(inst, 0)
			if got := v >> 20; got != uint64(base) {
				t.Fatalf("base=%d disp=%d: unpacked base %d", base, disp, got)
			}
			reassembled := ((v & 0xff) << 12) | ((v >> 8) & 0xfff)
			if got := int64(reassembled<<44) >> 44; got != disp {
				t.Fatalf("base=%d disp=%d: reassembled %d", base, disp, got)
			}
		}
	}
}

func TestPackerValues(t *testing.T) {
	tests := []struct {
		name string
		pack func(Inst, int) uint64
		ops  []Operand
		want uint64
	}{
		{
			name: "bdx12",
			pack: bdxAddr12,
			ops:  []Operand{ImmOp(5), ImmOp(0x123), ImmOp(3)},
			want: 0x35123,
		},
		{
			name: "bdl12 stores length minus one",
			pack: bdlAddr12Len8,
			ops:  []Operand{ImmOp(1), ImmOp(0x10), ImmOp(5)},
			want: 0x41010,
		},
		{
			name: "bdl12 max length",
			pack: bdlAddr12Len8,
			ops:  []Operand{ImmOp(0), ImmOp(0), ImmOp(256)},
			want: 0xff0000,
		},
		{
			name: "bdv12 five bit index",
			pack: bdvAddr12,
			ops:  []Operand{ImmOp(2), ImmOp(0x064), ImmOp(20)},
			want: 0x142064,
		},
		{
			name: "bdx20 negative disp",
			pack: bdxAddr20,
			ops:  []Operand{ImmOp(3), ImmOp(-524288), ImmOp(2)},
			want: 0x2300080,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.pack(Inst{Operands: tt.ops}, 0)
			if got != tt.want {
				t.Errorf("packed %#x, want %#x", got, tt.want)
			}
		})
	}
}

func TestPackerRangeChecks(t *testing.T) {
	tests := []struct {
		name string
		fn   func()
	}{
		{"base too wide", func() {
			bdAddr12(Inst{Operands: []Operand{ImmOp(16), ImmOp(0)}}, 0)
		}},
		{"disp12 too wide", func() {
			bdAddr12(Inst{Operands: []Operand{ImmOp(0), ImmOp(0x1000)}}, 0)
		}},
		{"disp20 too wide", func() {
			bdAddr20(Inst{Operands: []Operand{ImmOp(0), ImmOp(0x80000)}}, 0)
		}},
		{"disp20 too negative", func() {
			bdAddr20(Inst{Operands: []Operand{ImmOp(0), ImmOp(-0x80001)}}, 0)
		}},
		{"index too wide", func() {
			bdxAddr12(Inst{Operands: []Operand{ImmOp(0), ImmOp(0), ImmOp(16)}}, 0)
		}},
		{"length zero wraps", func() {
			bdlAddr12Len8(Inst{Operands: []Operand{ImmOp(0), ImmOp(0), ImmOp(0)}}, 0)
		}},
		{"length too long", func() {
			bdlAddr12Len8(Inst{Operands: []Operand{ImmOp(0), ImmOp(0), ImmOp(257)}}, 0)
		}},
		{"vector index too wide", func() {
			bdvAddr12(Inst{Operands: []Operand{ImmOp(0), ImmOp(0), ImmOp(32)}}, 0)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mustPanic(t, tt.fn)
		})
	}
}

func TestResolverRejectsExpressions(t *testing.T) {
	ctx := expr.NewContext()
	mustPanic(t, func() {
		opValue(ExprOp(ctx.Symbol("foo")))
	})
}

func TestGoldenEncodings(t *testing.T) {
	ctx := expr.NewContext()
	e := New(ctx)

	tests := []struct {
		name string
		inst Inst
		want []byte
	}{
		{
			name: "lr r1 r2",
			inst: Inst{Op: optab.OpLR, Operands: []Operand{RegOp(z.R1), RegOp(z.R2)}},
			want: []byte{0x18, 0x12},
		},
		{
			name: "ar r7 r15",
			inst: Inst{Op: optab.OpAR, Operands: []Operand{RegOp(z.R7), RegOp(z.R15)}},
			want: []byte{0x1a, 0x7f},
		},
		{
			name: "basr r14 r1",
			inst: Inst{Op: optab.OpBASR, Operands: []Operand{RegOp(z.R14), RegOp(z.R1)}},
			want: []byte{0x0d, 0xe1},
		},
		{
			name: "lhi r1 minus one",
			inst: Inst{Op: optab.OpLHI, Operands: []Operand{RegOp(z.R1), ImmOp(-1)}},
			want: []byte{0xa7, 0x18, 0xff, 0xff},
		},
		{
			name: "ahi r3 300",
			inst: Inst{Op: optab.OpAHI, Operands: []Operand{RegOp(z.R3), ImmOp(300)}},
			want: []byte{0xa7, 0x3a, 0x01, 0x2c},
		},
		{
			name: "lgfi big endian serialization",
			inst: Inst{Op: optab.OpLGFI, Operands: []Operand{RegOp(z.R1), ImmOp(0x12345678)}},
			want: []byte{0xc0, 0x11, 0x12, 0x34, 0x56, 0x78},
		},
		{
			name: "l with index",
			inst: Inst{Op: optab.OpL, Operands: []Operand{RegOp(z.R1), RegOp(z.R5), ImmOp(0x810), RegOp(z.R10)}},
			want: []byte{0x58, 0x1a, 0x58, 0x10},
		},
		{
			name: "la max disp",
			inst: Inst{Op: optab.OpLA, Operands: []Operand{RegOp(z.R1), RegOp(z.R3), ImmOp(4095), RegOp(z.R2)}},
			want: []byte{0x41, 0x12, 0x3f, 0xff},
		},
		{
			name: "lg min disp",
			inst: Inst{Op: optab.OpLG, Operands: []Operand{RegOp(z.R1), RegOp(z.R3), ImmOp(-524288), RegOp(z.R2)}},
			want: []byte{0xe3, 0x12, 0x30, 0x00, 0x80, 0x04},
		},
		{
			name: "lg max disp no index",
			inst: Inst{Op: optab.OpLG, Operands: []Operand{RegOp(z.R2), RegOp(z.R15), ImmOp(524287), RegOp(z.R0)}},
			want: []byte{0xe3, 0x20, 0xff, 0xff, 0x7f, 0x04},
		},
		{
			name: "lm",
			inst: Inst{Op: optab.OpLM, Operands: []Operand{RegOp(z.R2), RegOp(z.R4), RegOp(z.R13), ImmOp(16)}},
			want: []byte{0x98, 0x24, 0xd0, 0x10},
		},
		{
			name: "lmg epilogue",
			inst: Inst{Op: optab.OpLMG, Operands: []Operand{RegOp(z.R6), RegOp(z.R15), RegOp(z.R15), ImmOp(48)}},
			want: []byte{0xeb, 0x6f, 0xf0, 0x30, 0x00, 0x04},
		},
		{
			name: "sll",
			inst: Inst{Op: optab.OpSLL, Operands: []Operand{RegOp(z.R1), RegOp(z.R0), ImmOp(3)}},
			want: []byte{0x89, 0x10, 0x00, 0x03},
		},
		{
			name: "mvi",
			inst: Inst{Op: optab.OpMVI, Operands: []Operand{RegOp(z.R1), ImmOp(0), ImmOp(255)}},
			want: []byte{0x92, 0xff, 0x10, 0x00},
		},
		{
			name: "mvc 256 bytes",
			inst: Inst{Op: optab.OpMVC, Operands: []Operand{RegOp(z.R1), ImmOp(0), ImmOp(256), RegOp(z.R2), ImmOp(0)}},
			want: []byte{0xd2, 0xff, 0x10, 0x00, 0x20, 0x00},
		},
		{
			name: "vl high vector register sets rxb",
			inst: Inst{Op: optab.OpVL, Operands: []Operand{RegOp(z.V17), RegOp(z.R2), ImmOp(0), RegOp(z.R0)}},
			want: []byte{0xe7, 0x10, 0x20, 0x00, 0x08, 0x06},
		},
		{
			name: "vgef high index vector sets rxb",
			inst: Inst{Op: optab.OpVGEF, Operands: []Operand{RegOp(z.V1), RegOp(z.R3), ImmOp(100), RegOp(z.V20), ImmOp(2)}},
			want: []byte{0xe7, 0x14, 0x30, 0x64, 0x24, 0x13},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, fixups := e.Encode(nil, tt.inst, nil)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("encoded % x, want % x", got, tt.want)
			}
			if len(fixups) != 0 {
				t.Errorf("unexpected fixups: %v", fixups)
			}
			if len(got) != Length(tt.inst.Op) {
				t.Errorf("length %d, want %d", len(got), Length(tt.inst.Op))
			}
		})
	}
}

func TestPCRelImmediateFoldsOffset(t *testing.T) {
	ctx := expr.NewContext()
	e := New(ctx)

	inst := Inst{Op: optab.OpBRC, Operands: []Operand{ImmOp(8), ImmOp(100)}}
	buf, fixups := e.Encode(nil, inst, nil)

	// The deferred field carries the neutral in-place addend.
	if want := []byte{0xa7, 0x84, 0x00, 0x00}; !bytes.Equal(buf, want) {
		t.Errorf("encoded % x, want % x", buf, want)
	}
	if len(fixups) != 1 {
		t.Fatalf("got %d fixups, want 1", len(fixups))
	}
	f := fixups[0]
	if f.Offset != 2 || f.Kind != z.FixupPC16DBL {
		t.Errorf("fixup = %v, want PC16DBL at offset 2", f)
	}
	c, ok := f.Expr.(*expr.Const)
	if !ok || c.Value != 102 {
		t.Errorf("expr = %v, want constant 102", f.Expr)
	}
}

func TestPCRelSymbolicAddsOffset(t *testing.T) {
	ctx := expr.NewContext()
	e := New(ctx)

	target := ctx.Symbol("target")
	inst := Inst{Op: optab.OpLARL, Operands: []Operand{RegOp(z.R12), ExprOp(target)}}
	buf, fixups := e.Encode(nil, inst, nil)

	if want := []byte{0xc0, 0xc0, 0x00, 0x00, 0x00, 0x00}; !bytes.Equal(buf, want) {
		t.Errorf("encoded % x, want % x", buf, want)
	}
	if len(fixups) != 1 {
		t.Fatalf("got %d fixups, want 1", len(fixups))
	}
	f := fixups[0]
	if f.Offset != 2 || f.Kind != z.FixupPC32DBL {
		t.Errorf("fixup = %v, want PC32DBL at offset 2", f)
	}
	if got := f.Expr.String(); got != "target+2" {
		t.Errorf("expr = %q, want %q", got, "target+2")
	}
}

func TestPCRelTLSMarker(t *testing.T) {
	ctx := expr.NewContext()
	e := New(ctx)

	inst := Inst{Op: optab.OpBRASL, Operands: []Operand{
		RegOp(z.R14),
		ExprOp(ctx.Symbol("__tls_get_offset")),
		ExprOp(ctx.Symbol("x")),
	}}
	buf, fixups := e.Encode(nil, inst, nil)

	if want := []byte{0xc0, 0xe5, 0x00, 0x00, 0x00, 0x00}; !bytes.Equal(buf, want) {
		t.Errorf("encoded % x, want % x", buf, want)
	}
	if len(fixups) != 2 {
		t.Fatalf("got %d fixups, want 2", len(fixups))
	}
	if fixups[0].Kind != z.FixupPC32DBL || fixups[0].Offset != 2 {
		t.Errorf("first fixup = %v, want PC32DBL at 2", fixups[0])
	}
	if fixups[1].Kind != z.FixupTLSCall || fixups[1].Offset != 0 {
		t.Errorf("second fixup = %v, want TLS_CALL at 0", fixups[1])
	}
	if got := fixups[1].Expr.String(); got != "x" {
		t.Errorf("TLS expr = %q, want %q", got, "x")
	}
}

func TestPCRelTLSMarkerAbsent(t *testing.T) {
	// The trailing TLS operand is optional; without it the call encodes
	// with a single fixup.
	ctx := expr.NewContext()
	e := New(ctx)

	inst := Inst{Op: optab.OpBRASL, Operands: []Operand{
		RegOp(z.R14),
		ExprOp(ctx.Symbol("callee")),
	}}
	_, fixups := e.Encode(nil, inst, nil)

	if len(fixups) != 1 {
		t.Fatalf("got %d fixups, want 1", len(fixups))
	}
}

func TestEncodeAppends(t *testing.T) {
	ctx := expr.NewContext()
	e := New(ctx)

	var buf []byte
	var fixups []Fixup
	buf, fixups = e.Encode(buf, Inst{Op: optab.OpLR, Operands: []Operand{RegOp(z.R1), RegOp(z.R2)}}, fixups)
	buf, fixups = e.Encode(buf, Inst{Op: optab.OpBRC, Operands: []Operand{ImmOp(15), ExprOp(ctx.Symbol("loop"))}}, fixups)

	if want := []byte{0x18, 0x12, 0xa7, 0xf4, 0x00, 0x00}; !bytes.Equal(buf, want) {
		t.Errorf("stream % x, want % x", buf, want)
	}
	if len(fixups) != 1 {
		t.Fatalf("got %d fixups, want 1", len(fixups))
	}
	// Fixup offsets are relative to the instruction; the caller rebases
	// them into the stream.
	if fixups[0].Offset != 2 {
		t.Errorf("offset = %d, want 2", fixups[0].Offset)
	}
}

func TestEncodePanics(t *testing.T) {
	ctx := expr.NewContext()
	e := New(ctx)

	tests := []struct {
		name string
		inst Inst
	}{
		{"unknown opcode", Inst{Op: 0xfff}},
		{"too few operands", Inst{Op: optab.OpLR, Operands: []Operand{RegOp(z.R1)}}},
		{"expression in register slot", Inst{Op: optab.OpLR, Operands: []Operand{
			ExprOp(ctx.Symbol("nope")), RegOp(z.R2),
		}}},
		{"immediate too wide", Inst{Op: optab.OpLHI, Operands: []Operand{RegOp(z.R1), ImmOp(0x10000)}}},
		{"byte immediate too wide", Inst{Op: optab.OpMVI, Operands: []Operand{RegOp(z.R1), ImmOp(0), ImmOp(0x100)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mustPanic(t, func() { e.Encode(nil, tt.inst, nil) })
		})
	}
}

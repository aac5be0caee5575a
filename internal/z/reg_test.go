package z

import "testing"

func TestEncoding(t *testing.T) {
	tests := []struct {
		reg   Reg
		class RegClass
		enc   uint8
	}{
		{R0, ClassGPR, 0},
		{R15, ClassGPR, 15},
		{F0, ClassFPR, 0},
		{F15, ClassFPR, 15},
		{V0, ClassVR, 0},
		{V15, ClassVR, 15},
		{V16, ClassVR, 16},
		{V31, ClassVR, 31},
		{A0, ClassAR, 0},
		{A15, ClassAR, 15},
	}

	for _, tt := range tests {
		t.Run(tt.reg.String(), func(t *testing.T) {
			if got := tt.reg.Class(); got != tt.class {
				t.Errorf("Class() = %v, want %v", got, tt.class)
			}
			if got := tt.reg.Encoding(); got != tt.enc {
				t.Errorf("Encoding() = %d, want %d", got, tt.enc)
			}
		})
	}
}

func TestParseReg(t *testing.T) {
	tests := []struct {
		in      string
		want    Reg
		wantErr bool
	}{
		{"%r0", R0, false},
		{"%r15", R15, false},
		{"r7", R7, false},
		{"%R3", R3, false},
		{"%f5", F5, false},
		{"%v31", V31, false},
		{"%a2", A2, false},
		{"%r16", 0, true},
		{"%v32", 0, true},
		{"%x1", 0, true},
		{"%r", 0, true},
		{"%r-1", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseReg(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseReg(%q) expected error, got %v", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseReg(%q) failed: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseReg(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestStringRoundTrip(t *testing.T) {
	for r := R0; r < numRegs; r++ {
		got, err := ParseReg(r.String())
		if err != nil {
			t.Fatalf("ParseReg(%q) failed: %v", r.String(), err)
		}
		if got != r {
			t.Errorf("round trip %q: got %v", r.String(), got)
		}
	}
}

func TestFixupKindString(t *testing.T) {
	if FixupPC16DBL.String() != "PC16DBL" || FixupPC32DBL.String() != "PC32DBL" || FixupTLSCall.String() != "TLS_CALL" {
		t.Error("unexpected fixup kind names")
	}
}

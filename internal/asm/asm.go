// Package asm reads instructions in assembler-style text form and builds
// the operand sequence the encoder expects. It exists for the tool surface;
// the encoder itself never parses text.
//
// Syntax, one instruction per line:
//
//	lr %r1,%r2
//	lhi %r1,-200
//	l %r1,2064(%r10,%r5)      d(x,b); d(b) means no index
//	lmg %r6,%r15,48(%r15)
//	mvc 0(256,%r1),0(%r2)     d(l,b)
//	vgef %v1,100(%v20,%r3),2  d(v,b)
//	brasl %r14,printf         symbolic or immediate branch target
//	brasl %r14,__tls_get_offset,x:tls  trailing TLS marker on call ops
//
// Bad user text is an ordinary error here, unlike inside the encoder where
// malformed operands are a fatal upstream bug.
package asm

import (
	"fmt"
	"strconv"
	"strings"

	"zenc/internal/encoder"
	"zenc/internal/expr"
	"zenc/internal/optab"
	"zenc/internal/z"
)

// Reader builds encoder instructions from text. Expressions for symbolic
// operands are allocated from the reader's context.
type Reader struct {
	ctx *expr.Context
}

// NewReader returns a reader allocating expressions from ctx.
func NewReader(ctx *expr.Context) *Reader {
	return &Reader{ctx: ctx}
}

// ReadInst parses a single instruction line.
func (r *Reader) ReadInst(line string) (encoder.Inst, error) {
	line = strings.TrimSpace(line)
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	if line == "" {
		return encoder.Inst{}, fmt.Errorf("empty instruction")
	}

	mnemonic, rest := line, ""
	if i := strings.IndexAny(line, " \t"); i >= 0 {
		mnemonic, rest = line[:i], line[i+1:]
	}
	op, ok := optab.ByMnemonic(strings.ToLower(mnemonic))
	if !ok {
		return encoder.Inst{}, fmt.Errorf("unknown mnemonic %q", mnemonic)
	}
	d, _ := optab.Lookup(op)

	fields, err := splitOperands(strings.TrimSpace(rest))
	if err != nil {
		return encoder.Inst{}, err
	}

	inst := encoder.Inst{Op: op}
	next := 0
	for _, s := range d.Slots {
		if next >= len(fields) {
			return encoder.Inst{}, fmt.Errorf("%s: not enough operands", mnemonic)
		}
		ops, err := r.slotOperands(s.Kind, fields[next])
		if err != nil {
			return encoder.Inst{}, fmt.Errorf("%s operand %d: %w", mnemonic, next+1, err)
		}
		inst.Operands = append(inst.Operands, ops...)
		next++

		// A call target may carry one extra operand: the TLS marker.
		if s.Kind.AllowTLS() && next < len(fields) {
			name, ok := strings.CutSuffix(fields[next], ":tls")
			if !ok {
				return encoder.Inst{}, fmt.Errorf("%s: trailing operand %q is not a :tls marker", mnemonic, fields[next])
			}
			inst.Operands = append(inst.Operands, encoder.ExprOp(r.ctx.Symbol(name)))
			next++
		}
	}
	if next != len(fields) {
		return encoder.Inst{}, fmt.Errorf("%s: too many operands", mnemonic)
	}
	return inst, nil
}

// slotOperands expands one syntax operand into the flat operand group the
// descriptor's slot consumes.
func (r *Reader) slotOperands(kind optab.EncKind, field string) ([]encoder.Operand, error) {
	switch kind {
	case optab.EncReg, optab.EncVReg:
		reg, err := z.ParseReg(field)
		if err != nil {
			return nil, err
		}
		return []encoder.Operand{encoder.RegOp(reg)}, nil

	case optab.EncImm:
		v, err := parseInt(field)
		if err != nil {
			return nil, err
		}
		return []encoder.Operand{encoder.ImmOp(v)}, nil

	case optab.EncBDAddr12, optab.EncBDAddr20:
		disp, inner, err := splitAddr(field)
		if err != nil {
			return nil, err
		}
		if len(inner) != 1 {
			return nil, fmt.Errorf("want d(b) address, got %q", field)
		}
		base, err := z.ParseReg(inner[0])
		if err != nil {
			return nil, err
		}
		return []encoder.Operand{encoder.RegOp(base), encoder.ImmOp(disp)}, nil

	case optab.EncBDXAddr12, optab.EncBDXAddr20:
		disp, inner, err := splitAddr(field)
		if err != nil {
			return nil, err
		}
		index := z.R0 // omitted index encodes as zero
		var base z.Reg
		switch len(inner) {
		case 1:
			base, err = z.ParseReg(inner[0])
		case 2:
			if index, err = z.ParseReg(inner[0]); err == nil {
				base, err = z.ParseReg(inner[1])
			}
		default:
			return nil, fmt.Errorf("want d(x,b) address, got %q", field)
		}
		if err != nil {
			return nil, err
		}
		return []encoder.Operand{encoder.RegOp(base), encoder.ImmOp(disp), encoder.RegOp(index)}, nil

	case optab.EncBDLAddr12Len8:
		disp, inner, err := splitAddr(field)
		if err != nil {
			return nil, err
		}
		if len(inner) != 2 {
			return nil, fmt.Errorf("want d(l,b) address, got %q", field)
		}
		length, err := parseInt(inner[0])
		if err != nil {
			return nil, err
		}
		base, err := z.ParseReg(inner[1])
		if err != nil {
			return nil, err
		}
		return []encoder.Operand{encoder.RegOp(base), encoder.ImmOp(disp), encoder.ImmOp(length)}, nil

	case optab.EncBDVAddr12:
		disp, inner, err := splitAddr(field)
		if err != nil {
			return nil, err
		}
		if len(inner) != 2 {
			return nil, fmt.Errorf("want d(v,b) address, got %q", field)
		}
		vindex, err := z.ParseReg(inner[0])
		if err != nil {
			return nil, err
		}
		if vindex.Class() != z.ClassVR {
			return nil, fmt.Errorf("index %s is not a vector register", vindex)
		}
		base, err := z.ParseReg(inner[1])
		if err != nil {
			return nil, err
		}
		return []encoder.Operand{encoder.RegOp(base), encoder.ImmOp(disp), encoder.RegOp(vindex)}, nil

	case optab.EncPC16DBL, optab.EncPC32DBL, optab.EncPC16DBLTLS, optab.EncPC32DBLTLS:
		if v, err := parseInt(field); err == nil {
			return []encoder.Operand{encoder.ImmOp(v)}, nil
		}
		if !isSymbolName(field) {
			return nil, fmt.Errorf("invalid branch target %q", field)
		}
		return []encoder.Operand{encoder.ExprOp(r.ctx.Symbol(field))}, nil
	}
	return nil, fmt.Errorf("unsupported operand kind %d", kind)
}

// splitOperands splits a comma-separated operand list, keeping commas
// inside parentheses (address forms like 0(256,%r1)) intact.
func splitOperands(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	var fields []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced parentheses in %q", s)
			}
		case ',':
			if depth == 0 {
				fields = append(fields, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced parentheses in %q", s)
	}
	fields = append(fields, strings.TrimSpace(s[start:]))
	for _, f := range fields {
		if f == "" {
			return nil, fmt.Errorf("empty operand in %q", s)
		}
	}
	return fields, nil
}

// splitAddr breaks "d(a)" or "d(a,b)" into the displacement and the inner
// comma-separated parts.
func splitAddr(s string) (int64, []string, error) {
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return 0, nil, fmt.Errorf("want displacement(...) address, got %q", s)
	}
	disp, err := parseInt(s[:open])
	if err != nil {
		return 0, nil, fmt.Errorf("bad displacement in %q: %w", s, err)
	}
	inner := strings.Split(s[open+1:len(s)-1], ",")
	for i := range inner {
		inner[i] = strings.TrimSpace(inner[i])
	}
	return disp, inner, nil
}

func parseInt(s string) (int64, error) {
	return strconv.ParseInt(s, 0, 64)
}

func isSymbolName(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_' || c == '.' || c == '$':
		case c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

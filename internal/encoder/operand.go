// Package encoder turns decoded instructions into their exact big-endian
// byte encoding, emitting relocation records (fixups) for operand fields
// whose value is only known at link time.
//
// Malformed input is an upstream programming error, not a runtime
// condition: by the time an instruction reaches this package its operand
// shapes and value ranges must already be valid, so violations panic.
package encoder

import (
	"fmt"

	"zenc/internal/expr"
	"zenc/internal/optab"
	"zenc/internal/z"
)

// OperandKind tags the active variant of an Operand.
type OperandKind uint8

const (
	KindReg OperandKind = iota
	KindImm
	KindExpr
)

// Operand is one instruction operand: a register, an immediate, or a
// symbolic expression deferred to link time. Exactly one variant is active.
type Operand struct {
	kind OperandKind
	reg  z.Reg
	imm  int64
	expr expr.Expr
}

// RegOp makes a register operand.
func RegOp(r z.Reg) Operand { return Operand{kind: KindReg, reg: r} }

// ImmOp makes an immediate operand.
func ImmOp(v int64) Operand { return Operand{kind: KindImm, imm: v} }

// ExprOp makes a symbolic expression operand.
func ExprOp(e expr.Expr) Operand { return Operand{kind: KindExpr, expr: e} }

// Kind returns the active variant tag.
func (o Operand) Kind() OperandKind { return o.kind }

// Reg returns the register of a register operand.
func (o Operand) Reg() z.Reg { return o.reg }

// Imm returns the value of an immediate operand.
func (o Operand) Imm() int64 { return o.imm }

// Expr returns the expression of an expression operand.
func (o Operand) Expr() expr.Expr { return o.expr }

// IsImm reports whether the operand is an immediate.
func (o Operand) IsImm() bool { return o.kind == KindImm }

// IsExpr reports whether the operand is a symbolic expression.
func (o Operand) IsExpr() bool { return o.kind == KindExpr }

func (o Operand) String() string {
	switch o.kind {
	case KindReg:
		return o.reg.String()
	case KindImm:
		return fmt.Sprintf("%d", o.imm)
	default:
		return o.expr.String()
	}
}

// Inst is a decoded instruction: an opcode plus its ordered operands.
// It is an immutable input to Encode.
type Inst struct {
	Op       optab.Op
	Operands []Operand
}

// Package expr provides symbolic expressions for values that cannot be
// resolved until link time. Expressions are built through a Context, which
// owns symbol interning; they are immutable once constructed.
package expr

import "fmt"

// Expr is a symbolic value: a constant, a symbol reference, or a sum.
type Expr interface {
	// String renders the expression in assembler-style syntax.
	String() string

	exprNode()
}

// Const is a compile-time constant expression.
type Const struct {
	Value int64
}

// SymRef is a reference to a named symbol, resolved by the linker.
type SymRef struct {
	Name string
}

// Sum is the addition of two sub-expressions.
type Sum struct {
	A, B Expr
}

func (c *Const) exprNode()  {}
func (s *SymRef) exprNode() {}
func (s *Sum) exprNode()    {}

func (c *Const) String() string  { return fmt.Sprintf("%d", c.Value) }
func (s *SymRef) String() string { return s.Name }

func (s *Sum) String() string {
	// Render "sym+(-4)" as "sym-4" for readability
	if c, ok := s.B.(*Const); ok && c.Value < 0 {
		return fmt.Sprintf("%s-%d", s.A, -c.Value)
	}
	return fmt.Sprintf("%s+%s", s.A, s.B)
}

// Context is the allocation context for expressions. Symbol references are
// interned per context, so two Symbol calls with the same name return the
// same *SymRef. A Context is not safe for concurrent use; callers that
// encode on multiple goroutines should use one Context per goroutine.
type Context struct {
	symbols map[string]*SymRef
}

// NewContext returns an empty expression context.
func NewContext() *Context {
	return &Context{symbols: make(map[string]*SymRef)}
}

// Constant builds a constant expression.
func (c *Context) Constant(v int64) Expr {
	return &Const{Value: v}
}

// Symbol returns the interned reference for the named symbol.
func (c *Context) Symbol(name string) Expr {
	if s, ok := c.symbols[name]; ok {
		return s
	}
	s := &SymRef{Name: name}
	c.symbols[name] = s
	return s
}

// Add builds the sum of two expressions. Constant folding is deliberately
// not performed here: the linker sees the same shape the encoder recorded.
func (c *Context) Add(a, b Expr) Expr {
	return &Sum{A: a, B: b}
}

// Eval resolves an expression using the given symbol values. The second
// return value is false if a referenced symbol is missing from the map.
func Eval(e Expr, symbols map[string]int64) (int64, bool) {
	switch e := e.(type) {
	case *Const:
		return e.Value, true
	case *SymRef:
		v, ok := symbols[e.Name]
		return v, ok
	case *Sum:
		a, okA := Eval(e.A, symbols)
		b, okB := Eval(e.B, symbols)
		return a + b, okA && okB
	}
	return 0, false
}

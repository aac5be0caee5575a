package encoder

import (
	"fmt"

	"zenc/internal/expr"
	"zenc/internal/z"
)

// Fixup is a relocation record: the symbolic value to be written at Offset
// bytes into the instruction, resolved by the linker. The byte stream at
// the fixup site always carries zero; the whole displacement lives in the
// relocation.
type Fixup struct {
	Offset int
	Expr   expr.Expr
	Kind   z.FixupKind
}

func (f Fixup) String() string {
	return fmt.Sprintf("%s@%d: %s", f.Kind, f.Offset, f.Expr)
}

package colorize

import (
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
)

func init() {
	// Register our custom listing style on package initialization
	_ = ZencDark
}

// ZencDark is a custom style for encoder listings matching our color scheme
var ZencDark = styles.Register(chroma.MustNewStyle("zenc-dark", chroma.StyleEntries{
	chroma.Text:           "#FFFFFF",    // Default text white
	chroma.Background:     "bg:#1e1e1e", // Dark background
	chroma.Comment:        "#6A9955",    // Green comments
	chroma.CommentPreproc: "#6A9955",    // Same for preprocessor comments

	// For GAS lexer mappings
	chroma.Keyword:       "#FFFFFF", // Mnemonics in white
	chroma.KeywordPseudo: "#FFFFFF", // Pseudo instructions in white
	chroma.Name:          "#7C9C9D", // Generic names (registers) in teal
	chroma.NameBuiltin:   "#7C9C9D", // Builtin names in teal
	chroma.NameVariable:  "#7C9C9D", // Percent-prefixed registers in teal

	// Numbers
	chroma.LiteralNumber:        "#FF5F87", // Decimal displacements in pink
	chroma.LiteralNumberHex:     "#FF5F87", // Hex immediates in pink
	chroma.LiteralNumberBin:     "#FF5F87", // Binary numbers in pink
	chroma.LiteralNumberOct:     "#FF5F87", // Octal numbers in pink
	chroma.LiteralNumberInteger: "#FF5F87", // Integer literals in pink
	chroma.LiteralNumberFloat:   "#FF5F87", // Float literals in pink

	// Labels and symbols
	chroma.NameLabel:    "#FFD700", // Branch targets in gold
	chroma.NameFunction: "#FFFFFF", // Mnemonics tokenized as functions, use white

	// Operators and punctuation
	chroma.Operator:    "#FFFFFF", // Operators in white
	chroma.Punctuation: "#FFFFFF", // Punctuation in white

	// Strings
	chroma.String: "#EACD53", // Strings in golden
}))

package colorize

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// getAssemblyLexer returns an appropriate assembly lexer with fallbacks
func getAssemblyLexer() chroma.Lexer {
	// Mainframe assembly uses GNU as syntax
	candidates := []string{"gas", "GAS", "Gas", "nasm"}
	for _, name := range candidates {
		if lexer := lexers.Get(name); lexer != nil {
			return lexer
		}
	}
	return nil
}

// getListingStyle returns the listing style with fallbacks
func getListingStyle() *chroma.Style {
	// Try our custom style first, then fallbacks
	candidates := []string{"zenc-dark", "dracula", "monokai"}
	for _, name := range candidates {
		if style := styles.Get(name); style != nil {
			return style
		}
	}
	return styles.Fallback
}

// getTerminalFormatter returns an appropriate terminal formatter
func getTerminalFormatter() chroma.Formatter {
	// Try high-color first, then fallback
	candidates := []string{"terminal16m", "terminal256"}
	for _, name := range candidates {
		if formatter := formatters.Get(name); formatter != nil {
			return formatter
		}
	}
	return formatters.Fallback
}

// ColorizeAssembly applies syntax highlighting to assembly source
func ColorizeAssembly(code string) (string, error) {
	// Check if colors are disabled
	if os.Getenv("ZENC_NO_COLOR") != "" {
		return code, nil
	}

	lexer := getAssemblyLexer()
	if lexer == nil {
		// Return plain text if no assembly lexer available
		return code, nil
	}

	// Make sure our custom style is registered
	_ = ZencDark

	style := getListingStyle()
	formatter := getTerminalFormatter()

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code, err
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code, err
	}

	return buf.String(), nil
}

// ColorizeListingLine colorizes a single listing line while preserving
// alignment. Listing format: "e3 12 30 00 80 04  lg %r1,-524288(%r2,%r3)",
// the encoding bytes followed by the source text.
func ColorizeListingLine(line string) string {
	// Check if colors are disabled
	if os.Getenv("ZENC_NO_COLOR") != "" {
		return line
	}

	hex, source := splitListing(line)
	if hex == "" {
		return colorizeSource(line)
	}

	// Encoding bytes in gray so the source stands out
	hexColored := fmt.Sprintf("\033[38;2;133;133;133m%s\033[0m", hex)
	if source == "" {
		return hexColored
	}
	return hexColored + colorizeSource(source)
}

// splitListing splits a listing line into its leading hex-byte columns and
// the assembly source. The hex part keeps its trailing spaces so the two
// halves concatenate back to the original alignment.
func splitListing(line string) (hex, source string) {
	i := 0
	for i < len(line) {
		// Expect a two-digit hex byte
		if i+2 > len(line) || !isHexChar(line[i]) || !isHexChar(line[i+1]) {
			break
		}
		j := i + 2
		if j < len(line) && line[j] != ' ' {
			break
		}
		for j < len(line) && line[j] == ' ' {
			j++
		}
		i = j
	}
	if i == 0 {
		return "", line
	}
	return line[:i], line[i:]
}

// isHexChar checks if a character is a lowercase hexadecimal digit
func isHexChar(ch byte) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f')
}

// colorizeSource uses Chroma to colorize one line of assembly source
func colorizeSource(line string) string {
	lexer := getAssemblyLexer()
	if lexer == nil {
		return line
	}

	// Make sure our custom style is registered
	_ = ZencDark

	style := getListingStyle()
	formatter := getTerminalFormatter()

	iterator, err := lexer.Tokenise(nil, line)
	if err != nil {
		return line
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return line
	}
	// Chroma appends a newline for a bare line; the caller owns line breaks
	return strings.TrimRight(buf.String(), "\n")
}

// VisibleWidth returns the character count of s with ANSI escape
// sequences excluded
func VisibleWidth(s string) int {
	visible := 0
	inEscape := false

	for _, r := range s {
		if r == '\x1b' {
			inEscape = true
		} else if inEscape {
			if r == 'm' {
				inEscape = false
			}
		} else {
			visible++
		}
	}

	return visible
}

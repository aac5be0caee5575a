package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"zenc/internal/asm"
	"zenc/internal/encoder"
	"zenc/internal/expr"
	"zenc/internal/logging"
	"zenc/internal/ui/colorize"
)

// encodeRecord is the JSON output for one encoded instruction
type encodeRecord struct {
	Offset int           `json:"offset"`
	Bytes  string        `json:"bytes"`
	Source string        `json:"source"`
	Fixups []fixupRecord `json:"fixups,omitempty"`
}

// fixupRecord is the JSON output for one relocation request
type fixupRecord struct {
	Offset int    `json:"offset"`
	Kind   string `json:"kind"`
	Expr   string `json:"expr"`
}

var encodeCmd = &cobra.Command{
	Use:   "encode [instruction]...",
	Short: "Encode assembler instructions to machine code",
	Long: `Encode reads one instruction per argument (or per stdin line when no
arguments are given) and prints the offset, the encoded bytes and the source
text. Symbolic branch targets produce fixup records instead of final bytes.`,
	Example: `
# Encode single instructions
zenc encode "lr %r1,%r2" "lhi %r3,-200"

# Encode a stream, showing relocation requests
echo "brasl %r14,printf" | zenc encode --fixups

# Machine-readable output
zenc encode --json "lg %r1,-524288(%r2,%r3)"
  `,
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOut, _ := cmd.Flags().GetBool("json")
		showFixups, _ := cmd.Flags().GetBool("fixups")

		logger := logging.NewLogger()
		defer logger.Close()

		lines := args
		if len(lines) == 0 {
			if term.IsTerminal(os.Stdin.Fd()) {
				return fmt.Errorf("no instructions given and stdin is a terminal")
			}
			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "" || strings.HasPrefix(line, "#") {
					continue
				}
				lines = append(lines, line)
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}
		}

		// Disable coloring when output is being piped
		if !term.IsTerminal(os.Stdout.Fd()) {
			os.Setenv("ZENC_NO_COLOR", "1")
		}

		ctx := expr.NewContext()
		reader := asm.NewReader(ctx)
		enc := encoder.New(ctx)

		var records []encodeRecord
		offset := 0
		for _, line := range lines {
			inst, err := reader.ReadInst(line)
			if err != nil {
				return err
			}
			buf, fixups, err := encodeChecked(enc, inst)
			if err != nil {
				return fmt.Errorf("%s: %w", line, err)
			}
			logger.Debug("encoded", "source", line, "bytes", hexBytes(buf), "fixups", len(fixups))

			rec := encodeRecord{Offset: offset, Bytes: hexBytes(buf), Source: line}
			for _, f := range fixups {
				rec.Fixups = append(rec.Fixups, fixupRecord{
					Offset: offset + f.Offset,
					Kind:   f.Kind.String(),
					Expr:   f.Expr.String(),
				})
			}
			records = append(records, rec)
			offset += len(buf)
		}

		if jsonOut {
			out, err := json.MarshalIndent(records, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal output: %w", err)
			}
			fmt.Println(string(out))
			return nil
		}

		for _, rec := range records {
			listing := fmt.Sprintf("%-18s %s", rec.Bytes, rec.Source)
			fmt.Printf("%4x:  %s\n", rec.Offset, colorize.ColorizeListingLine(listing))
			if showFixups {
				for _, f := range rec.Fixups {
					fmt.Printf("       fixup %s@%x: %s\n", f.Kind, f.Offset, f.Expr)
				}
			}
		}
		return nil
	},
}

// encodeChecked converts the encoder's fatal-operand panics into ordinary
// errors; on the command line a bad operand is user input, not an upstream
// bug.
func encodeChecked(enc *encoder.Encoder, inst encoder.Inst) (buf []byte, fixups []encoder.Fixup, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	buf, fixups = enc.Encode(nil, inst, nil)
	return buf, fixups, nil
}

func hexBytes(b []byte) string {
	var sb strings.Builder
	for i, c := range b {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02x", c)
	}
	return sb.String()
}

func init() {
	encodeCmd.Flags().BoolP("json", "j", false, "Output records as JSON")
	encodeCmd.Flags().BoolP("fixups", "f", false, "Print fixup records after each instruction")

	rootCmd.AddCommand(encodeCmd)
}

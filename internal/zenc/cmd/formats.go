package cmd

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"zenc/internal/zenc/styles"
)

//go:embed formats.md
var formatsDoc string

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "Show the instruction format reference",
	Long:  "Render the reference page describing the supported instruction formats and their field layouts.",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Plain markdown when piped
		if !term.IsTerminal(os.Stdout.Fd()) {
			fmt.Print(formatsDoc)
			return nil
		}

		width := 80
		if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
			width = w
		}
		renderer := styles.GetMarkdownRenderer(width - 2)
		out, err := renderer.Render(formatsDoc)
		if err != nil {
			return fmt.Errorf("failed to render reference: %w", err)
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}

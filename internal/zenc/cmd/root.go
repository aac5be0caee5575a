package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/v2/list"
	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"zenc/internal/asm"
	"zenc/internal/encoder"
	"zenc/internal/expr"
	"zenc/internal/optab"
	zlog "zenc/internal/zenc/log"
	"zenc/internal/zenc/styles"
)

type viewMode int

const (
	viewBrowser viewMode = iota
	viewDetail
	viewReference
)

type opItem struct {
	op   optab.Op
	desc optab.Desc
}

func (i opItem) Title() string {
	return fmt.Sprintf("%-8s %s", i.desc.Mnemonic, i.desc.Format)
}

func (i opItem) Description() string { return "" }

func (i opItem) FilterValue() string {
	return fmt.Sprintf("%s %s", i.desc.Mnemonic, i.desc.Format)
}

// Custom item delegate for the opcode list
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d itemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(opItem)
	if !ok {
		return
	}

	var mnemonicStyle lipgloss.Style
	var indicator string

	if index == m.Index() {
		indicator = ">"
		mnemonicStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("170")) // Purple for selected mnemonic
	} else {
		indicator = " "
		mnemonicStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	}

	formatStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240")) // Gray for format and length

	str := fmt.Sprintf(" %s  %s  %s",
		indicator,
		mnemonicStyle.Render(fmt.Sprintf("%-8s", i.desc.Mnemonic)),
		formatStyle.Render(fmt.Sprintf("%-4s %d bytes", i.desc.Format, i.desc.Length)))

	fmt.Fprint(w, str)
}

type model struct {
	opsList   list.Model
	detail    viewport.Model
	reference viewport.Model
	mode      viewMode
	refLoaded bool
	width     int
	height    int
}

func NewModel() model {
	delegate := itemDelegate{}

	ops := optab.Ops()
	items := make([]list.Item, 0, len(ops))
	for _, op := range ops {
		d, _ := optab.Lookup(op)
		items = append(items, opItem{op: op, desc: d})
	}

	opsList := list.New(items, delegate, 80, 24)
	opsList.SetShowStatusBar(false)
	opsList.SetFilteringEnabled(true)
	opsList.Title = fmt.Sprintf("Opcodes (%d total)", len(items))
	opsList.Styles.Title = lipgloss.NewStyle().
		Foreground(lipgloss.Color("99")).
		MarginLeft(2)
	opsList.SetShowHelp(true)

	dvp := viewport.New()
	dvp.SetWidth(80)
	dvp.SetHeight(24)

	rvp := viewport.New()
	rvp.SetWidth(80)
	rvp.SetHeight(24)

	return model{
		opsList:   opsList,
		detail:    dvp,
		reference: rvp,
		mode:      viewBrowser,
		width:     80,
		height:    24,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if msg.Width != m.width || msg.Height != m.height {
			m.width = msg.Width
			m.height = msg.Height
			m.opsList.SetWidth(msg.Width)
			m.opsList.SetHeight(msg.Height - 2)
			m.detail.SetWidth(msg.Width)
			m.detail.SetHeight(msg.Height - 2)
			m.reference.SetWidth(msg.Width)
			m.reference.SetHeight(msg.Height - 2)
			m.refLoaded = false // re-render the reference at the new width
		}

	case tea.KeyMsg:
		// While the list is filtering, only pass through the essentials
		if m.mode == viewBrowser && m.opsList.FilterState() == list.Filtering {
			switch msg.String() {
			case "q", "ctrl+c":
				return m, tea.Quit
			}
		} else {
			switch msg.String() {
			case "q", "ctrl+c":
				return m, tea.Quit
			case "o":
				m.mode = viewBrowser
				return m, nil
			case "f":
				m.showReference()
				return m, nil
			case "enter":
				if m.mode == viewBrowser {
					if selected := m.opsList.SelectedItem(); selected != nil {
						if item, ok := selected.(opItem); ok {
							m.showDetail(item)
						}
					}
				}
				return m, nil
			case "esc":
				if m.mode != viewBrowser {
					m.mode = viewBrowser
					return m, nil
				}
			case "tab":
				switch m.mode {
				case viewBrowser:
					if selected := m.opsList.SelectedItem(); selected != nil {
						if item, ok := selected.(opItem); ok {
							m.showDetail(item)
						}
					}
				case viewDetail:
					m.showReference()
				case viewReference:
					m.mode = viewBrowser
				}
				return m, nil
			case "shift+tab":
				switch m.mode {
				case viewBrowser:
					m.showReference()
				case viewDetail:
					m.mode = viewBrowser
				case viewReference:
					if selected := m.opsList.SelectedItem(); selected != nil {
						if item, ok := selected.(opItem); ok {
							m.showDetail(item)
						}
					}
				}
				return m, nil
			}
		}
	}

	switch m.mode {
	case viewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case viewReference:
		m.reference, cmd = m.reference.Update(msg)
	default:
		m.opsList, cmd = m.opsList.Update(msg)
	}
	return m, cmd
}

func (m model) View() string {
	var content string
	switch m.mode {
	case viewDetail:
		content = m.detail.View()
	case viewReference:
		content = m.reference.View()
	default:
		content = m.opsList.View()
	}

	var menu string
	switch m.mode {
	case viewDetail:
		menu = " O/Esc: opcodes • F: formats • Tab: cycle • Q: quit "
	case viewReference:
		menu = " O/Esc: opcodes • Tab: cycle • Q: quit "
	default:
		menu = " Enter: detail • F: formats • /: filter • Tab: cycle • Q: quit "
	}

	menuStyle := lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("252")).
		Padding(0, 1).
		Width(m.width)

	return content + "\n" + menuStyle.Render(menu)
}

// showDetail renders the descriptor page for one opcode into the detail
// viewport and switches to it.
func (m *model) showDetail(item opItem) {
	markdown := buildDetail(item.op)

	width := m.width
	if width == 0 {
		width = 80
	}
	renderer := styles.GetMarkdownRenderer(width - 2)
	rendered, _ := renderer.Render(markdown)
	m.detail.SetContent(strings.TrimSuffix(rendered, "\n"))
	m.detail.GotoTop()
	m.mode = viewDetail
}

// showReference renders the embedded format reference lazily, once per
// window size.
func (m *model) showReference() {
	if !m.refLoaded {
		width := m.width
		if width == 0 {
			width = 80
		}
		renderer := styles.GetMarkdownRenderer(width - 2)
		rendered, _ := renderer.Render(formatsDoc)
		m.reference.SetContent(strings.TrimSuffix(rendered, "\n"))
		m.reference.GotoTop()
		m.refLoaded = true
	}
	m.mode = viewReference
}

// buildDetail produces the markdown detail page for an opcode: format,
// length, field-placement plan and a worked example encoding.
func buildDetail(op optab.Op) string {
	d, _ := optab.Lookup(op)

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", d.Mnemonic)
	fmt.Fprintf(&sb, "%s format, %d bytes, opcode bits `%0*x`.\n\n", d.Format, d.Length, d.Length*2, d.Opcode)

	sb.WriteString("## Operand slots\n\n")
	for _, s := range d.Slots {
		fmt.Fprintf(&sb, "- operand %d: %s", s.Arg, s.Kind)
		for _, f := range s.Fields {
			if f.Shift >= 0 {
				fmt.Fprintf(&sb, ", mask `%#x` at bit %d", f.Mask, f.Shift)
			} else {
				fmt.Fprintf(&sb, ", mask `%#x` shifted right %d", f.Mask, -f.Shift)
			}
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n## Example\n\n```\n")
	listing, fixups := exampleListing(op)
	sb.WriteString(listing)
	sb.WriteString("\n")
	for _, f := range fixups {
		fmt.Fprintf(&sb, "fixup %s\n", f)
	}
	sb.WriteString("```\n")

	return sb.String()
}

// sampleSource builds a representative source line for an opcode, one
// operand per descriptor slot.
func sampleSource(op optab.Op) string {
	d, _ := optab.Lookup(op)

	nextGPR := 1
	gpr := func() string {
		s := fmt.Sprintf("%%r%d", nextGPR)
		nextGPR++
		return s
	}

	var fields []string
	for _, s := range d.Slots {
		switch s.Kind {
		case optab.EncReg:
			fields = append(fields, gpr())
		case optab.EncVReg:
			fields = append(fields, "%v17")
		case optab.EncImm:
			if s.Fields[0].Mask == 0xf {
				fields = append(fields, "2")
			} else {
				fields = append(fields, "42")
			}
		case optab.EncBDAddr12:
			fields = append(fields, fmt.Sprintf("100(%s)", gpr()))
		case optab.EncBDAddr20:
			fields = append(fields, fmt.Sprintf("-4(%s)", gpr()))
		case optab.EncBDXAddr12:
			x, b := gpr(), gpr()
			fields = append(fields, fmt.Sprintf("4095(%s,%s)", x, b))
		case optab.EncBDXAddr20:
			x, b := gpr(), gpr()
			fields = append(fields, fmt.Sprintf("-524288(%s,%s)", x, b))
		case optab.EncBDLAddr12Len8:
			fields = append(fields, fmt.Sprintf("0(256,%s)", gpr()))
		case optab.EncBDVAddr12:
			fields = append(fields, fmt.Sprintf("100(%%v20,%s)", gpr()))
		default: // PC-relative targets
			fields = append(fields, "100")
		}
	}
	if len(fields) == 0 {
		return d.Mnemonic
	}
	return d.Mnemonic + " " + strings.Join(fields, ",")
}

// exampleListing encodes the sample source for an opcode and returns the
// listing line plus any fixup records.
func exampleListing(op optab.Op) (string, []encoder.Fixup) {
	src := sampleSource(op)

	ctx := expr.NewContext()
	inst, err := asm.NewReader(ctx).ReadInst(src)
	if err != nil {
		return src, nil
	}
	buf, fixups, err := encodeChecked(encoder.New(ctx), inst)
	if err != nil {
		return src, nil
	}
	return fmt.Sprintf("%-18s %s", hexBytes(buf), src), fixups
}

// runTable prints the opcode table without the TUI.
func runTable(w io.Writer) error {
	for _, op := range optab.Ops() {
		d, _ := optab.Lookup(op)
		listing, _ := exampleListing(op)
		fmt.Fprintf(w, "%-8s %-4s %d  %s\n", d.Mnemonic, d.Format, d.Length, listing)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Debug")

	rootCmd.Flags().BoolP("help", "h", false, "Help")
	rootCmd.Flags().BoolP("no-tui", "n", false, "Print the opcode table without TUI")
}

var rootCmd = &cobra.Command{
	Use:   "zenc",
	Short: "z/Architecture instruction encoder",
	Long: `Zenc encodes z/Architecture instructions to machine code.
It provides an interactive TUI for browsing the supported opcode table and a
non-interactive encode command for turning assembler text into bytes.`,
	Example: `
# Browse the opcode table interactively
zenc

# Print the table with example encodings
zenc --no-tui
  `,
	Args: cobra.NoArgs,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		debug, _ := cmd.Flags().GetBool("debug")
		zlog.Setup(debug)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		noTUI, _ := cmd.Flags().GetBool("no-tui")

		// Also use no-tui mode when output is being piped
		if !term.IsTerminal(os.Stdout.Fd()) {
			noTUI = true
		}

		// Disable coloring when using --no-tui to avoid garbled output
		if noTUI {
			os.Setenv("ZENC_NO_COLOR", "1")
			return runTable(os.Stdout)
		}

		program := tea.NewProgram(
			NewModel(),
			tea.WithAltScreen(),
			tea.WithContext(cmd.Context()),
		)

		if _, err := program.Run(); err != nil {
			slog.Error("TUI run error", "error", err)
			return fmt.Errorf("TUI error: %v", err)
		}
		return nil
	},
}

func Execute() {
	// Check if --no-tui is present, or if output is being piped, to bypass
	// fang's automatic markdown rendering
	noTUI := false
	for _, arg := range os.Args[1:] {
		if arg == "--no-tui" || arg == "-n" {
			noTUI = true
			break
		}
	}

	if !noTUI && !term.IsTerminal(os.Stdout.Fd()) {
		noTUI = true
	}

	if noTUI {
		if err := rootCmd.Execute(); err != nil {
			os.Exit(1)
		}
	} else {
		if err := fang.Execute(
			context.Background(),
			rootCmd,
			fang.WithNotifySignal(os.Interrupt),
		); err != nil {
			os.Exit(1)
		}
	}
}

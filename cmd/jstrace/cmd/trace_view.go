package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/jstrace/jstrace/internal/trace"
)

// traceKeyMap mirrors the key bindings handled in Update, so the help
// footer and the switch statement can't drift apart.
type traceKeyMap struct {
	Next  key.Binding
	Prev  key.Binding
	First key.Binding
	Last  key.Binding
	Quit  key.Binding
}

var traceKeys = traceKeyMap{
	Next:  key.NewBinding(key.WithKeys("down", "j", " "), key.WithHelp("j/down", "next step")),
	Prev:  key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("k/up", "prev step")),
	First: key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "first step")),
	Last:  key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "last step")),
	Quit:  key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k traceKeyMap) helpLine() string {
	return fmt.Sprintf("%s move, %s first/last, %s quit",
		k.Next.Help().Key+"/"+k.Prev.Help().Key, k.First.Help().Key+"/"+k.Last.Help().Key, k.Quit.Help().Key)
}

var traceViewCmd = &cobra.Command{
	Use:   "trace-view [file]",
	Short: "Step through a recorded trace one step at a time",
	Long: `trace-view loads a JSON step trace - the output of "jstrace run" - and
opens a small terminal pager over it. Use the arrow keys, j/k, or space to
move between steps; q or Ctrl+C to quit.`,
	Args: cobra.ExactArgs(1),
	RunE: runTraceView,
}

func init() {
	rootCmd.AddCommand(traceViewCmd)
}

func runTraceView(cmd *cobra.Command, args []string) error {
	logger := verboseLogger(cmd)

	logger.Debug("reading trace", "path", args[0])
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading trace: %w", err)
	}
	var steps []*trace.Step
	if err := json.Unmarshal(data, &steps); err != nil {
		return fmt.Errorf("decoding trace: %w", err)
	}
	logger.Debug("loaded trace", "steps", len(steps))
	if len(steps) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "trace is empty")
		return nil
	}

	p := tea.NewProgram(initialTraceModel(steps))
	_, err = p.Run()
	return err
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	stepTypeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true)

	bubbleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F87")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#767676"))
)

type traceModel struct {
	steps  []*trace.Step
	cursor int
}

func initialTraceModel(steps []*trace.Step) traceModel {
	return traceModel{steps: steps}
}

func (m traceModel) Init() tea.Cmd { return nil }

func (m traceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, traceKeys.Quit):
			return m, tea.Quit
		case key.Matches(msg, traceKeys.Next):
			if m.cursor < len(m.steps)-1 {
				m.cursor++
			}
		case key.Matches(msg, traceKeys.Prev):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, traceKeys.First):
			m.cursor = 0
		case key.Matches(msg, traceKeys.Last):
			m.cursor = len(m.steps) - 1
		}
	}
	return m, nil
}

func (m traceModel) View() string {
	step := m.steps[m.cursor]

	var s strings.Builder
	s.WriteString(headerStyle.Render(fmt.Sprintf(" step %d/%d ", m.cursor+1, len(m.steps))))
	s.WriteString("\n\n")

	s.WriteString(fmt.Sprintf("node:        %s  %v\n", step.NodeType, step.NodeRange))
	s.WriteString("phase:       " + stepTypeStyle.Render(string(step.StepType)) + "\n")
	s.WriteString(fmt.Sprintf("scope_index: %d\n", step.ScopeIndex))

	if step.BubbleUp != "" {
		s.WriteString("bubble_up:   " + bubbleStyle.Render(step.BubbleUp) + "\n")
	}

	if step.MemoryChange.Kind != trace.ChangeNone {
		s.WriteString(fmt.Sprintf("change:      %s\n", step.MemoryChange.Kind))
	}

	for _, mv := range step.MemvalChanges {
		s.WriteString(dimStyle.Render(fmt.Sprintf("memval %-4s %v\n", mv.Kind, mv.Value)))
	}

	for _, entry := range step.Console {
		s.WriteString(dimStyle.Render(fmt.Sprintf("console.%s %v\n", entry.Kind, entry.Values)))
	}

	s.WriteString("\n")
	s.WriteString(dimStyle.Render(traceKeys.helpLine()))

	return s.String()
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/runigram/pkg/grid"
	"github.com/matzehuels/runigram/pkg/morph"
	"github.com/matzehuels/runigram/pkg/pipeline"
	"github.com/matzehuels/runigram/pkg/sink"
	"github.com/matzehuels/runigram/pkg/transform"

	rterrors "github.com/matzehuels/runigram/pkg/errors"
)

// Player styles
var (
	playerStatusStyle = lipgloss.NewStyle().Foreground(colorGray)
	playerAlphaStyle  = lipgloss.NewStyle().Foreground(colorCyan)
	playerHelpStyle   = lipgloss.NewStyle().Foreground(colorDim)
)

// progressWidth is the width of the frame progress bar.
const progressWidth = 24

// =============================================================================
// Messages
// =============================================================================

// frameMsg delivers a rendered frame from the morph goroutine.
type frameMsg struct {
	step  int
	alpha float64
	view  string
}

// doneMsg reports the end of the morph.
type doneMsg struct {
	res *pipeline.Result
	err error
}

// =============================================================================
// PlayerModel - Interactive morph player
// =============================================================================

// PlayerModel is the bubbletea model that shows morph frames as they arrive.
// The morph runs on its own goroutine; frames reach the model as rendered
// strings, so the two never share a grid.
type PlayerModel struct {
	Title    string
	Steps    int
	Frame    string
	Step     int
	Alpha    float64
	Painted  int
	Stopping bool
	Done     bool
	Result   *pipeline.Result
	Err      error

	cancel context.CancelFunc
}

// NewPlayerModel creates a player for an n-step morph. cancel stops the
// morph at the next frame boundary.
func NewPlayerModel(title string, steps int, cancel context.CancelFunc) PlayerModel {
	return PlayerModel{Title: title, Steps: steps, Alpha: 1, cancel: cancel}
}

func (m PlayerModel) Init() tea.Cmd {
	return nil
}

func (m PlayerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.Done {
				return m, tea.Quit
			}
			if !m.Stopping && m.cancel != nil {
				m.cancel()
			}
			m.Stopping = true
		}
	case frameMsg:
		m.Frame = msg.view
		m.Step = msg.step
		m.Alpha = msg.alpha
		m.Painted++
	case doneMsg:
		m.Done = true
		m.Result = msg.res
		m.Err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m PlayerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n\n")
	if m.Frame != "" {
		b.WriteString(m.Frame)
		b.WriteString("\n")
	}

	b.WriteString(playerStatusStyle.Render(fmt.Sprintf("frame %d/%d ", m.Painted, m.Steps+1)))
	b.WriteString(progressBar(m.Painted, m.Steps+1, progressWidth))
	b.WriteString(playerAlphaStyle.Render(fmt.Sprintf("  α=%.2f", m.Alpha)))
	b.WriteString("\n")

	switch {
	case m.Done:
	case m.Stopping:
		b.WriteString(playerHelpStyle.Render("stopping after this frame..."))
	default:
		b.WriteString(playerHelpStyle.Render("q quit"))
	}
	b.WriteString("\n")
	return b.String()
}

// progressBar renders done/total as a fixed-width bar.
func progressBar(done, total, width int) string {
	if total <= 0 {
		return strings.Repeat("░", width)
	}
	filled := min(width*done/total, width)
	return StyleSuccess.Render(strings.Repeat("█", filled)) + StyleDim.Render(strings.Repeat("░", width-filled))
}

// =============================================================================
// Command
// =============================================================================

// playCommand creates the play command, an interactive morph player.
func (c *CLI) playCommand() *cobra.Command {
	var (
		source, target string
		targetOps      []string
		steps          int
		delay          time.Duration
	)

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a morph in an interactive terminal view",
		Long: `Play a morph in an interactive terminal view with progress.

Press q to stop; the morph halts at the next frame boundary. Without
--target and --target-op the source is morphed into its grayscale version.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.morphOptions()
			if source != "" {
				opts.Source = source
			}
			opts.Target = target
			opts.Steps = steps
			if cmd.Flags().Changed("delay") {
				opts.Delay = noPauseIfZero(delay)
			}
			ops, err := transform.ParseOps(targetOps)
			if err != nil {
				return err
			}
			if len(ops) == 0 && target == "" {
				ops = []transform.Op{{Name: transform.OpGrayscale}}
			}
			opts.TargetOps = ops
			return c.runPlay(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "source image (default: config morph.source)")
	cmd.Flags().StringVarP(&target, "target", "t", "", "target image (default: the source)")
	cmd.Flags().StringArrayVar(&targetOps, "target-op", nil, "transform applied to the target (repeatable)")
	cmd.Flags().IntVarP(&steps, "steps", "n", 10, "number of morph steps")
	cmd.Flags().DurationVar(&delay, "delay", 0, "pause after each frame (default: config morph.delay)")

	return cmd
}

// runPlay runs the morph on a background goroutine and the player on this one.
func (c *CLI) runPlay(ctx context.Context, in io.Reader, out io.Writer, opts pipeline.Options) error {
	if !isTerminal(out) {
		return rterrors.New(rterrors.ErrCodeUnsupported, "play needs a terminal; use 'runigram morph --display ndjson' for redirected output")
	}
	// Frames are drawn by the player, not by a display.
	opts.Display = pipeline.DisplayNone
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	morphCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := NewPlayerModel(opts.Describe(), opts.Steps, cancel)
	p := tea.NewProgram(model, tea.WithInput(in), tea.WithOutput(out))

	renderer := lipgloss.NewRenderer(out)
	go func() {
		res, err := runner.Morph(morphCtx, opts, sink.Discard,
			morph.WithFrameCallback(func(step int, alpha float64, frame *grid.Grid) {
				p.Send(frameMsg{step: step, alpha: alpha, view: sink.RenderHalfBlocks(renderer, frame)})
			}))
		p.Send(doneMsg{res: res, err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("player: %w", err)
	}
	m := final.(PlayerModel)

	switch {
	case m.Err == nil:
		printSuccess("Played %d frames", m.Painted)
		return nil
	case m.Stopping && errors.Is(m.Err, context.Canceled):
		printInfo("Stopped after %d of %d frames", m.Painted, m.Steps+1)
		return nil
	}
	return m.Err
}

package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/corpora-cli/internal/core/ports/driven"
)

const (
	barWidth     = 30
	rateInterval = time.Second
)

var (
	filledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("36"))
	emptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// TerminalSink decodes progress lines through a phase table and renders a
// single-line progress bar. Redraws are limited to one per second so a
// tight emit loop cannot flood the terminal; the final 100% frame is
// always drawn.
type TerminalSink struct {
	mu      sync.Mutex
	table   Table
	out     io.Writer
	limiter *rate.Limiter
	active  bool
}

var _ driven.ProgressSink = (*TerminalSink)(nil)

// NewTerminalSink returns a sink rendering to out, typically os.Stderr.
func NewTerminalSink(table Table, out io.Writer) *TerminalSink {
	return &TerminalSink{
		table:   table,
		out:     out,
		limiter: rate.NewLimiter(rate.Every(rateInterval), 1),
	}
}

// Emit decodes one progress line and redraws the bar. Lines that decode to
// the "?" sentinel are dropped without touching the display.
func (s *TerminalSink) Emit(line string) {
	ev := s.table.Decode(line)
	if ev.Label == SentinelLabel {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if ev.Percent < 100 && !s.limiter.Allow() {
		return
	}

	filled := barWidth * ev.Percent / 100
	bar := filledStyle.Render(strings.Repeat("█", filled)) +
		emptyStyle.Render(strings.Repeat("░", barWidth-filled))

	fmt.Fprintf(s.out, "\r\033[K%s %3d%% %s", bar, ev.Percent, labelStyle.Render(ev.Label))
	s.active = true
}

// Reset ends the current bar, leaving the cursor on a fresh line.
func (s *TerminalSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		fmt.Fprint(s.out, "\n")
		s.active = false
	}
	s.limiter = rate.NewLimiter(rate.Every(rateInterval), 1)
}

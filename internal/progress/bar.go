// Package progress renders download progress, either as an animated
// terminal bar or as plain log lines for non-interactive output.
package progress

import (
	"fmt"
	"io"
	"sync"

	pb "github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
)

const maxBarWidth = 60

var labelStyle = lipgloss.NewStyle().Bold(true)

type startMsg struct{ total int64 }

type advanceMsg struct{ written int64 }

type doneMsg struct{}

type barModel struct {
	bar     pb.Model
	label   string
	total   int64
	written int64
	done    bool
}

func newBarModel(label string) barModel {
	return barModel{
		bar:   pb.New(pb.WithDefaultGradient()),
		label: label,
	}
}

func (m barModel) Init() tea.Cmd {
	return nil
}

func (m barModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		width := msg.Width - len(m.label) - 30
		if width > maxBarWidth {
			width = maxBarWidth
		}
		if width > 0 {
			m.bar.Width = width
		}
		return m, nil
	case startMsg:
		m.total = msg.total
		return m, nil
	case advanceMsg:
		m.written = msg.written
		return m, nil
	case doneMsg:
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m barModel) View() string {
	if m.done {
		return ""
	}

	label := labelStyle.Render(m.label)
	written := humanize.IBytes(uint64(m.written))
	if m.total <= 0 {
		return fmt.Sprintf("%s %s", label, written)
	}

	ratio := float64(m.written) / float64(m.total)
	if ratio > 1 {
		ratio = 1
	}
	return fmt.Sprintf("%s %s %s / %s", label, m.bar.ViewAs(ratio), written, humanize.IBytes(uint64(m.total)))
}

// Bar drives a bubbletea progress bar on a terminal. Input handling
// and signal handling stay disabled so the surrounding download keeps
// its usual interrupt behavior. The UI only runs between Start and
// Done; before Start, Add and Done are no-ops.
type Bar struct {
	label   string
	out     io.Writer
	prog    *tea.Program
	written int64
	done    chan struct{}
	once    sync.Once
}

// NewBar prepares a bar UI writing to out. Nothing is rendered until
// Start is called.
func NewBar(label string, out io.Writer) *Bar {
	return &Bar{label: label, out: out, done: make(chan struct{})}
}

func (b *Bar) Start(total int64) {
	b.prog = tea.NewProgram(newBarModel(b.label),
		tea.WithOutput(b.out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	go func() {
		defer close(b.done)
		if _, err := b.prog.Run(); err != nil {
			log.Debugf("progress ui: %v", err)
		}
	}()
	b.prog.Send(startMsg{total: total})
}

func (b *Bar) Add(n int) {
	if b.prog == nil {
		return
	}
	b.written += int64(n)
	b.prog.Send(advanceMsg{written: b.written})
}

// Done stops the bar and waits for the UI to shut down so later
// writes to the same stream don't interleave with it.
func (b *Bar) Done() {
	if b.prog == nil {
		return
	}
	b.once.Do(func() {
		b.prog.Send(doneMsg{})
		<-b.done
	})
}

package progress

import (
	"bytes"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestPlain(t *testing.T) {
	var buf bytes.Buffer
	p := NewPlain(&buf)

	p.Start(1024)
	p.Add(256)
	p.Add(256)
	p.Add(512)
	p.Done()

	want := " 25% (256 B / 1.0 KiB)\n" +
		" 50% (512 B / 1.0 KiB)\n" +
		"100% (1.0 KiB / 1.0 KiB)\n" +
		"done (1.0 KiB)\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestPlainStepGating(t *testing.T) {
	var buf bytes.Buffer
	p := NewPlain(&buf)

	p.Start(1000)
	for i := 0; i < 10; i++ {
		p.Add(10)
	}
	p.Done()

	lines := strings.Count(buf.String(), "\n")
	if lines != 2 {
		t.Errorf("expected one 10%% line and one done line, got %d lines:\n%s", lines, buf.String())
	}
}

func TestPlainUnknownTotal(t *testing.T) {
	var buf bytes.Buffer
	p := NewPlain(&buf)

	p.Start(-1)
	p.Add(4096)
	p.Done()

	want := "done (4.0 KiB)\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestBarModelLifecycle(t *testing.T) {
	m := newBarModel("Downloading")

	next, _ := m.Update(startMsg{total: 100})
	m = next.(barModel)
	next, _ = m.Update(advanceMsg{written: 50})
	m = next.(barModel)

	view := m.View()
	if !strings.Contains(view, "50 B / 100 B") {
		t.Errorf("view should show byte counts, got %q", view)
	}

	next, cmd := m.Update(doneMsg{})
	m = next.(barModel)
	if cmd == nil {
		t.Error("done should quit the program")
	}
	if m.View() != "" {
		t.Errorf("finished bar should render nothing, got %q", m.View())
	}
}

func TestBarModelUnknownTotal(t *testing.T) {
	m := newBarModel("Downloading")

	next, _ := m.Update(startMsg{total: -1})
	m = next.(barModel)
	next, _ = m.Update(advanceMsg{written: 2048})
	m = next.(barModel)

	view := m.View()
	if !strings.Contains(view, "2.0 KiB") {
		t.Errorf("view should show written bytes, got %q", view)
	}
	if strings.Contains(view, "/") {
		t.Errorf("view should not show a total, got %q", view)
	}
}

func TestBarModelWindowSize(t *testing.T) {
	m := newBarModel("Downloading")

	next, _ := m.Update(tea.WindowSizeMsg{Width: 200, Height: 40})
	m = next.(barModel)
	if m.bar.Width != maxBarWidth {
		t.Errorf("bar width = %d, want capped at %d", m.bar.Width, maxBarWidth)
	}

	next, _ = m.Update(tea.WindowSizeMsg{Width: 10, Height: 40})
	m = next.(barModel)
	if m.bar.Width != maxBarWidth {
		t.Errorf("tiny windows should keep the previous width, got %d", m.bar.Width)
	}
}

func TestBarBeforeStart(t *testing.T) {
	var buf bytes.Buffer
	b := NewBar("Downloading", &buf)

	b.Add(512)
	b.Done()

	if buf.Len() != 0 {
		t.Errorf("expected no output before Start, got %q", buf.String())
	}
}

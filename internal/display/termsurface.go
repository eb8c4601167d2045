package display

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cantor-app/cantor/internal/hymn"
)

var (
	slideTitleStyle = lipgloss.NewStyle().Bold(true).Align(lipgloss.Center)
	slideLabelStyle = lipgloss.NewStyle().Faint(true).Align(lipgloss.Center)
	slideBodyStyle  = lipgloss.NewStyle().Align(lipgloss.Center).Padding(1, 4)
)

// TermSurface renders slides as styled text to a terminal device or file,
// typically a secondary tty driving the audience-facing screen.
type TermSurface struct {
	target string
	out    *os.File
}

// NewTermSurface creates a surface writing to the given target path.
func NewTermSurface(target string) *TermSurface {
	return &TermSurface{target: target}
}

func (t *TermSurface) Open(_ Descriptor) error {
	if t.out != nil {
		return nil
	}
	f, err := os.OpenFile(t.target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open surface target %s: %w", t.target, err)
	}
	t.out = f
	return nil
}

func (t *TermSurface) SetSlide(s hymn.Slide) error {
	if t.out == nil {
		return fmt.Errorf("surface not open")
	}
	var b strings.Builder
	b.WriteString("\x1b[2J\x1b[H") // clear screen, home cursor
	b.WriteString(slideTitleStyle.Render(s.HymnTitle))
	b.WriteString("\n")
	b.WriteString(slideLabelStyle.Render(fmt.Sprintf("%s (%d/%d)", s.Label, s.Index+1, s.Total)))
	b.WriteString("\n")
	b.WriteString(slideBodyStyle.Render(strings.Join(s.Lines, "\n")))
	b.WriteString("\n")
	_, err := t.out.WriteString(b.String())
	return err
}

func (t *TermSurface) SetBackground(image string) error {
	if t.out == nil {
		return fmt.Errorf("surface not open")
	}
	// No image rendering on a text surface; show a quiet placeholder.
	label := image
	if label == "" {
		label = "~"
	}
	_, err := fmt.Fprintf(t.out, "\x1b[2J\x1b[H%s\n", slideLabelStyle.Render(label))
	return err
}

func (t *TermSurface) Clear() error {
	if t.out == nil {
		return nil
	}
	_, err := t.out.WriteString("\x1b[2J\x1b[H")
	return err
}

func (t *TermSurface) Close() error {
	if t.out == nil {
		return nil
	}
	err := t.out.Close()
	t.out = nil
	return err
}

// Verify TermSurface implements Surface at compile time.
var _ Surface = (*TermSurface)(nil)

// Package terminal drives the form submitter from the command line.
package terminal

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/registro/internal/submit"
)

var (
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 2).
			MarginBottom(1)

	titleStyle   = lipgloss.NewStyle().Bold(true)
	loadingStyle = lipgloss.NewStyle().Faint(true).Italic(true)

	kindColors = map[submit.Kind]lipgloss.AdaptiveColor{
		submit.KindSuccess:    {Light: "#1E7B34", Dark: "#5FD787"},
		submit.KindError:      {Light: "#B3261E", Dark: "#FF6B6B"},
		submit.KindIncomplete: {Light: "#A05A00", Dark: "#FFB454"},
	}
)

// Notifier renders notifications as bordered boxes on w.
type Notifier struct {
	mu sync.Mutex
	w  io.Writer
}

func NewNotifier(w io.Writer) *Notifier {
	return &Notifier{w: w}
}

func (n *Notifier) Notify(_ context.Context, note submit.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintln(n.w, Render(note))
}

// Render formats a notification. Loading notices are a single status line.
func Render(note submit.Notification) string {
	if note.Kind == submit.KindLoading {
		return loadingStyle.Render("… " + note.Title + " " + note.Text)
	}

	color, ok := kindColors[note.Kind]
	title := titleStyle
	box := boxStyle
	if ok {
		title = title.Foreground(color)
		box = box.BorderForeground(color)
	}
	return box.Render(lipgloss.JoinVertical(lipgloss.Left, title.Render(note.Title), note.Text))
}

// Package cliui provides reusable terminal UI helpers (spinner, marks,
// styles, markdown rendering) for plexbot commands.
package cliui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

const defaultWrap = 80

var (
	SuccessMark = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Render("✓")
	FailMark    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("✗")

	KeyStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	ValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	NameStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	DimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))

	UserPromptStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	AssistantPromptStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213"))

	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
)

// SpinnerFrames matches bubbles' spinner.Dot so the REPL and TUI look alike.
var SpinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

// clearLine returns the cursor to column zero and erases the line.
const clearLine = "\r\x1b[2K"

// Spinner animates a message on the current line until stopped.
type Spinner struct {
	w   io.Writer
	msg string

	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// StartSpinner starts animating msg on w.
func StartSpinner(w io.Writer, msg string) *Spinner {
	s := &Spinner{
		w:       w,
		msg:     msg,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go s.animate()
	return s
}

func (s *Spinner) animate() {
	defer close(s.stopped)

	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for frame := 0; ; frame++ {
		fmt.Fprintf(s.w, "\r  %s %s", spinnerStyle.Render(SpinnerFrames[frame%len(SpinnerFrames)]), s.msg)

		select {
		case <-s.done:
			return
		case <-ticker.C:
		}
	}
}

// Stop halts the animation and erases the spinner line. Later calls do
// nothing.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		close(s.done)
		<-s.stopped
		fmt.Fprint(s.w, clearLine)
	})
}

// RenderMarkdown renders markdown for terminal display using glamour.
// A width of zero wraps at 80 columns. On failure the input is returned
// unchanged together with the error.
func RenderMarkdown(content string, width int) (string, error) {
	if width <= 0 {
		width = defaultWrap
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content, err
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content, err
	}

	return rendered, nil
}

// MaskSecret hides all but the last four characters of a secret.
func MaskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}

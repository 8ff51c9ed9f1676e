// Package cliui provides reusable terminal UI helpers (styles, spinners,
// step indicators, markdown rendering) for sparrow CLI commands.
package cliui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

var (
	SuccessMark = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Render("✓")
	FailMark    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("✗")

	StepStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	KeyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	DimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	ValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("117"))
	NameStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true)
	ErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	UserPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true).Render("You: ")

	bannerStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder(), true, false).
			BorderForeground(lipgloss.Color("82")).
			Padding(0, 2)
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
)

var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

// Banner renders the chat header: a title line followed by dimmed lines.
func Banner(title string, lines ...string) string {
	body := make([]string, 0, len(lines)+1)
	body = append(body, NameStyle.Render(title))
	for _, l := range lines {
		body = append(body, DimStyle.Render(l))
	}
	return bannerStyle.Render(strings.Join(body, "\n"))
}

// Step prints an animated spinner while fn runs, then replaces it with
// a ✓ or ✗ checkmark and elapsed time.
func Step(w io.Writer, msg string, fn func() error) error {
	done := make(chan struct{})
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)

		frame := 0
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for {
			fmt.Fprintf(w, "\r  %s %s",
				spinnerStyle.Render(spinnerFrames[frame%len(spinnerFrames)]),
				msg,
			)

			select {
			case <-done:
				return
			case <-ticker.C:
				frame++
			}
		}
	}()

	start := time.Now()
	err := fn()
	elapsed := time.Since(start)

	close(done)
	<-stopped

	fmt.Fprintf(w, "\r  %s %s %s\n",
		Mark(err),
		msg,
		StepStyle.Render(fmt.Sprintf("(%s)", FormatDuration(elapsed))),
	)

	return err
}

// Spin shows a transient spinner while fn runs and erases it afterwards.
func Spin(w io.Writer, msg string, fn func()) {
	done := make(chan struct{})
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)

		frame := 0
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for {
			fmt.Fprintf(w, "\r  %s %s",
				spinnerStyle.Render(spinnerFrames[frame%len(spinnerFrames)]),
				DimStyle.Render(msg),
			)

			select {
			case <-done:
				return
			case <-ticker.C:
				frame++
			}
		}
	}()

	fn()
	close(done)
	<-stopped

	// Blank out the spinner line.
	fmt.Fprintf(w, "\r%s\r", strings.Repeat(" ", lipgloss.Width(msg)+6))
}

// Mark returns a ✓ for nil errors or ✗ for non-nil errors.
func Mark(err error) string {
	if err != nil {
		return FailMark
	}
	return SuccessMark
}

// FormatDuration formats a duration for display (e.g. "12ms" or "3.2s").
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// RenderMarkdown renders markdown content for terminal display using glamour.
// On failure the content is returned unrendered along with the error.
func RenderMarkdown(content string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
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

// RenderReply renders an assistant reply whose first token is marker. The
// marker is printed verbatim and only the text after it goes through
// markdown, since "[MARKER]: text" parses as a link reference definition and
// renders as nothing.
func RenderReply(marker, reply string) (string, error) {
	trimmed := strings.TrimSpace(reply)
	if marker == "" || !strings.HasPrefix(trimmed, marker) {
		return RenderMarkdown(reply)
	}

	body := strings.TrimSpace(strings.TrimPrefix(trimmed, marker))
	if body == "" {
		return marker, nil
	}

	rendered, err := RenderMarkdown(body)
	if err != nil {
		return reply, err
	}
	return marker + " " + strings.TrimSpace(rendered), nil
}

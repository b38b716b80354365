package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/meigma/passbook"
)

// progressMode returns the configured progress mode: "auto", "tty", or "plain".
func progressMode() string {
	mode := viper.GetString("progress")
	switch mode {
	case "auto", "tty", "plain":
		return mode
	default:
		return "auto"
	}
}

// shouldShowProgress returns true if progress should be displayed.
func shouldShowProgress() bool {
	switch progressMode() {
	case "plain":
		return false
	case "tty":
		return true
	default:
		return term.IsTerminal(int(os.Stderr.Fd()))
	}
}

// progressLine renders byte progress on one terminal line.
type progressLine struct {
	w     io.Writer
	label string
	drawn bool
}

func (p *progressLine) update(event passbook.ProgressEvent) {
	//nolint:gosec // G115: byte counts are non-negative
	fmt.Fprintf(p.w, "\r\x1b[K%s %s / %s (%3.0f%%)", p.label,
		humanize.IBytes(uint64(event.BytesTransferred)),
		humanize.IBytes(uint64(event.TotalBytes)),
		event.Percent())
	p.drawn = true
}

func (p *progressLine) finish() {
	if p.drawn {
		fmt.Fprintln(p.w)
	}
}

// newCreateProgress creates a progress callback for writing a bundle.
// Returns the callback and a finish function to call when done.
// Returns nil callback if progress should not be shown.
func newCreateProgress() (callback passbook.ProgressCallback, finish func()) {
	if !shouldShowProgress() {
		return nil, func() {}
	}
	line := &progressLine{w: os.Stderr, label: "Writing"}
	return line.update, line.finish
}

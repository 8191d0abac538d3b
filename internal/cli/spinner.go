package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// spinnerFrames animate at spinnerInterval.
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// spinnerOut receives spinner frames. Frames are only drawn when it is a
// terminal, so piped output (render -o -) stays clean.
var (
	spinnerOut     io.Writer = os.Stderr
	spinnerEnabled           = func() bool { return isatty.IsTerminal(os.Stderr.Fd()) }
)

// spinner draws frames next to a message until stopped or until its
// context ends.
type spinner struct {
	message string
	w       io.Writer
	stopCh  chan struct{}
	done    chan struct{}
	once    sync.Once
}

func startSpinner(ctx context.Context, w io.Writer, message string) *spinner {
	s := &spinner{
		message: message,
		w:       w,
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}
	go s.run(ctx)
	return s
}

func (s *spinner) run(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
		case <-s.stopCh:
		case <-ticker.C:
			frame := spinnerFrames[i%len(spinnerFrames)]
			fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.message))
			continue
		}
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
		return
	}
}

// stop ends the animation and waits until the line is cleared. Safe to call
// more than once.
func (s *spinner) stop() {
	s.once.Do(func() { close(s.stopCh) })
	<-s.done
}

// withSpinner runs fn while showing a spinner with message.
func withSpinner[T any](ctx context.Context, message string, fn func(context.Context) (T, error)) (T, error) {
	if !spinnerEnabled() {
		return fn(ctx)
	}
	s := startSpinner(ctx, spinnerOut, message)
	defer s.stop()
	return fn(ctx)
}

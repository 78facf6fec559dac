package output

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// writerIsTTY reports whether w is a file descriptor attached to a terminal.
// Buffers and pipes never animate.
func writerIsTTY(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && isatty.IsTerminal(f.Fd())
}

// Spinner shows an animated line with elapsed time while suites load.
// Example: |  Loading suites (4s elapsed)
//
// On a non-TTY writer the message is printed once and nothing animates.
type Spinner struct {
	mu      sync.Mutex
	writer  io.Writer
	message string
	frames  []string
	started time.Time
	running bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewSpinner creates a spinner writing to w. Call Start to show it.
func NewSpinner(w io.Writer, message string) *Spinner {
	return &Spinner{
		writer:  w,
		message: message,
		frames:  []string{"|", "/", "-", "\\"},
	}
}

// Start begins the animation. Starting a running spinner does nothing.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true
	s.started = time.Now()

	if !writerIsTTY(s.writer) {
		fmt.Fprintf(s.writer, "%s...\n", s.message)
		return
	}

	s.done = make(chan struct{})
	s.wg.Add(1)
	go s.animate(s.done)
}

func (s *Spinner) animate(done <-chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for i := 0; ; i = (i + 1) % len(s.frames) {
		select {
		case <-done:
			return
		case <-ticker.C:
			s.mu.Lock()
			fmt.Fprintf(s.writer, "\r%s  %s", s.frames[i], s.line())
			s.mu.Unlock()
		}
	}
}

// line must be called with the lock held.
func (s *Spinner) line() string {
	return fmt.Sprintf("%s (%ds elapsed)", s.message, int(time.Since(s.started).Seconds()))
}

// UpdateMessage replaces the message while the spinner runs.
func (s *Spinner) UpdateMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
}

// Stop ends the animation and clears its line. It waits for the animation
// goroutine, so nothing is written to the writer afterwards.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	done := s.done
	s.done = nil
	width := len(s.line()) + 4
	s.mu.Unlock()

	if done == nil {
		return
	}
	close(done)
	s.wg.Wait()
	fmt.Fprintf(s.writer, "\r%s\r", strings.Repeat(" ", width))
}

// StopWithMessage stops the spinner and prints a final line.
func (s *Spinner) StopWithMessage(message string) {
	s.Stop()
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.writer, message)
}

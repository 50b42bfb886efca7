package output

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Spinner shows that a slow call is in flight.
type Spinner struct {
	w        io.Writer
	message  string
	frames   []string
	interval time.Duration

	once sync.Once
	done chan struct{}
	wg   sync.WaitGroup
}

// NewSpinner creates a spinner writing to w.
func NewSpinner(w io.Writer, message string) *Spinner {
	return &Spinner{
		w:        w,
		message:  message,
		frames:   []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		interval: 100 * time.Millisecond,
		done:     make(chan struct{}),
	}
}

// Start animates until Stop, Success or Fail.
func (s *Spinner) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for i := 0; ; i++ {
			fmt.Fprintf(s.w, "\r%s %s", s.frames[i%len(s.frames)], s.message)
			select {
			case <-s.done:
				return
			case <-ticker.C:
			}
		}
	}()
}

// halt stops the animation; the final line is written exactly once.
func (s *Spinner) halt(final string) {
	s.once.Do(func() {
		close(s.done)
		s.wg.Wait()
		fmt.Fprint(s.w, final)
	})
}

// Stop clears the spinner line.
func (s *Spinner) Stop() { s.halt("\r\033[K") }

// Success replaces the spinner with a success line.
func (s *Spinner) Success(message string) { s.halt(fmt.Sprintf("\r\033[K✓ %s\n", message)) }

// Fail replaces the spinner with a failure line.
func (s *Spinner) Fail(message string) { s.halt(fmt.Sprintf("\r\033[K✗ %s\n", message)) }

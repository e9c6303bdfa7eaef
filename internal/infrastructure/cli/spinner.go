package cli

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/doeshing/k8sllm/internal/application/session"
	"github.com/doeshing/k8sllm/internal/domain"
)

const (
	spinnerInterval   = 100 * time.Millisecond
	spinnerLabel      = "Thinking..."
	clearLineSequence = "\r\033[K"
)

var spinnerFrames = []rune{'|', '/', '-', '\\'}

// Spinner animates a one-line activity indicator on a terminal stream.
// It can be started again after Stop.
type Spinner struct {
	out io.Writer

	mu   sync.Mutex
	done chan struct{}
	wg   sync.WaitGroup
}

// NewSpinner returns a stopped spinner writing to out.
func NewSpinner(out io.Writer) *Spinner {
	return &Spinner{out: out}
}

// Start draws frames until Stop. Calling Start twice is a no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		return
	}
	done := make(chan struct{})
	s.done = done

	s.wg.Add(1)
	go s.animate(done)
}

// Stop clears the line and waits for the animation to exit.
func (s *Spinner) Stop() {
	s.mu.Lock()
	done := s.done
	s.done = nil
	s.mu.Unlock()
	if done == nil {
		return
	}
	close(done)
	s.wg.Wait()
}

func (s *Spinner) animate(done <-chan struct{}) {
	defer s.wg.Done()
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for frame := 0; ; frame++ {
		fmt.Fprintf(s.out, "\r%c %s", spinnerFrames[frame%len(spinnerFrames)], spinnerLabel)
		select {
		case <-done:
			fmt.Fprint(s.out, clearLineSequence)
			return
		case <-ticker.C:
		}
	}
}

// spinningInterpreter shows the spinner while the model is working.
type spinningInterpreter struct {
	next    session.Interpreter
	spinner *Spinner
}

func (s spinningInterpreter) Interpret(ctx context.Context, query, history string, hasHistory bool) (domain.Intent, error) {
	s.spinner.Start()
	defer s.spinner.Stop()
	return s.next.Interpret(ctx, query, history, hasHistory)
}

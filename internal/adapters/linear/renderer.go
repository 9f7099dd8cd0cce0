// Package linear prints one line per settled event, for CI logs and
// other non-TTY sessions where repainting a tree makes no sense.
package linear

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/foglomon/FSAR/internal/core/domain"
	"github.com/foglomon/FSAR/internal/core/ports"
)

var _ ports.Renderer = (*Renderer)(nil)

// Renderer writes event lines as they settle and a session summary on
// stop.
type Renderer struct {
	mu  sync.Mutex
	out io.Writer
	err error

	created  int
	modified int
	deleted  int
	renamed  int
}

// NewRenderer creates a linear renderer writing to out.
func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out}
}

// Start implements ports.Renderer. Nothing to set up.
func (r *Renderer) Start(context.Context) error { return nil }

// Stop prints the session summary and reports any write failure.
func (r *Renderer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.write(fmt.Sprintf("summary: %d created, %d modified, %d deleted, %d renamed\n",
		r.created, r.modified, r.deleted, r.renamed))
	return r.err
}

// Wait implements ports.Renderer. Rendering is synchronous.
func (r *Renderer) Wait() error { return nil }

// OnSnapshot implements ports.Renderer. Linear output follows events,
// not snapshots.
func (r *Renderer) OnSnapshot(*domain.TreeSnapshot) {}

// OnEvent prints one line for the settled event.
func (r *Renderer) OnEvent(ev domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	target := ev.Path
	switch ev.Kind {
	case domain.EventCreated:
		r.created++
	case domain.EventModified:
		r.modified++
	case domain.EventDeleted:
		r.deleted++
	case domain.EventRenamed:
		r.renamed++
		if ev.OldPath != "" {
			target = ev.OldPath + " -> " + ev.Path
		}
	}

	r.write(fmt.Sprintf("%s %-8s %s\n", ev.Time.Format("15:04:05.000"), ev.Kind, target))
}

func (r *Renderer) write(s string) {
	if _, err := io.WriteString(r.out, s); err != nil && r.err == nil {
		r.err = err
	}
}

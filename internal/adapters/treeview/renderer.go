// Package treeview renders each tree snapshot as a plain text frame:
// the tracked tree in traversal order, a state tag per active node, and
// a rolling stats line. A frame is printed only when it differs from the
// previous one, so an idle tree stays quiet.
package treeview

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/foglomon/FSAR/internal/core/domain"
	"github.com/foglomon/FSAR/internal/core/ports"
)

var _ ports.Renderer = (*Renderer)(nil)

// Renderer prints full-tree frames to a writer. It is synchronous: all
// work happens inside the tracker's callbacks.
type Renderer struct {
	mu   sync.Mutex
	out  io.Writer
	last string
	err  error
}

// NewRenderer creates a tree renderer writing to out.
func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out}
}

// Start implements ports.Renderer. Nothing to set up.
func (r *Renderer) Start(context.Context) error { return nil }

// Stop implements ports.Renderer and reports any write failure.
func (r *Renderer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Wait implements ports.Renderer. Rendering is synchronous.
func (r *Renderer) Wait() error { return nil }

// OnEvent implements ports.Renderer. Tree frames repaint on snapshots,
// not on individual events.
func (r *Renderer) OnEvent(domain.Event) {}

// OnSnapshot renders the snapshot and prints it when the rendered form
// changed.
func (r *Renderer) OnSnapshot(snap *domain.TreeSnapshot) {
	frame := Render(snap)

	r.mu.Lock()
	defer r.mu.Unlock()
	if frame == r.last {
		return
	}
	r.last = frame
	if _, err := io.WriteString(r.out, frame+"\n"); err != nil && r.err == nil {
		r.err = err
	}
}

// Render produces the text form of one snapshot. The form is a pure
// function of the snapshot's tree and stats; the capture timestamp is
// deliberately left out so unchanged trees produce identical frames.
func Render(snap *domain.TreeSnapshot) string {
	var b strings.Builder
	if snap.Root != nil {
		b.WriteString(label(snap.Root) + "\n")
		writeChildren(&b, snap.Root, "")
	}
	fmt.Fprintf(&b, "\nrecent: +%d ~%d -%d\n", snap.Stats.Created, snap.Stats.Modified, snap.Stats.Deleted)
	return b.String()
}

func label(node *domain.SnapshotNode) string {
	name := node.Name
	if node.Kind == domain.KindDir {
		name += "/"
	}
	if node.Bucket != domain.BucketInactive {
		name += " [" + node.Bucket.String() + "]"
	}
	return name
}

func writeChildren(b *strings.Builder, node *domain.SnapshotNode, prefix string) {
	for i, child := range node.Children {
		connector, childPrefix := "+-- ", prefix+"|   "
		if i == len(node.Children)-1 {
			connector, childPrefix = `\-- `, prefix+"    "
		}
		b.WriteString(prefix + connector + label(child) + "\n")
		writeChildren(b, child, childPrefix)
	}
}

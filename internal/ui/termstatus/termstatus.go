// Package termstatus provides the concrete ui.Terminal this tool uses:
// unlike the teacher's termstatus, which drives an updating multi-line
// status display over a raw terminal, this tool only ever prints a
// sequential "Running step: ..." line per stage and, on failure, one
// error line — there is no progress bar to keep redrawing, so the
// heavier cursor-control and background-goroutine machinery has no
// component left to serve.
package termstatus

import (
	"fmt"
	"io"
	"sync"

	"github.com/s3ops/s3pitrestore/internal/ui"
)

var _ ui.Terminal = (*Terminal)(nil)

// Terminal writes Print/Error lines to wr/errWr under a mutex, so
// concurrent pipeline stages can call it without interleaving partial
// lines.
type Terminal struct {
	mu    sync.Mutex
	wr    io.Writer
	errWr io.Writer
}

// New returns a Terminal writing normal lines to wr and error lines to
// errWr.
func New(wr, errWr io.Writer) *Terminal {
	return &Terminal{wr: wr, errWr: errWr}
}

func (t *Terminal) Print(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.wr, line)
}

func (t *Terminal) Error(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.errWr, line)
}

// SetStatus is a no-op: this tool has no updating status display, only
// the sequential per-stage Print lines.
func (t *Terminal) SetStatus(lines []string) {}

func (t *Terminal) CanUpdateStatus() bool { return false }

func (t *Terminal) OutputRaw() io.Writer {
	return t.wr
}

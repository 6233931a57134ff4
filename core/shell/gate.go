package shell

import (
	"bytes"
	"io"
	"sync"
)

// lineGate hands input to the line editor one byte at a time and shuts after
// each line ending until it is reopened.
//
// The line editor reads ahead in the background. Without the gate that read
// would still be pending on the terminal once a foreground job owns it, and
// the kernel would stop the shell with SIGTTIN; it would also swallow input
// meant for the job.
type lineGate struct {
	r io.Reader

	mu     sync.Mutex
	cond   *sync.Cond
	open   bool
	closed bool
}

func newLineGate(r io.Reader) *lineGate {
	g := &lineGate{r: r}
	g.cond = sync.NewCond(&g.mu)
	return g
}

// Open lets the next line through.
func (g *lineGate) Open() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.open = true
	g.cond.Broadcast()
}

func (g *lineGate) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	g.mu.Lock()
	for !g.open && !g.closed {
		g.cond.Wait()
	}
	closed := g.closed
	g.mu.Unlock()

	if closed {
		return 0, io.EOF
	}

	n, err := g.r.Read(p[:1])
	if n > 0 && bytes.ContainsAny(p[:n], "\r\n") {
		g.mu.Lock()
		g.open = false
		g.mu.Unlock()
	}
	return n, err
}

// Close wakes up any blocked reader. The underlying reader is left open.
func (g *lineGate) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	g.cond.Broadcast()
	return nil
}

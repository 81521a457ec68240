package surface

import (
	"sync"

	"github.com/atotto/clipboard"
)

// ClipboardSink writes export records to the system clipboard, which is the
// reference behaviour for committed markers. Each write replaces the previous
// clipboard contents.
type ClipboardSink struct{}

func (ClipboardSink) Write(record []byte) error {
	return clipboard.WriteAll(string(record))
}

// BufferSink keeps every written record in memory. Used headless (no display
// server means no clipboard) and in tests.
type BufferSink struct {
	mu      sync.Mutex
	records [][]byte
}

func (b *BufferSink) Write(record []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	cpy := make([]byte, len(record))
	copy(cpy, record)
	b.records = append(b.records, cpy)
	return nil
}

// Records returns a snapshot of everything written so far.
func (b *BufferSink) Records() [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([][]byte, len(b.records))
	copy(out, b.records)
	return out
}

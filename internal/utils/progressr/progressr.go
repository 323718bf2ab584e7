package progressr

import (
	"context"
	"io"
	"sync/atomic"
	"time"
)

// Reader counts bytes as they are read. Safe to sample from another goroutine.
type Reader struct {
	io.Reader
	total   int64
	current atomic.Int64
}

func NewReader(reader io.Reader, total int64) *Reader {
	return &Reader{
		Reader: reader,
		total:  total,
	}
}

func (p *Reader) Read(b []byte) (int, error) {
	n, err := p.Reader.Read(b)
	p.current.Add(int64(n))
	return n, err
}

func (p *Reader) Current() int64 {
	return p.current.Load()
}

func (p *Reader) Progress() float64 {
	if p.total <= 0 {
		return 0
	}
	return float64(p.current.Load()) / float64(p.total)
}

// Watch calls report every interval until ctx is done or the reader reaches
// its total. The returned func stops the watcher and waits for it to exit.
func (p *Reader) Watch(ctx context.Context, interval time.Duration, report func(current int64, progress float64)) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				progress := p.Progress()
				report(p.Current(), progress)
				if progress >= 1.0 {
					return
				}
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

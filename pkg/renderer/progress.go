package renderer

import (
	"sync"
	"time"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
)

// Progress counts completed rows across all workers. It is the only state
// the workers share.
type Progress struct {
	mu         sync.Mutex
	done       int
	total      int
	nextReport int // Next percentage to log
	start      time.Time
	logger     core.Logger
}

// NewProgress creates a counter expecting total row completions
func NewProgress(total int, logger core.Logger) *Progress {
	return &Progress{total: total, nextReport: 10, start: time.Now(), logger: logger}
}

// Increment records one finished row and logs at every 10%
func (p *Progress) Increment() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done++
	if p.total == 0 {
		return
	}
	percent := p.done * 100 / p.total
	if percent >= p.nextReport {
		p.logger.Printf("Rendered %d%% (%d/%d rows) in %v\n", percent, p.done, p.total, time.Since(p.start).Round(time.Millisecond))
		for p.nextReport <= percent {
			p.nextReport += 10
		}
	}
}

// Done returns the number of rows finished so far
func (p *Progress) Done() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

package extspi

import "sync"

// linePool recycles the []string line buffers the Scanner fills while
// reading descriptor files, adapted from the teacher package's
// PoolManager: the same sync.Pool-plus-hit/miss-counter shape, here
// sized to one allocation-heavy hot path (repeated scans across many
// contracts and strategy roots at process startup) instead of the
// teacher's general resolve/execution contexts.
type linePool struct {
	pool sync.Pool

	metricsMu sync.Mutex
	hits      uint64
	misses    uint64
}

// freshLineBuf marks a buffer as sync.Pool-constructed rather than
// reused, so acquire can tell a hit from a miss - sync.Pool.Get returns
// New()'s result on a miss, and New always returns a []string, so a
// plain type assertion on the result can never distinguish the two.
type freshLineBuf struct {
	lines []string
}

func newLinePool() *linePool {
	return &linePool{
		pool: sync.Pool{
			New: func() any {
				return &freshLineBuf{lines: make([]string, 0, 16)}
			},
		},
	}
}

func (p *linePool) acquire() []string {
	v := p.pool.Get()
	p.metricsMu.Lock()
	if _, fresh := v.(*freshLineBuf); fresh {
		p.misses++
	} else {
		p.hits++
	}
	p.metricsMu.Unlock()

	if fb, ok := v.(*freshLineBuf); ok {
		return fb.lines
	}
	return v.([]string)[:0]
}

func (p *linePool) release(buf []string) {
	if buf == nil {
		return
	}
	p.pool.Put(buf[:0]) //nolint:staticcheck // intentional: reuse the backing array, drop its contents
}

// PoolMetrics reports linePool's cumulative hit/miss counts, exposed
// through Scanner.PoolMetrics for the extspictl "stats" subcommand.
type PoolMetrics struct {
	Hits   uint64
	Misses uint64
}

func (p *linePool) snapshot() PoolMetrics {
	p.metricsMu.Lock()
	defer p.metricsMu.Unlock()
	return PoolMetrics{Hits: p.hits, Misses: p.misses}
}

package columnar

import (
	"fmt"
	"sync"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"go.uber.org/zap"
)

// BuilderPool manages a pool of uint8 array builders bound to one allocator
// to eliminate allocation overhead across encode calls.
type BuilderPool struct {
	pool      sync.Pool
	allocator memory.Allocator
	logger    *zap.Logger

	// Pool statistics for monitoring
	stats struct {
		hits   int64
		misses int64
		resets int64
	}
	statsMutex sync.RWMutex
}

// NewBuilderPool creates a new builder pool with the given allocator
func NewBuilderPool(allocator memory.Allocator, logger *zap.Logger) *BuilderPool {
	if allocator == nil {
		allocator = memory.NewGoAllocator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &BuilderPool{
		allocator: allocator,
		logger:    logger,
	}
}

// Allocator returns the allocator every pooled builder uses.
func (p *BuilderPool) Allocator() memory.Allocator {
	return p.allocator
}

// Get retrieves an empty builder, creating one if the pool is empty
func (p *BuilderPool) Get() *array.Uint8Builder {
	if item := p.pool.Get(); item != nil {
		if b, ok := item.(*array.Uint8Builder); ok && b != nil {
			p.incrementHits()
			return b
		}
		p.logger.Warn("Unexpected item type in builder pool",
			zap.String("type", fmt.Sprintf("%T", item)))
	}

	p.incrementMisses()
	return array.NewUint8Builder(p.allocator)
}

// Put returns a builder to the pool for reuse. Any values still appended
// are discarded and their memory released.
func (p *BuilderPool) Put(b *array.Uint8Builder) {
	if b == nil {
		return
	}

	if b.Len() > 0 {
		p.incrementResets()
	}
	// drops appended values and reserved capacity alike
	b.NewUint8Array().Release()

	p.pool.Put(b)
}

// GetStats returns pool statistics
func (p *BuilderPool) GetStats() (hits, misses, resets int64) {
	p.statsMutex.RLock()
	defer p.statsMutex.RUnlock()
	return p.stats.hits, p.stats.misses, p.stats.resets
}

func (p *BuilderPool) incrementHits() {
	p.statsMutex.Lock()
	p.stats.hits++
	p.statsMutex.Unlock()
}

func (p *BuilderPool) incrementMisses() {
	p.statsMutex.Lock()
	p.stats.misses++
	p.statsMutex.Unlock()
}

func (p *BuilderPool) incrementResets() {
	p.statsMutex.Lock()
	p.stats.resets++
	p.statsMutex.Unlock()
}

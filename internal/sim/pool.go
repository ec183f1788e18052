package sim

import "sync"

// SnapshotPool recycles snapshot buffers of a fixed body count.
type SnapshotPool struct {
	pool sync.Pool
	size int
}

func NewSnapshotPool(bodies int) *SnapshotPool {
	return &SnapshotPool{
		size: bodies,
		pool: sync.Pool{
			New: func() any {
				return make(Snapshot, bodies)
			},
		},
	}
}

func (p *SnapshotPool) Get() Snapshot {
	return p.pool.Get().(Snapshot)
}

func (p *SnapshotPool) Put(s Snapshot) {
	if len(s) == p.size {
		clear(s)
		p.pool.Put(s)
	}
}

// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/meshchain/node/mempool/txgraph"
)

const (
	// DefaultGossipPeriod is how often GossipDriver samples a transaction
	// to (re)broadcast. The design notes cap this at 5 seconds.
	DefaultGossipPeriod = 5 * time.Second

	// MinGossipPeriod is the shortest period GossipDriver accepts.
	MinGossipPeriod = 250 * time.Millisecond

	// gossipSeenCacheCapacity bounds the number of recently broadcast
	// transaction ids the driver remembers.
	gossipSeenCacheCapacity = 10000

	// gossipSeenCacheTTL is how long a transaction id stays in the seen
	// cache before it becomes eligible for re-broadcast again.
	gossipSeenCacheTTL = 300 * time.Second
)

// GossipDriver is a background worker that periodically samples one
// random pool transaction and hands it to the peer layer's Peerage for
// broadcast, gated by an expiring seen-cache so a slowly rotating sample
// of the pool gets bounded re-broadcast rather than a flood.
type GossipDriver struct {
	mp      *MemPool
	peerage Peerage
	period  time.Duration

	seen *ttlcache.Cache[txgraph.TxId, struct{}]

	mtx     sync.Mutex
	started bool
	quit    chan struct{}
	wg      sync.WaitGroup
}

// NewGossipDriver constructs a GossipDriver for mp, broadcasting through
// peerage. A nil peerage makes every tick a no-op. A zero or too-small
// period is clamped to MinGossipPeriod; a period above
// DefaultGossipPeriod is clamped down to it.
func NewGossipDriver(mp *MemPool, peerage Peerage, period time.Duration) *GossipDriver {
	switch {
	case period < MinGossipPeriod:
		period = MinGossipPeriod
	case period > DefaultGossipPeriod:
		period = DefaultGossipPeriod
	}

	seen := ttlcache.New[txgraph.TxId, struct{}](
		ttlcache.WithTTL[txgraph.TxId, struct{}](gossipSeenCacheTTL),
		ttlcache.WithCapacity[txgraph.TxId, struct{}](gossipSeenCacheCapacity),
	)

	return &GossipDriver{mp: mp, peerage: peerage, period: period, seen: seen}
}

// Start launches the driver's sampling loop. Calling Start on an
// already-started driver is a no-op.
func (d *GossipDriver) Start() {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if d.started {
		return
	}
	d.quit = make(chan struct{})
	d.wg.Add(1)
	go d.seen.Start()
	go d.run()
	d.started = true
	log.Debugf("gossip driver started (period %s)", d.period)
}

// Stop signals the sampling loop to exit and waits for it to do so.
// Calling Stop on a driver that was never started is a no-op.
func (d *GossipDriver) Stop() {
	d.mtx.Lock()
	if !d.started {
		d.mtx.Unlock()
		return
	}
	close(d.quit)
	d.started = false
	d.mtx.Unlock()

	d.wg.Wait()
	d.seen.Stop()
	log.Debugf("gossip driver stopped")
}

func (d *GossipDriver) run() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.tick()
		case <-d.quit:
			return
		}
	}
}

func (d *GossipDriver) tick() {
	if d.peerage == nil {
		return
	}

	info, ok := d.mp.RandomPoolTx()
	if !ok {
		return
	}

	id := info.TxId()
	if d.seen.Has(id) {
		return
	}

	d.peerage.Broadcast(info.Tx())
	d.seen.Set(id, struct{}{}, ttlcache.DefaultTTL)
}

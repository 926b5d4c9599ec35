// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"sync"
	"time"
)

const (
	// DefaultTipDriverPeriod is how often TipDriver wakes to check for a
	// pending root. The design notes cap this at 300 seconds.
	DefaultTipDriverPeriod = 300 * time.Second

	// MinTipDriverPeriod is the shortest period TipDriver accepts.
	MinTipDriverPeriod = 2500 * time.Millisecond
)

// TipDriver is a background worker that notices a new UTXO root pushed by
// the chain ingestor and triggers a priority-map rebuild. It holds a
// single-slot pending root: repeated calls to OnNewTip before the next
// tick simply overwrite the slot, so a burst of tip advances only causes
// one rebuild.
type TipDriver struct {
	mp     *MemPool
	period time.Duration

	mtx         sync.Mutex
	started     bool
	pendingRoot [32]byte
	havePending bool

	quit chan struct{}
	wg   sync.WaitGroup
}

// NewTipDriver constructs a TipDriver for mp. A zero or too-small period
// is clamped to MinTipDriverPeriod; a period above DefaultTipDriverPeriod
// is clamped down to it.
func NewTipDriver(mp *MemPool, period time.Duration) *TipDriver {
	switch {
	case period < MinTipDriverPeriod:
		period = MinTipDriverPeriod
	case period > DefaultTipDriverPeriod:
		period = DefaultTipDriverPeriod
	}
	return &TipDriver{mp: mp, period: period}
}

// OnNewTip records newRoot as the pending rebuild target. It is safe to
// call from any goroutine, including concurrently with Start/Stop.
func (d *TipDriver) OnNewTip(newRoot [32]byte) {
	d.mtx.Lock()
	d.pendingRoot = newRoot
	d.havePending = true
	d.mtx.Unlock()
}

// Start launches the driver's wakeup loop. Calling Start on an
// already-started driver is a no-op.
func (d *TipDriver) Start() {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if d.started {
		return
	}
	d.quit = make(chan struct{})
	d.wg.Add(1)
	go d.run()
	d.started = true
	log.Debugf("tip driver started (period %s)", d.period)
}

// Stop signals the wakeup loop to exit and waits for it to do so. Calling
// Stop on a driver that was never started is a no-op.
func (d *TipDriver) Stop() {
	d.mtx.Lock()
	if !d.started {
		d.mtx.Unlock()
		return
	}
	close(d.quit)
	d.started = false
	d.mtx.Unlock()

	d.wg.Wait()
	log.Debugf("tip driver stopped")
}

func (d *TipDriver) run() {
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

func (d *TipDriver) tick() {
	d.mtx.Lock()
	if !d.havePending {
		d.mtx.Unlock()
		return
	}
	root := d.pendingRoot
	d.havePending = false
	d.mtx.Unlock()

	d.mp.RebuildPriorityMap(root)
}

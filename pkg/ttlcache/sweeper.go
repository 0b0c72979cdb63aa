package ttlcache

import "time"

// StartSweeper begins a background worker that calls Sweep every interval.
// It is non-blocking. Calling it while a sweeper is already running does
// nothing. Call Stop to shut the worker down.
func (c *Cache[K, V]) StartSweeper(interval time.Duration) {
	if interval <= 0 {
		return
	}

	c.sweepMu.Lock()
	defer c.sweepMu.Unlock()

	if c.stopCh != nil {
		return
	}

	c.stopCh = make(chan struct{})
	c.doneCh = make(chan struct{})
	go c.sweepLoop(interval, c.stopCh, c.doneCh)
}

// Stop shuts down the background sweeper and blocks until it has exited.
// It is safe to call Stop more than once, or without a running sweeper.
func (c *Cache[K, V]) Stop() {
	c.sweepMu.Lock()
	stopCh, doneCh := c.stopCh, c.doneCh
	c.stopCh, c.doneCh = nil, nil
	c.sweepMu.Unlock()

	if stopCh == nil {
		return
	}

	close(stopCh)
	<-doneCh
}

func (c *Cache[K, V]) sweepLoop(interval time.Duration, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Sweep()
		case <-stopCh:
			return
		}
	}
}

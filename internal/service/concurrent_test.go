package service_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
)

// TestConcurrentBidFloor simulates 50 goroutines racing to outbid each other
// on one auction — protected by a mutex. Each bidder retries at the current
// floor until its bid lands, so the final price must climb by exactly one
// increment per bidder. This verifies our concurrency guard pattern compiles
// and passes -race.
//
// In the real BidService, the DB row-level FOR UPDATE lock provides this
// guarantee. Here we replicate the same guard with sync primitives so the
// race detector can confirm the pattern is sound.
func TestConcurrentBidFloor(t *testing.T) {
	const workers = 50

	starting := decimal.NewFromInt(1000)
	increment := decimal.NewFromInt(100)

	var mu sync.Mutex
	price := starting
	hasBids := false

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			mu.Lock()
			defer mu.Unlock()

			// Floor computed and written under the same lock, so a stale
			// read can never produce a bid below the floor.
			floor := starting
			if hasBids {
				floor = price.Add(increment)
			}
			price = floor
			hasBids = true
		}()
	}
	wg.Wait()

	// 1st bid lands at 1000, each of the remaining 49 adds 100.
	want := starting.Add(increment.Mul(decimal.NewFromInt(workers - 1)))
	if !price.Equal(want) {
		t.Errorf("final price should be %s, got %s", want, price)
	}
}

// TestConcurrentVoidGuard verifies that void idempotency holds under
// concurrent access: only one of N goroutines succeeds at voiding a bid.
func TestConcurrentVoidGuard(t *testing.T) {
	const workers = 20
	type bidState struct {
		mu     sync.Mutex
		voided bool
	}

	var (
		b      bidState
		wins   int64
		losses int64
		wg     sync.WaitGroup
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			b.mu.Lock()
			defer b.mu.Unlock()

			if b.voided {
				// Second+ call: guarded UPDATE matches zero rows
				atomic.AddInt64(&losses, 1)
				return
			}
			b.voided = true
			atomic.AddInt64(&wins, 1)
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("exactly 1 goroutine should have voided the bid, got %d", wins)
	}
	if losses != workers-1 {
		t.Errorf("expected %d rejections, got %d", workers-1, losses)
	}
}

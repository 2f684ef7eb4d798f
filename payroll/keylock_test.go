package payroll

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/warp/payroll-engine/calendar"
)

func TestKeyLocks_SerializesSameKey(t *testing.T) {
	locks := newKeyLocks()
	k := Key{EmployeeID: "emp-1", Period: calendar.NewPeriod(2024, time.January)}

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.lock(k)
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Empty(t, locks.locks, "released keys are dropped")
}

func TestKeyLocks_DifferentKeysDoNotBlock(t *testing.T) {
	locks := newKeyLocks()
	jan := Key{EmployeeID: "emp-1", Period: calendar.NewPeriod(2024, time.January)}
	feb := Key{EmployeeID: "emp-1", Period: calendar.NewPeriod(2024, time.February)}

	unlockJan := locks.lock(jan)
	defer unlockJan()

	done := make(chan struct{})
	go func() {
		unlock := locks.lock(feb)
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on another key blocked")
	}
}

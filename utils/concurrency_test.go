package utils

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkerPoolRunsAllJobs(t *testing.T) {
	pool := NewWorkerPool(3, 0)

	var counter int64
	for i := 0; i < 20; i++ {
		pool.Submit(func() {
			atomic.AddInt64(&counter, 1)
		})
	}
	pool.Wait()

	if counter != 20 {
		t.Errorf("expected 20 jobs to run, got %d", counter)
	}
}

func TestWorkerPoolBoundsConcurrency(t *testing.T) {
	const maxWorkers = 2
	pool := NewWorkerPool(maxWorkers, 0)

	var active, peak int64
	for i := 0; i < 10; i++ {
		pool.Submit(func() {
			cur := atomic.AddInt64(&active, 1)
			for {
				old := atomic.LoadInt64(&peak)
				if cur <= old || atomic.CompareAndSwapInt64(&peak, old, cur) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt64(&active, -1)
		})
	}
	pool.Wait()

	if peak > maxWorkers {
		t.Errorf("observed %d concurrent jobs; limit is %d", peak, maxWorkers)
	}
}

func TestWorkerPoolRateLimit(t *testing.T) {
	pool := NewWorkerPool(5, 20)

	start := time.Now()
	for i := 0; i < 3; i++ {
		pool.Submit(func() {})
	}
	pool.Wait()

	// Three jobs at a 20ms interval need at least two gaps.
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("rate limit not enforced: 3 jobs finished in %v", elapsed)
	}
}

func TestURLSetAdd(t *testing.T) {
	set := NewURLSet()

	if !set.Add("https://example.com/a") {
		t.Error("first add should report new")
	}
	if set.Add("https://example.com/a") {
		t.Error("second add of the same URL should report duplicate")
	}
	if !set.Contains("https://example.com/a") {
		t.Error("set should contain the added URL")
	}
	if set.Contains("https://example.com/b") {
		t.Error("set should not contain an unseen URL")
	}
	if set.Size() != 1 {
		t.Errorf("size = %d; want 1", set.Size())
	}
}

func TestURLSetConcurrentAdd(t *testing.T) {
	set := NewURLSet()

	var wg sync.WaitGroup
	var added int64
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if set.Add("https://example.com/shared") {
				atomic.AddInt64(&added, 1)
			}
		}()
	}
	wg.Wait()

	if added != 1 {
		t.Errorf("URL added %d times; want exactly once", added)
	}
	if set.Size() != 1 {
		t.Errorf("size = %d; want 1", set.Size())
	}
}

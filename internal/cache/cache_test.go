package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestGetOrComputeCoalesces(t *testing.T) {
	c := New[string, int](time.Minute, func(k string) string { return k })

	var calls int32
	compute := func(ctx context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(20 * time.Millisecond)
		return 42, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.GetOrCompute(context.Background(), "k", compute)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			results[i] = v
		}(i)
	}
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("expected exactly 1 compute call, got %d", got)
	}
	for i, v := range results {
		if v != 42 {
			t.Errorf("result[%d] = %d, want 42", i, v)
		}
	}
}

func TestExpiryAndSweep(t *testing.T) {
	c := New[string, int](10*time.Millisecond, func(k string) string { return k })
	c.Set("k", 1)

	if _, ok := c.Get("k"); !ok {
		t.Fatalf("expected fresh entry present")
	}

	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Errorf("expected expired entry to be absent")
	}

	c.Sweep()
	if c.Len() != 0 {
		t.Errorf("expected Sweep to remove expired entry, Len() = %d", c.Len())
	}
}

func TestGetOrComputePropagatesError(t *testing.T) {
	c := New[string, int](time.Minute, func(k string) string { return k })
	wantErr := fmt.Errorf("boom")

	_, err := c.GetOrCompute(context.Background(), "k", func(ctx context.Context) (int, error) {
		return 0, wantErr
	})
	if err != wantErr {
		t.Errorf("expected error to propagate, got %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("expected failed compute not to populate cache")
	}
}

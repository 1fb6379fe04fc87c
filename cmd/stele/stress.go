package main

import (
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/zeebo/errs/v2"

	"github.com/AlyssaRoseDev/stele"
)

// value is the value pushed at index i. It is cheap to recompute so readers
// can check what they see.
func value(i int) uint64 { return uint64(i) * 0x9e3779b97f4a7c15 }

func runStress(log *slog.Logger, cfg Config) error {
	if err := checkCount(cfg.Count); err != nil {
		return err
	} else if cfg.Readers < 0 {
		return errs.Errorf("readers must not be negative: %d", cfg.Readers)
	}

	a, tr, err := newAllocator(cfg)
	if err != nil {
		return err
	}

	w, r, err := stele.New[uint64](stele.WithAllocator(a), stele.WithoutCleanup())
	if err != nil {
		return err
	}

	results := make([]error, cfg.Readers)
	var wg sync.WaitGroup
	for i := range results {
		rd := r.Clone()
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = errs.Combine(verify(rd, cfg.Count), rd.Close())
		}()
	}

	start := time.Now()
	for i := 0; i < cfg.Count; i++ {
		w.Push(value(i))
	}
	pushed := time.Since(start)
	wg.Wait()

	log.Info("stress",
		"count", cfg.Count,
		"readers", cfg.Readers,
		"push", pushed,
		"total", time.Since(start),
		"size", r.Size(),
	)

	var eg errs.Group
	eg.Add(results...)
	eg.Add(w.Close(), r.Close())
	eg.Add(logStats(log, tr))
	return eg.Err()
}

// verify follows the sequence until it has seen count values and checks each
// one exactly once.
func verify(r *stele.Reader[uint64], count int) error {
	for last := 0; last < count; {
		n := r.Len()
		if n < last {
			return errs.Errorf("length went backwards: %d after %d", n, last)
		}
		for i := last; i < n; i++ {
			if got, exp := r.Get(i), value(i); got != exp {
				return errs.Errorf("index %d: got %#x expected %#x", i, got, exp)
			}
		}
		if n == last {
			runtime.Gosched()
		}
		last = n
	}
	return nil
}

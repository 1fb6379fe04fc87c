package main

import (
	"io"
	"log/slog"

	"github.com/zeebo/errs/v2"

	"github.com/AlyssaRoseDev/stele"
)

func runLayout(log *slog.Logger, out io.Writer, cfg Config) error {
	if err := checkCount(cfg.Count); err != nil {
		return err
	}

	a, tr, err := newAllocator(cfg)
	if err != nil {
		return err
	}

	w, r, err := stele.New[uint64](stele.WithAllocator(a), stele.WithoutCleanup())
	if err != nil {
		return err
	}
	for i := 0; i < cfg.Count; i++ {
		w.Push(value(i))
	}

	w.Dump(out)
	log.Debug("layout", "count", cfg.Count, "size", w.Size())

	var eg errs.Group
	eg.Add(w.Close(), r.Close())
	eg.Add(logStats(log, tr))
	return eg.Err()
}

package main

import (
	"bytes"
	"log/slog"
	"os"

	"github.com/zeebo/errs/v2"

	"github.com/AlyssaRoseDev/stele"
	"github.com/AlyssaRoseDev/stele/num"
	"github.com/AlyssaRoseDev/stele/snapshot"
)

func runSnapshot(log *slog.Logger, cfg Config) (err error) {
	if err := checkCount(cfg.Count); err != nil {
		return err
	}

	a, tr, err := newAllocator(cfg)
	if err != nil {
		return err
	}

	var eg errs.Group
	defer func() {
		eg.Add(err)
		eg.Add(logStats(log, tr))
		err = eg.Err()
	}()

	w, r, err := stele.New[num.U64](stele.WithAllocator(a), stele.WithoutCleanup())
	if err != nil {
		return err
	}
	defer func() { eg.Add(w.Close(), r.Close()) }()

	for i := 0; i < cfg.Count; i++ {
		w.Push(num.U64(value(i)))
	}

	var buf bytes.Buffer
	n, err := snapshot.Encode(&buf, r)
	if err != nil {
		return err
	}
	log.Info("encoded", "count", cfg.Count, "bytes", n)

	if cfg.Out != "" {
		if err := os.WriteFile(cfg.Out, buf.Bytes(), 0o644); err != nil {
			return errs.Wrap(err)
		}
		log.Info("wrote snapshot", "path", cfg.Out)
	}

	w2, r2, err := snapshot.Decode[num.U64](buf.Bytes(), stele.WithAllocator(a), stele.WithoutCleanup())
	if err != nil {
		return err
	}
	defer func() { eg.Add(w2.Close(), r2.Close()) }()

	if r2.Len() != r.Len() {
		return errs.Errorf("decoded %d values, expected %d", r2.Len(), r.Len())
	}
	for i, v := range r2.All() {
		if *v != r.Get(i) {
			return errs.Errorf("index %d: decoded %#x expected %#x", i, uint64(*v), uint64(r.Get(i)))
		}
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/killianstorm/ariane/internal/config"
	"github.com/killianstorm/ariane/internal/model"
	"github.com/killianstorm/ariane/internal/server"
	"github.com/killianstorm/ariane/internal/store"
	"github.com/killianstorm/ariane/internal/util/workerpool"
	"go.uber.org/zap"
)

// soakDriver drives random masked writes and voted reads against a
// TripleRedundantStore, injecting single-replica faults at a configured
// rate and verifying every read against a shadow image. Each worker owns a
// disjoint address range, so workers never race on expected values; the
// store itself serializes each fan-out-then-vote step.
type soakDriver struct {
	store  *store.TripleRedundantStore
	cfg    *config.SoakConfig
	logger *zap.Logger

	scrubMu   sync.Mutex
	lastScrub server.ScrubStatus

	writes         uint64
	reads          uint64
	faultsInjected uint64
	mismatches     uint64
}

// SoakReport summarizes a completed soak run.
type SoakReport struct {
	Writes         uint64
	Reads          uint64
	FaultsInjected uint64
	Mismatches     uint64
}

func newSoakDriver(st *store.TripleRedundantStore, cfg *config.SoakConfig, logger *zap.Logger) *soakDriver {
	return &soakDriver{
		store:  st,
		cfg:    cfg,
		logger: logger,
	}
}

// ScrubStatus returns the outcome of the most recent scrub pass.
func (d *soakDriver) ScrubStatus() server.ScrubStatus {
	d.scrubMu.Lock()
	defer d.scrubMu.Unlock()
	return d.lastScrub
}

// Run executes the soak workload and blocks until it finishes or ctx is
// cancelled.
func (d *soakDriver) Run(ctx context.Context) (SoakReport, error) {
	geom := d.store.Geometry()
	workers := d.cfg.Workers
	if uint(workers) > geom.Depth {
		workers = int(geom.Depth)
	}

	pool := workerpool.NewWorkerPool(&workerpool.Config{
		Name:       "soak",
		MaxWorkers: workers,
		QueueSize:  d.cfg.QueueSize,
		Logger:     d.logger,
	})
	defer pool.Stop(d.cfg.StopTimeout)

	scrubDone := make(chan struct{})
	go d.scrubLoop(ctx, scrubDone)
	defer close(scrubDone)

	opsPerWorker := d.cfg.Operations / uint64(workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := geom.Depth * uint(w) / uint(workers)
		hi := geom.Depth * uint(w+1) / uint(workers)
		seed := d.cfg.Seed + int64(w)

		wg.Add(1)
		task := workerpool.Task{
			ID:      fmt.Sprintf("soak-worker-%d", w),
			Context: ctx,
			Fn: func(taskCtx context.Context) error {
				defer wg.Done()
				return d.workerLoop(taskCtx, lo, hi, opsPerWorker, seed)
			},
		}
		if err := pool.SubmitWithContext(ctx, task); err != nil {
			wg.Done()
			return d.report(), err
		}
	}

	wg.Wait()

	stats := pool.Stats()
	d.logger.Info("Soak traffic complete",
		zap.Uint64("tasks_completed", stats.CompletedTasks),
		zap.Uint64("tasks_failed", stats.FailedTasks))

	// Final scrub verifies the replicas converged after the host rewrote
	// every injected fault.
	scrubReport, err := d.store.Scrub(ctx)
	if err != nil {
		return d.report(), err
	}
	d.setScrubStatus(scrubReport)

	return d.report(), nil
}

// workerLoop runs random write/read/verify traffic over [lo, hi).
func (d *soakDriver) workerLoop(ctx context.Context, lo, hi uint, ops uint64, seed int64) error {
	geom := d.store.Geometry()
	rng := rand.New(rand.NewSource(seed))

	// Capture the initial image so verification works with any init policy.
	shadow := make([]model.Word, hi-lo)
	for addr := lo; addr < hi; addr++ {
		w, err := d.store.Read(addr)
		if err != nil {
			return err
		}
		shadow[addr-lo] = w
	}

	for op := uint64(0); op < ops; op++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		addr := lo + uint(rng.Intn(int(hi-lo)))
		data := d.randomWord(rng)
		mask := d.randomMask(rng)

		expected := geom.Merge(shadow[addr-lo], data, mask)
		if err := d.store.Write(addr, data, mask); err != nil {
			return err
		}
		shadow[addr-lo] = expected
		atomic.AddUint64(&d.writes, 1)

		injected := false
		if rng.Float64() < d.cfg.FaultRate {
			replica := model.Replica(rng.Intn(model.NumReplicas))
			if err := d.store.InjectFault(replica, addr, d.randomWord(rng)); err != nil {
				return err
			}
			atomic.AddUint64(&d.faultsInjected, 1)
			injected = true
		}

		got, err := d.store.Read(addr)
		atomic.AddUint64(&d.reads, 1)
		if err != nil {
			atomic.AddUint64(&d.mismatches, 1)
			d.logger.Error("Read failed during soak",
				zap.Uint("address", addr),
				zap.Error(err))
		} else if !geom.Equal(got, expected) {
			atomic.AddUint64(&d.mismatches, 1)
			d.logger.Error("Read returned wrong word",
				zap.Uint("address", addr),
				zap.String("got", fmt.Sprintf("%x", []byte(got))),
				zap.String("expected", fmt.Sprintf("%x", []byte(expected))))
		}

		// The store never repairs a replica; the host rewrites the word to
		// clear the injected fault before the next one lands.
		if injected {
			if err := d.store.Write(addr, expected, geom.FullMask()); err != nil {
				return err
			}
			atomic.AddUint64(&d.writes, 1)
		}
	}

	return nil
}

func (d *soakDriver) scrubLoop(ctx context.Context, done <-chan struct{}) {
	ticker := time.NewTicker(d.cfg.ScrubEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			report, err := d.store.Scrub(ctx)
			if err != nil {
				d.logger.Warn("Scrub failed", zap.Error(err))
				continue
			}
			d.setScrubStatus(report)
		case <-ctx.Done():
			return
		case <-done:
			return
		}
	}
}

func (d *soakDriver) setScrubStatus(report store.ScrubReport) {
	d.scrubMu.Lock()
	defer d.scrubMu.Unlock()
	d.lastScrub = server.ScrubStatus{
		Divergent:     report.Divergent,
		Unrecoverable: report.Unrecoverable,
	}
}

func (d *soakDriver) randomWord(rng *rand.Rand) model.Word {
	geom := d.store.Geometry()
	w := geom.NewWord()
	rng.Read(w)
	return geom.Normalize(w)
}

func (d *soakDriver) randomMask(rng *rand.Rand) model.Mask {
	geom := d.store.Geometry()
	m := geom.EmptyMask()
	for i := 0; i < geom.WordBytes(); i++ {
		if rng.Intn(2) == 1 {
			m.SetBit(i)
		}
	}
	return m
}

func (d *soakDriver) report() SoakReport {
	return SoakReport{
		Writes:         atomic.LoadUint64(&d.writes),
		Reads:          atomic.LoadUint64(&d.reads),
		FaultsInjected: atomic.LoadUint64(&d.faultsInjected),
		Mismatches:     atomic.LoadUint64(&d.mismatches),
	}
}

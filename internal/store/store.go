// Package store implements TripleRedundantStore, a word-addressed memory that
// keeps every value in three independent replicas and recovers the correct
// value on read by majority voting, masking a single faulty replica without
// interrupting service.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/killianstorm/ariane/internal/errors"
	"github.com/killianstorm/ariane/internal/metrics"
	"github.com/killianstorm/ariane/internal/model"
	"github.com/killianstorm/ariane/internal/storage/sram"
	"github.com/killianstorm/ariane/internal/validation"
	"github.com/killianstorm/ariane/internal/vote"
	"go.uber.org/zap"
)

// Options configures a TripleRedundantStore.
type Options struct {
	// RegisteredOutput adds one extra step of read latency by passing the
	// voted word through an output register. Semantics are unchanged.
	RegisteredOutput bool

	// Init selects the initialization policy, applied identically to all
	// three replicas.
	Init sram.Options

	// RAMFactory constructs the storage primitive for each replica. The
	// primitive is an external collaborator; nil selects the in-memory
	// default.
	RAMFactory sram.Factory

	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

// TripleRedundantStore stores every word in replicas A, B and C. Writes fan
// out identically to all three; reads sample all three and vote. Each
// operation is one atomic step: the mutex makes the whole
// fan-out-then-vote sequence a critical section, so a multi-threaded host
// never observes a partially updated replica set.
type TripleRedundantStore struct {
	mu         sync.Mutex
	geom       model.Geometry
	replicas   [model.NumReplicas]sram.RAM
	validator  *validation.Validator
	registered bool
	outReg     model.Word
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// New creates a TripleRedundantStore with the given geometry.
func New(g model.Geometry, opts Options) (*TripleRedundantStore, error) {
	if err := validation.ValidateGeometry(g); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	factory := opts.RAMFactory
	if factory == nil {
		factory = sram.NewRAM
	}

	s := &TripleRedundantStore{
		geom:       g,
		validator:  validation.NewValidator(g),
		registered: opts.RegisteredOutput,
		outReg:     g.NewWord(),
		logger:     logger,
		metrics:    opts.Metrics,
	}

	for i := range s.replicas {
		r, err := factory(g, opts.Init)
		if err != nil {
			return nil, errors.InternalError("failed to construct replica "+model.Replica(i).String(), err)
		}
		s.replicas[i] = r
	}

	logger.Info("Triple-redundant store created",
		zap.Uint("word_bits", g.WordBits),
		zap.Uint("depth", g.Depth),
		zap.Bool("registered_output", opts.RegisteredOutput),
		zap.String("init_policy", string(opts.Init.Policy)))

	return s, nil
}

// Geometry returns the fixed shape of the store.
func (s *TripleRedundantStore) Geometry() model.Geometry {
	return s.geom
}

// ReadLatency returns the read latency in steps: 1, or 2 with a registered
// output.
func (s *TripleRedundantStore) ReadLatency() int {
	if s.registered {
		return 2
	}
	return 1
}

// Write broadcasts an identical masked write to all three replicas in one
// step. Validation happens before any replica is touched, so the operation
// is never observably split: either all three replicas receive the write or
// none do.
func (s *TripleRedundantStore) Write(addr uint, data model.Word, mask model.Mask) error {
	start := time.Now()

	if err := s.validator.ValidateWrite(addr, data, mask); err != nil {
		s.logger.Warn("Write validation failed",
			zap.Uint("address", addr),
			zap.Error(err))
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.replicas {
		if err := r.Write(addr, data, mask); err != nil {
			// Validation already passed; a replica rejecting the write
			// is a store bug, not a caller error.
			return errors.InternalError("replica "+model.Replica(i).String()+" rejected write", err)
		}
	}

	if s.metrics != nil {
		s.metrics.RecordWriteRequest(time.Since(start).Seconds())
	}
	return nil
}

// Read samples all three replicas at the same logical instant and returns
// the majority word. A single divergent replica is masked transparently and
// never surfaces as an error. If all three replicas disagree pairwise there
// is no majority and a VotingFailure error is returned.
func (s *TripleRedundantStore) Read(addr uint) (model.Word, error) {
	start := time.Now()

	if err := s.validator.ValidateAddress(addr); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, b, c, err := s.sample(addr)
	if err != nil {
		return nil, err
	}

	result, err := vote.Vote(s.geom, addr, a, b, c)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordVotingFailure()
		}
		s.logger.Warn("Voting failure, no two replicas agree",
			zap.Uint("address", addr))
		return nil, err
	}

	s.observeVote(addr, result)

	word := result.Word.Clone()
	if s.registered {
		s.outReg = word
		word = s.outReg.Clone()
	}

	if s.metrics != nil {
		s.metrics.RecordReadRequest(time.Since(start).Seconds())
	}
	return word, nil
}

// sample reads the word at addr from all three replicas. Caller holds the
// mutex.
func (s *TripleRedundantStore) sample(addr uint) (a, b, c model.Word, err error) {
	if a, err = s.replicas[model.ReplicaA].Read(addr); err != nil {
		return nil, nil, nil, errors.InternalError("replica A read failed", err)
	}
	if b, err = s.replicas[model.ReplicaB].Read(addr); err != nil {
		return nil, nil, nil, errors.InternalError("replica B read failed", err)
	}
	if c, err = s.replicas[model.ReplicaC].Read(addr); err != nil {
		return nil, nil, nil, errors.InternalError("replica C read failed", err)
	}
	return a, b, c, nil
}

func (s *TripleRedundantStore) observeVote(addr uint, result model.VoteResult) {
	if result.Unanimous {
		if s.metrics != nil {
			s.metrics.RecordUnanimousVote()
		}
		return
	}

	if s.metrics != nil {
		s.metrics.RecordOutvotedReplica(result.Outlier.String())
	}
	s.logger.Debug("Replica outvoted",
		zap.Uint("address", addr),
		zap.String("replica", result.Outlier.String()))
}

// InjectFault writes a word directly into a single replica, bypassing the
// fan-out. This is the fault-injection hook used by verification harnesses;
// production writes always go through Write.
func (s *TripleRedundantStore) InjectFault(r model.Replica, addr uint, data model.Word) error {
	if err := s.validator.ValidateReplica(r); err != nil {
		return err
	}
	if err := s.validator.ValidateAddress(addr); err != nil {
		return err
	}
	if err := s.validator.ValidateData(data); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.replicas[r].Write(addr, data, s.geom.FullMask()); err != nil {
		return errors.InternalError("fault injection failed", err)
	}

	if s.metrics != nil {
		s.metrics.RecordFaultInjection(r.String())
	}
	s.logger.Debug("Fault injected",
		zap.String("replica", r.String()),
		zap.Uint("address", addr))
	return nil
}

// PeekReplica reads a single replica without voting. Verification hook.
func (s *TripleRedundantStore) PeekReplica(r model.Replica, addr uint) (model.Word, error) {
	if err := s.validator.ValidateReplica(r); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateAddress(addr); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.replicas[r].Read(addr)
	if err != nil {
		return nil, errors.InternalError("replica peek failed", err)
	}
	return w, nil
}

// ScrubReport summarizes a read-only divergence audit.
type ScrubReport struct {
	WordsScanned  uint
	Divergent     uint // addresses where exactly one replica disagrees
	Unrecoverable uint // addresses where all three replicas disagree
	DigestsMatch  bool
	Digests       [model.NumReplicas]uint32
}

// Clean reports whether the scrub found no divergence at all.
func (r ScrubReport) Clean() bool {
	return r.Divergent == 0 && r.Unrecoverable == 0
}

// Scrub audits the replicas for divergence without mutating them. Matching
// content digests across all three replicas short-circuit the pass;
// otherwise every address is voted and counted. The store never rewrites a
// faulty replica: repair is outside this component's contract.
func (s *TripleRedundantStore) Scrub(ctx context.Context) (ScrubReport, error) {
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	var report ScrubReport
	for i, r := range s.replicas {
		report.Digests[i] = r.Digest()
	}
	report.DigestsMatch = report.Digests[0] == report.Digests[1] &&
		report.Digests[1] == report.Digests[2]

	if report.DigestsMatch {
		if s.metrics != nil {
			s.metrics.RecordScrub(time.Since(start).Seconds(), 0, 0)
		}
		return report, nil
	}

	for addr := uint(0); addr < s.geom.Depth; addr++ {
		if addr%1024 == 0 {
			select {
			case <-ctx.Done():
				return report, ctx.Err()
			default:
			}
		}

		a, b, c, err := s.sample(addr)
		if err != nil {
			return report, err
		}

		report.WordsScanned++
		result, err := vote.Vote(s.geom, addr, a, b, c)
		switch {
		case err != nil:
			report.Unrecoverable++
		case !result.Unanimous:
			report.Divergent++
		}
	}

	if s.metrics != nil {
		s.metrics.RecordScrub(time.Since(start).Seconds(), int(report.Divergent), int(report.Unrecoverable))
	}
	s.logger.Info("Scrub completed",
		zap.Uint("words_scanned", report.WordsScanned),
		zap.Uint("divergent", report.Divergent),
		zap.Uint("unrecoverable", report.Unrecoverable),
		zap.Duration("duration", time.Since(start)))

	return report, nil
}

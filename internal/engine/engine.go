// Package engine runs one extraction cycle: read a batch of raw messages,
// extract candidates, validate, gate through the seen-store and hand the
// accepted deals to the publisher.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dealscout/dealscout/internal/config"
	"github.com/dealscout/dealscout/internal/dedup"
	"github.com/dealscout/dealscout/internal/models"
	"github.com/dealscout/dealscout/internal/status"
	"github.com/dealscout/dealscout/internal/validator"
)

// ErrCycleRunning reports that a trigger arrived while the previous cycle
// for this source was still in flight. Cycles never overlap; the trigger is
// skipped, not queued.
var ErrCycleRunning = errors.New("extraction cycle already running")

const extractWorkers = 4

type Engine struct {
	reader    SourceReader
	extractor Extractor
	validator *validator.Validator
	store     dedup.Store
	publisher Publisher
	cfg       *config.Config

	cycleMu sync.Mutex

	statsMu       sync.Mutex
	lastCycleTime time.Time
	lastDegraded  bool
}

// CycleResult is what one cycle produced.
type CycleResult struct {
	Messages  int
	Emitted   []models.Deal
	Published int
	Degraded  bool
}

// Stats is the read-only snapshot served by the status surface.
type Stats struct {
	LastCycleTime time.Time `json:"last_cycle_time"`
	LastDegraded  bool      `json:"last_cycle_degraded"`
	SeenIDs       int       `json:"processed_ids"`
	Country       string    `json:"country"`
}

func New(reader SourceReader, ext Extractor, v *validator.Validator, store dedup.Store, pub Publisher, cfg *config.Config) *Engine {
	return &Engine{
		reader:    reader,
		extractor: ext,
		validator: v,
		store:     store,
		publisher: pub,
		cfg:       cfg,
	}
}

// RunCycle executes one full cycle. Per-message failures are contained to
// that message; only an overlapping trigger returns an error.
func (e *Engine) RunCycle(ctx context.Context) (CycleResult, error) {
	if !e.cycleMu.TryLock() {
		return CycleResult{}, ErrCycleRunning
	}
	defer e.cycleMu.Unlock()

	start := time.Now()
	result := e.runLocked(ctx)

	e.statsMu.Lock()
	e.lastCycleTime = time.Now()
	e.lastDegraded = result.Degraded
	e.statsMu.Unlock()

	status.CyclesTotal.Inc()
	if result.Degraded {
		status.DegradedCyclesTotal.Inc()
	}
	slog.Info("Cycle complete",
		"messages", result.Messages,
		"emitted", len(result.Emitted),
		"published", result.Published,
		"degraded", result.Degraded,
		"duration", time.Since(start))
	return result, nil
}

func (e *Engine) runLocked(ctx context.Context) CycleResult {
	messages, err := e.reader.ReadMessages(ctx, e.cfg.BatchSize)
	if err != nil {
		slog.Warn("Source read failed, cycle degraded", "error", err)
		return CycleResult{Degraded: true}
	}
	status.MessagesTotal.Add(float64(len(messages)))

	candidates := e.extractAll(ctx, messages)

	var result CycleResult
	result.Messages = len(messages)

	for _, candidate := range candidates {
		if len(result.Emitted) >= e.cfg.PublishLimit {
			// Remaining candidates are left unmarked so the channel
			// re-surfacing them next cycle gives them another chance.
			break
		}
		deal, ok := e.gate(ctx, candidate)
		if !ok {
			continue
		}
		result.Emitted = append(result.Emitted, deal)
		status.DealsEmittedTotal.Inc()

		if err := e.publisher.Publish(ctx, deal); err != nil {
			status.PublishFailuresTotal.Inc()
			slog.Error("Publish failed", "id", deal.ProductID, "error", err)
			continue
		}
		result.Published++
	}
	return result
}

// extractAll fans message extraction out across a small worker pool. Order
// of the input batch is preserved in the output; messages are fully
// independent of each other.
func (e *Engine) extractAll(ctx context.Context, messages []models.RawMessage) []models.DealCandidate {
	type slot struct {
		candidate models.DealCandidate
		ok        bool
	}
	slots := make([]slot, len(messages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(extractWorkers)
	for i, msg := range messages {
		g.Go(func() error {
			candidate, ok := e.extractor.Extract(gctx, msg)
			slots[i] = slot{candidate: candidate, ok: ok}
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; failures are per-message drops

	candidates := make([]models.DealCandidate, 0, len(messages))
	for _, s := range slots {
		if s.ok {
			candidates = append(candidates, s.candidate)
		}
	}
	return candidates
}

// gate validates a candidate and claims its id in the seen-store. The
// check-and-mark is a single atomic store operation so two concurrent
// messages carrying the same id can never both be accepted.
func (e *Engine) gate(ctx context.Context, candidate models.DealCandidate) (models.Deal, bool) {
	if reason, ok := e.validator.Check(candidate); !ok {
		status.RejectionsTotal.WithLabelValues(string(reason)).Inc()
		slog.Debug("Candidate rejected", "id", candidate.ProductID, "reason", reason)
		return models.Deal{}, false
	}

	// Freeze and run the final struct validation before claiming the id, so
	// a candidate that fails here is never marked seen without being emitted.
	deal := models.FromCandidate(candidate)
	if err := e.validator.ValidateDeal(deal); err != nil {
		slog.Warn("Candidate failed final validation", "id", deal.ProductID, "error", err)
		return models.Deal{}, false
	}

	err := e.store.MarkIfUnseen(ctx, candidate.ProductID)
	if errors.Is(err, dedup.ErrAlreadySeen) {
		status.DuplicatesTotal.Inc()
		slog.Debug("Duplicate id dropped", "id", candidate.ProductID)
		return models.Deal{}, false
	}
	if err != nil {
		slog.Warn("Seen-store write failed, dropping candidate", "id", candidate.ProductID, "error", err)
		return models.Deal{}, false
	}
	return deal, true
}

// Stats snapshots the data served by /stats.
func (e *Engine) Stats(ctx context.Context) Stats {
	e.statsMu.Lock()
	last, degraded := e.lastCycleTime, e.lastDegraded
	e.statsMu.Unlock()

	count, err := e.store.Count(ctx)
	if err != nil {
		slog.Warn("Seen-store count failed", "error", err)
	}
	return Stats{
		LastCycleTime: last,
		LastDegraded:  degraded,
		SeenIDs:       count,
		Country:       e.cfg.Country,
	}
}

package orchestrator

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/omnisearch/backend/internal/adapters"
	"github.com/omnisearch/backend/internal/models"
	"github.com/omnisearch/backend/pkg/logger"
)

// AdapterState is the per-adapter request lifecycle. Terminal states are
// final; there is no transition back to Running.
type AdapterState string

const (
	StatePending AdapterState = "PENDING"
	StateRunning AdapterState = "RUNNING"
	StateSuccess AdapterState = "SUCCESS"
	StateFailure AdapterState = "FAILURE"
	StateTimeout AdapterState = "TIMEOUT"
)

// ProgressEvent reports one adapter's state change. Consumed by the
// streaming handler; nil observers are fine.
type ProgressEvent struct {
	Integration string       `json:"integration"`
	State       AdapterState `json:"state"`
	Elapsed     int64        `json:"elapsedMs,omitempty"`
}

type ProgressFunc func(ProgressEvent)

type Config struct {
	AdapterTimeout time.Duration
	GlobalTimeout  time.Duration
	// MaxConcurrency caps in-flight adapter calls across all requests.
	// Zero means unlimited.
	MaxConcurrency int
}

// Orchestrator fans a processed query out to every available adapter and
// joins on their settlement. Each call gets its own deadline; a slow
// adapter never delays the others, and results arriving after the global
// deadline are discarded.
type Orchestrator struct {
	cfg       Config
	semaphore chan struct{}
}

func New(cfg Config) *Orchestrator {
	if cfg.AdapterTimeout <= 0 {
		cfg.AdapterTimeout = 10 * time.Second
	}
	if cfg.GlobalTimeout <= 0 {
		cfg.GlobalTimeout = 25 * time.Second
	}

	o := &Orchestrator{cfg: cfg}
	if cfg.MaxConcurrency > 0 {
		o.semaphore = make(chan struct{}, cfg.MaxConcurrency)
	}
	return o
}

// Execute settles every adapter into exactly one of success, failure, or
// timeout. Adapters are never retried here; retry is adapter-internal.
func (o *Orchestrator) Execute(ctx context.Context, query models.ProcessedQuery, available []adapters.Adapter, creds map[string]models.Credential, progress ProgressFunc) []models.AdapterOutcome {
	if len(available) == 0 {
		return nil
	}

	emit := func(ev ProgressEvent) {
		if progress != nil {
			progress(ev)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, o.cfg.GlobalTimeout)
	defer cancel()

	type settled struct {
		index   int
		outcome models.AdapterOutcome
	}

	ch := make(chan settled, len(available))

	for i, adapter := range available {
		emit(ProgressEvent{Integration: adapter.IntegrationType(), State: StatePending})

		go func(i int, adapter adapters.Adapter) {
			if o.semaphore != nil {
				select {
				case o.semaphore <- struct{}{}:
					defer func() { <-o.semaphore }()
				case <-ctx.Done():
					ch <- settled{i, models.AdapterOutcome{
						Provider: adapter.IntegrationType(),
						Status:   models.OutcomeTimeout,
						Err:      ctx.Err(),
					}}
					return
				}
			}

			emit(ProgressEvent{Integration: adapter.IntegrationType(), State: StateRunning})
			start := time.Now()

			callCtx, callCancel := context.WithTimeout(ctx, o.cfg.AdapterTimeout)
			defer callCancel()

			payload, err := adapter.Search(callCtx, query, creds[adapter.Provider()])
			elapsed := time.Since(start)

			outcome := models.AdapterOutcome{
				Provider: adapter.IntegrationType(),
				Elapsed:  elapsed,
			}
			switch {
			case err == nil:
				outcome.Status = models.OutcomeSuccess
				outcome.Payload = payload
			case callCtx.Err() == context.DeadlineExceeded:
				outcome.Status = models.OutcomeTimeout
				outcome.Err = err
			default:
				outcome.Status = models.OutcomeFailure
				outcome.Err = err
			}

			ch <- settled{i, outcome}
		}(i, adapter)
	}

	// Join. Outcomes land at their launch index so completion order has
	// no bearing on downstream order.
	outcomes := make([]models.AdapterOutcome, len(available))
	pending := make(map[int]bool, len(available))
	for i := range available {
		pending[i] = true
	}

	for len(pending) > 0 {
		select {
		case s := <-ch:
			outcomes[s.index] = s.outcome
			delete(pending, s.index)
			emit(ProgressEvent{
				Integration: s.outcome.Provider,
				State:       stateFor(s.outcome.Status),
				Elapsed:     s.outcome.Elapsed.Milliseconds(),
			})
		case <-ctx.Done():
			// Global deadline: everything still running is a timeout and
			// its eventual completion is discarded.
			for i := range pending {
				outcomes[i] = models.AdapterOutcome{
					Provider: available[i].IntegrationType(),
					Status:   models.OutcomeTimeout,
					Err:      ctx.Err(),
				}
				emit(ProgressEvent{Integration: available[i].IntegrationType(), State: StateTimeout})
			}
			pending = nil
		}
	}

	logOutcomes(outcomes)
	return outcomes
}

func stateFor(status models.OutcomeStatus) AdapterState {
	switch status {
	case models.OutcomeSuccess:
		return StateSuccess
	case models.OutcomeTimeout:
		return StateTimeout
	default:
		return StateFailure
	}
}

func logOutcomes(outcomes []models.AdapterOutcome) {
	var successes, failures, timeouts int
	for _, o := range outcomes {
		switch o.Status {
		case models.OutcomeSuccess:
			successes++
		case models.OutcomeFailure:
			failures++
			logger.Warn("Adapter call failed",
				zap.String("integration", o.Provider),
				zap.Error(o.Err),
			)
		case models.OutcomeTimeout:
			timeouts++
			logger.Warn("Adapter call timed out", zap.String("integration", o.Provider))
		}
	}

	logger.Info("Fan-out settled",
		zap.Int("success", successes),
		zap.Int("failure", failures),
		zap.Int("timeout", timeouts),
	)
}

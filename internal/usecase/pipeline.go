package usecase

import (
	"context"
	"time"

	"SignalPipe/internal/domain/models"
	drepo "SignalPipe/internal/domain/repository"
	"SignalPipe/internal/hub"
	applogger "SignalPipe/pkg/logger"
)

// Pipeline ties validation to distribution. Accepted signals go to the hub
// synchronously; the broker and history sink are best-effort and never fail
// the submission.
type Pipeline struct {
	validator *Validator
	hub       *hub.Hub
	pub       drepo.Publisher
	store     drepo.Storage
	metrics   drepo.Metrics
	log       *applogger.Logger
}

// NewPipeline creates a new Pipeline instance. pub and store may be nil when
// the corresponding backend is disabled.
func NewPipeline(
	validator *Validator,
	h *hub.Hub,
	pub drepo.Publisher,
	store drepo.Storage,
	metrics drepo.Metrics,
	log *applogger.Logger,
) *Pipeline {
	return &Pipeline{
		validator: validator,
		hub:       h,
		pub:       pub,
		store:     store,
		metrics:   metrics,
		log:       log,
	}
}

// Submit validates one candidate and distributes it when accepted. The
// verdict is returned either way.
func (p *Pipeline) Submit(ctx context.Context, c *models.SignalCandidate) (*models.ValidatedSignal, error) {
	sig, err := p.validator.Validate(ctx, c)
	if err != nil {
		return nil, err
	}
	if sig.IsValid {
		p.distribute(ctx, sig)
	}
	return sig, nil
}

// SubmitBatch validates candidates in order and distributes the accepted
// ones. Results are returned for every candidate, accepted or not.
func (p *Pipeline) SubmitBatch(ctx context.Context, candidates []*models.SignalCandidate) ([]*models.ValidatedSignal, error) {
	signals, err := p.validator.ValidateMany(ctx, candidates)
	if err != nil {
		return signals, err
	}
	for _, sig := range signals {
		if sig.IsValid {
			p.distribute(ctx, sig)
		}
	}
	return signals, nil
}

func (p *Pipeline) distribute(ctx context.Context, sig *models.ValidatedSignal) {
	start := time.Now()
	p.hub.Publish(sig)

	if p.pub != nil {
		if err := p.pub.Publish(ctx, sig); err != nil {
			p.metrics.RecordError("broker_publish")
			if p.log != nil {
				p.log.Warn("broker publish failed",
					applogger.String("symbol", sig.Candidate.Symbol),
					applogger.Error(err),
				)
			}
		}
	}
	if p.store != nil {
		if err := p.store.Store(ctx, sig); err != nil {
			p.metrics.RecordError("history_store")
			if p.log != nil {
				p.log.Warn("history store failed",
					applogger.String("symbol", sig.Candidate.Symbol),
					applogger.Error(err),
				)
			}
		}
	}
	p.metrics.RecordLatency("distribute", time.Since(start).Seconds())
}

// Close releases broker and storage resources.
func (p *Pipeline) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.store != nil {
		_ = p.store.Close()
	}
}

package usecase

import (
	"context"
	"encoding/json"

	"SignalPipe/internal/domain/models"
	drepo "SignalPipe/internal/domain/repository"
	pkgkafka "SignalPipe/pkg/kafka"
)

// KafkaIntakeHandler consumes signal candidates from the intake topic and
// runs them through the pipeline.
type KafkaIntakeHandler struct {
	topic    string
	pipeline *Pipeline
	metrics  drepo.Metrics
}

func NewKafkaIntakeHandler(topic string, pipeline *Pipeline, metrics drepo.Metrics) *KafkaIntakeHandler {
	return &KafkaIntakeHandler{topic: topic, pipeline: pipeline, metrics: metrics}
}

func (h *KafkaIntakeHandler) Topic() string { return h.topic }

// Handle decodes one candidate and submits it. A malformed or rejected
// candidate is not an error from the consumer's point of view; only pipeline
// failures propagate so the message gets redelivered.
func (h *KafkaIntakeHandler) Handle(ctx context.Context, b []byte) error {
	var req models.ValidateRequest
	if err := json.Unmarshal(b, &req); err != nil {
		h.metrics.RecordError("intake_unmarshal")
		return nil
	}
	if req.Timeframe == "" {
		req.Timeframe = string(models.TF1h)
	}

	c := req.Candidate()
	if c.Symbol == "" || !c.Direction.IsValid() || !c.Timeframe.IsValid() || c.Price <= 0 {
		h.metrics.RecordError("intake_invalid")
		return nil
	}

	_, err := h.pipeline.Submit(ctx, &c)
	return err
}

var _ pkgkafka.MessageHandler = (*KafkaIntakeHandler)(nil)

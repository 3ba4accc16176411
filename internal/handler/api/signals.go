package api

import (
	models "SignalPipe/internal/domain/models"
	domrepo "SignalPipe/internal/domain/repository"
	"SignalPipe/internal/hub"
	"SignalPipe/internal/service/ratelimit"
	"SignalPipe/internal/usecase"
	xhttp "SignalPipe/pkg/http"
	xlogger "SignalPipe/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RateLimitConfig bounds candidate submissions per client IP.
type RateLimitConfig struct {
	Enabled   bool
	PerSecond float64
	Burst     float64
}

// SignalsHandler exposes candidate validation and signal retrieval.
type SignalsHandler struct {
	logger   *xlogger.Logger
	pipeline *usecase.Pipeline
	hub      *hub.Hub
	market   domrepo.MarketData
	limiter  *ratelimit.Limiter
	rl       RateLimitConfig
}

func NewSignalsHandler(
	logger *xlogger.Logger,
	pipeline *usecase.Pipeline,
	h *hub.Hub,
	market domrepo.MarketData,
	limiter *ratelimit.Limiter,
	rl RateLimitConfig,
) *SignalsHandler {
	return &SignalsHandler{
		logger:   logger,
		pipeline: pipeline,
		hub:      h,
		market:   market,
		limiter:  limiter,
		rl:       rl,
	}
}

func (h *SignalsHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/signals/validate", h.Validate)
	e.POST("/signals/validate/batch", h.ValidateBatch)
	e.GET("/signals/poll", h.Poll)
	e.GET("/health", h.Health)
}

// Validate runs one candidate through the pipeline. A rejected candidate is
// still a successful request; the verdict is in the payload.
func (h *SignalsHandler) Validate(c echo.Context) error {
	if err := h.allow(c); err != nil {
		return xhttp.AppErrorResponse(c, err)
	}

	req := &models.ValidateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	candidate := req.Candidate()
	sig, err := h.pipeline.Submit(c.Request().Context(), &candidate)
	if err != nil {
		h.logger.Error("validate usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, sig)
}

// ValidateBatch validates up to 100 candidates in submission order.
func (h *SignalsHandler) ValidateBatch(c echo.Context) error {
	if err := h.allow(c); err != nil {
		return xhttp.AppErrorResponse(c, err)
	}

	req := &models.BatchValidateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	candidates := make([]*models.SignalCandidate, 0, len(req.Candidates))
	for i := range req.Candidates {
		candidate := req.Candidates[i].Candidate()
		candidates = append(candidates, &candidate)
	}

	signals, err := h.pipeline.SubmitBatch(c.Request().Context(), candidates)
	if err != nil {
		h.logger.Error("batch validate usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, signals)
}

// Poll returns signals published after the client's cursor.
func (h *SignalsHandler) Poll(c echo.Context) error {
	req := &models.PollRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res := h.hub.Poll(req.SubscriberID, req.Cursor, req.Limit)
	return xhttp.SuccessResponse(c, res)
}

// Health reports liveness plus a few capacity numbers.
func (h *SignalsHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, &models.HealthResponse{
		Status:            "ok",
		CacheSize:         h.market.CacheSize(),
		ActiveSubscribers: h.hub.Registry().Count(),
		RingBufferDepth:   h.hub.Depth(),
		ProviderFailures:  h.market.ProviderFailures(),
	})
}

func (h *SignalsHandler) allow(c echo.Context) error {
	if !h.rl.Enabled || h.limiter == nil {
		return nil
	}
	if h.limiter.Allow(c.RealIP(), h.rl.Burst, h.rl.PerSecond) {
		return nil
	}
	return xhttp.TooManyRequestsError("submission rate limit exceeded")
}

package api

import (
	models "SignalPipe/internal/domain/models"
	"SignalPipe/internal/rules"
	xhttp "SignalPipe/pkg/http"
	xlogger "SignalPipe/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RulesHandler exposes runtime administration of the validation rule set.
type RulesHandler struct {
	logger   *xlogger.Logger
	registry *rules.Registry
}

func NewRulesHandler(logger *xlogger.Logger, registry *rules.Registry) *RulesHandler {
	return &RulesHandler{logger: logger, registry: registry}
}

func (h *RulesHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/rules")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

func (h *RulesHandler) List(c echo.Context) error {
	snapshot := h.registry.Snapshot()
	out := make([]*models.RuleResponse, 0, len(snapshot))
	for _, r := range snapshot {
		out = append(out, toRuleResponse(r))
	}
	return xhttp.SuccessResponse(c, out)
}

func (h *RulesHandler) Get(c echo.Context) error {
	rule, ok := h.registry.Get(c.Param("id"))
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("rule %q not found", c.Param("id")))
	}
	return xhttp.SuccessResponse(c, toRuleResponse(rule))
}

func (h *RulesHandler) Create(c echo.Context) error {
	req := &models.CreateRuleRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	rule := rules.Rule{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		Kind:        rules.Kind(req.Kind),
		Weight:      req.Weight,
		IsActive:    active,
	}
	if err := h.registry.Add(rule); err != nil {
		return xhttp.AppErrorResponse(c, xhttp.ConflictError(err.Error()))
	}

	h.logger.Info("rule added",
		xlogger.String("rule", rule.ID),
		xlogger.Float64("weight", rule.Weight),
	)
	return xhttp.CreatedResponse(c, toRuleResponse(rule))
}

func (h *RulesHandler) Update(c echo.Context) error {
	req := &models.UpdateRuleRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rule, err := h.registry.Update(c.Param("id"), req.Weight, req.IsActive)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError(err.Error()))
	}

	h.logger.Info("rule updated",
		xlogger.String("rule", rule.ID),
		xlogger.Float64("weight", rule.Weight),
		xlogger.Bool("active", rule.IsActive),
	)
	return xhttp.SuccessResponse(c, toRuleResponse(rule))
}

func (h *RulesHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	if err := h.registry.Remove(id); err != nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError(err.Error()))
	}

	h.logger.Info("rule removed", xlogger.String("rule", id))
	return xhttp.NoContentResponse(c)
}

func toRuleResponse(r rules.Rule) *models.RuleResponse {
	return &models.RuleResponse{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Kind:        string(r.Kind),
		Weight:      r.Weight,
		IsActive:    r.IsActive,
	}
}

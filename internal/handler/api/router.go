package api

import (
	"github.com/labstack/echo/v4"
)

// Router registers every API handler on one Echo instance.
type Router struct {
	signals *SignalsHandler
	rules   *RulesHandler
	stream  *StreamHandler
}

func NewRouter(signals *SignalsHandler, rules *RulesHandler, stream *StreamHandler) *Router {
	return &Router{signals: signals, rules: rules, stream: stream}
}

func (r *Router) RegisterRoutes(e *echo.Echo) {
	r.signals.RegisterRoutes(e)
	r.rules.RegisterRoutes(e)
	r.stream.RegisterRoutes(e)
}

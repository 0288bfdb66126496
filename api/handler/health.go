package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/progresssync/backend/internal/infrastructure/monitor"
	"github.com/progresssync/backend/pkg/httpcontext"
)

type HealthHandler struct {
	baseHandler
	monitor *monitor.Monitor
}

func NewHealthHandler(mon *monitor.Monitor, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
	}
}

// @Summary Service health and backing-store status
// @Router /health [get]
func (h *HealthHandler) Health(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()
	code := http.StatusOK
	if !status.PostgreSQL {
		code = http.StatusServiceUnavailable
	}
	h.respondSuccess(ctx, code, status)
}

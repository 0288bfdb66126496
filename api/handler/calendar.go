package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/progresssync/backend/api/transport"
	"github.com/progresssync/backend/domain"
	"github.com/progresssync/backend/pkg/httpcontext"
	calendarUC "github.com/progresssync/backend/usecase/calendar"
)

type CalendarHandler struct {
	baseHandler
	uc *calendarUC.UseCase
}

func NewCalendarHandler(uc *calendarUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *CalendarHandler {
	return &CalendarHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Start the Google Calendar consent flow
// @Tags calendar
// @Router /api/v1/calendar/auth [get]
func (h *CalendarHandler) Auth(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	ctx.Redirect(h.uc.AuthURL(userID), http.StatusTemporaryRedirect)
}

// @Summary OAuth2 redirect target
// @Tags calendar
// @Router /api/v1/calendar/callback [get]
func (h *CalendarHandler) Callback(ctx *fasthttp.RequestCtx) {
	state := string(ctx.QueryArgs().Peek("state"))
	code := string(ctx.QueryArgs().Peek("code"))

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Exchange(stdCtx, state, code); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]string{"message": "calendar connected"})
}

// @Summary Create an event on the connected calendar
// @Tags calendar
// @Router /api/v1/calendar/events [post]
func (h *CalendarHandler) CreateEvent(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.CalendarEventRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	event := calendarUC.Event{
		Title:       req.Title,
		Description: req.Description,
		TimeZone:    req.TimeZone,
	}
	if start := parseTime(req.Start); start != nil {
		event.Start = *start
	}
	if end := parseTime(req.End); end != nil {
		event.End = *end
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.CreateEvent(stdCtx, userID, event)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

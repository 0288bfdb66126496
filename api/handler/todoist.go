package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/progresssync/backend/api/transport"
	"github.com/progresssync/backend/domain"
	"github.com/progresssync/backend/pkg/httpcontext"
	syncUC "github.com/progresssync/backend/usecase/sync"
)

type TodoistHandler struct {
	baseHandler
	uc *syncUC.UseCase
}

func NewTodoistHandler(uc *syncUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TodoistHandler {
	return &TodoistHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Refresh the local mirror from Todoist
// @Tags todoist
// @Router /api/v1/todoist/sync [get]
func (h *TodoistHandler) Sync(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.Sync(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.SyncResponse{
		Success:   true,
		Message:   "sync complete",
		TaskCount: len(tasks),
		Tasks:     tasks,
	})
}

// @Summary List mirrored Todoist tasks
// @Tags todoist
// @Router /api/v1/todoist/tasks [get]
func (h *TodoistHandler) GetTasks(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.ListMirror(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if tasks == nil {
		tasks = []domain.SyncedTask{}
	}
	h.respondSuccess(ctx, http.StatusOK, tasks)
}

// @Summary Create a task on Todoist
// @Tags todoist
// @Router /api/v1/todoist/tasks [post]
func (h *TodoistHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.TodoistCreateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.CreateRemote(stdCtx, userID, req.Content)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Complete a Todoist task
// @Tags todoist
// @Router /api/v1/todoist/tasks/{id}/close [post]
func (h *TodoistHandler) CloseTask(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing task id", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.CloseRemote(stdCtx, userID, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, nil)
}

// @Summary Delete a Todoist task
// @Tags todoist
// @Router /api/v1/todoist/tasks/{id} [delete]
func (h *TodoistHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing task id", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteRemote(stdCtx, userID, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	ctx.SetStatusCode(http.StatusNoContent)
}

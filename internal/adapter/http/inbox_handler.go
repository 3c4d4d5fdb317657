package http

import (
	"context"
	"net/http"
	"strconv"

	"credapp/internal/domain/creditrequest"
	"credapp/internal/domain/history"
	"credapp/internal/usecase/inbox"

	"github.com/labstack/echo/v4"
)

type InboxHandler struct{ uc *inbox.Usecase }

func NewInboxHandler(uc *inbox.Usecase) *InboxHandler { return &InboxHandler{uc: uc} }

type pollResp struct {
	Request creditrequest.Request `json:"solicitacao"`
	Added   bool                  `json:"nova"`
}

type decideFunc func(ctx context.Context, session string, clientID int64) (history.Entry, error)

func (h *InboxHandler) Pending(c echo.Context) error {
	return c.JSON(http.StatusOK, h.uc.Pending())
}

// Poll draws one request immediately instead of waiting for the next tick.
func (h *InboxHandler) Poll(c echo.Context) error {
	r, added, err := h.uc.Poll(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	code := http.StatusOK
	if added {
		code = http.StatusCreated
	}
	return c.JSON(code, pollResp{Request: r, Added: added})
}

func (h *InboxHandler) Accept(c echo.Context) error {
	return h.decide(c, h.uc.Accept)
}

func (h *InboxHandler) Reject(c echo.Context) error {
	return h.decide(c, h.uc.Reject)
}

func (h *InboxHandler) decide(c echo.Context, fn decideFunc) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id path param"})
	}
	session, err := requireSession(c)
	if err != nil {
		return respondError(c, err)
	}
	e, err := fn(c.Request().Context(), session, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, e)
}

func (h *InboxHandler) Notifications(c echo.Context) error {
	return c.JSON(http.StatusOK, h.uc.Notifications())
}

func (h *InboxHandler) DismissNotification(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id path param"})
	}
	return c.JSON(http.StatusOK, h.uc.DismissNotification(id))
}

func (h *InboxHandler) ClearNotifications(c echo.Context) error {
	return c.JSON(http.StatusOK, h.uc.ClearNotifications())
}

func pathID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

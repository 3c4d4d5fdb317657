package http

import (
	"net/http"

	ucHistory "credapp/internal/usecase/history"

	"github.com/labstack/echo/v4"
)

type HistoryHandler struct{ uc *ucHistory.Usecase }

func NewHistoryHandler(uc *ucHistory.Usecase) *HistoryHandler { return &HistoryHandler{uc: uc} }

type sessionResp struct {
	SessionID string `json:"session_id"`
}

// NewSession hands out a fresh Cr-Session-Id for a browser tab.
func (h *HistoryHandler) NewSession(c echo.Context) error {
	return c.JSON(http.StatusCreated, sessionResp{SessionID: h.uc.NewSession()})
}

// List filters by the nome query parameter when present.
func (h *HistoryHandler) List(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return respondError(c, err)
	}
	entries, err := h.uc.List(c.Request().Context(), session, c.QueryParam("nome"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *HistoryHandler) Clear(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.uc.Clear(c.Request().Context(), session); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *HistoryHandler) Summary(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return respondError(c, err)
	}
	s, err := h.uc.Summary(c.Request().Context(), session)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

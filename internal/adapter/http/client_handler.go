package http

import (
	"net/http"

	ucClient "credapp/internal/usecase/client"

	"github.com/labstack/echo/v4"
)

type ClientHandler struct{ uc *ucClient.Usecase }

func NewClientHandler(uc *ucClient.Usecase) *ClientHandler { return &ClientHandler{uc: uc} }

func (h *ClientHandler) List(c echo.Context) error {
	var in ucClient.ListInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid query"})
	}
	page, err := h.uc.List(c.Request().Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *ClientHandler) Get(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id path param"})
	}
	cl, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, cl)
}

// Random prefills the simulator with a registered client.
func (h *ClientHandler) Random(c echo.Context) error {
	dto, err := h.uc.Random(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ClientHandler) Defaulters(c echo.Context) error {
	list, err := h.uc.Defaulters(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *ClientHandler) InstitutionStats(c echo.Context) error {
	stats, err := h.uc.InstitutionStats(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

package http

import (
	"net/http"

	"credapp/internal/usecase/dataset"

	"github.com/labstack/echo/v4"
)

type DatasetHandler struct{ svc *dataset.Service }

func NewDatasetHandler(svc *dataset.Service) *DatasetHandler { return &DatasetHandler{svc: svc} }

// Import loads a CSV or XLSX client dataset from a local path, an http(s)
// URL or s3://bucket/key into the registry.
func (h *DatasetHandler) Import(c echo.Context) error {
	var req dataset.Request
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}
	res, err := h.svc.Import(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

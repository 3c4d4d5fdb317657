package http

import (
	"net/http"

	"credapp/internal/domain/credit"
	"credapp/internal/usecase/simulation"

	"github.com/labstack/echo/v4"
)

type SimulationHandler struct{ uc *simulation.Usecase }

func NewSimulationHandler(uc *simulation.Usecase) *SimulationHandler {
	return &SimulationHandler{uc: uc}
}

type policiesResp struct {
	Default  string          `json:"padrao"`
	Policies []credit.Policy `json:"politicas"`
}

func (h *SimulationHandler) Policies(c echo.Context) error {
	return c.JSON(http.StatusOK, policiesResp{Default: h.uc.DefaultPolicy(), Policies: h.uc.Policies()})
}

// Simulate always answers 200 for a readable form: applicant rejections are
// part of the result, not errors.
func (h *SimulationHandler) Simulate(c echo.Context) error {
	var in simulation.Input
	if err := c.Bind(&in); err != nil {
		return invalidBody(c)
	}
	if err := c.Validate(&in); err != nil {
		return respondError(c, err)
	}
	res, err := h.uc.Simulate(c.Request().Context(), optionalSession(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

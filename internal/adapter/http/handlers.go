package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type Handler struct{}

func NewHandler() *Handler { return &Handler{} }

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// Handlers groups everything Register mounts.
type Handlers struct {
	Health     *Handler
	Clients    *ClientHandler
	Simulation *SimulationHandler
	Inbox      *InboxHandler
	History    *HistoryHandler
	Dataset    *DatasetHandler
	Metrics    http.Handler
}

// Register mounts the API on e. idemp guards the mutating routes; nil leaves
// them unguarded.
func Register(e *echo.Echo, h Handlers, idemp echo.MiddlewareFunc) {
	var mw []echo.MiddlewareFunc
	if idemp != nil {
		mw = append(mw, idemp)
	}

	e.GET("/health", h.Health.Health)
	if h.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(h.Metrics))
	}

	e.GET("/clientes", h.Clients.List)
	e.GET("/clientes/random", h.Clients.Random)
	e.GET("/clientes/:id", h.Clients.Get)
	e.GET("/clientes-inadimplentes", h.Clients.Defaulters)
	e.GET("/dados-instituicao", h.Clients.InstitutionStats)

	e.GET("/politicas", h.Simulation.Policies)
	e.POST("/simulacoes", h.Simulation.Simulate, mw...)

	e.GET("/solicitacoes", h.Inbox.Pending)
	e.POST("/solicitacoes/poll", h.Inbox.Poll, mw...)
	e.POST("/solicitacoes/:id/aceitar", h.Inbox.Accept, mw...)
	e.POST("/solicitacoes/:id/recusar", h.Inbox.Reject, mw...)
	e.GET("/notificacoes", h.Inbox.Notifications)
	e.DELETE("/notificacoes", h.Inbox.ClearNotifications)
	e.DELETE("/notificacoes/:id", h.Inbox.DismissNotification)

	e.POST("/sessoes", h.History.NewSession)
	e.GET("/historico", h.History.List)
	e.DELETE("/historico", h.History.Clear)
	e.GET("/historico/resumo", h.History.Summary)

	e.POST("/dataset/import", h.Dataset.Import, mw...)
}

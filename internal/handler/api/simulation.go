package api

import (
	"strings"

	"WalkSim/internal/domain/models"
	xhttp "WalkSim/pkg/http"
	xlogger "WalkSim/pkg/logger"

	"github.com/labstack/echo/v4"
)

// SimulationHandler serves walk-forward simulations and price history.
type SimulationHandler struct {
	logger *xlogger.Logger
	sim    Simulator
}

func NewSimulationHandler(logger *xlogger.Logger, sim Simulator) *SimulationHandler {
	return &SimulationHandler{logger: logger, sim: sim}
}

func (h *SimulationHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/portfolio/simulate", h.Simulate)
	g.POST("/portfolio/simulate/batch", h.SimulateBatch)
	g.GET("/stock/:symbol", h.Stock)
	g.GET("/symbols", h.Symbols)
}

func (h *SimulationHandler) Simulate(c echo.Context) error {
	req := &models.SimulateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.sim.Simulate(c.Request().Context(), req.Symbol, req.Days, req.InitialBalance)
	if err != nil {
		h.logger.Warn("simulate failed", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

// SimulateBatch runs each symbol independently; the response carries one
// item per requested symbol, in request order.
func (h *SimulationHandler) SimulateBatch(c echo.Context) error {
	req := &models.BatchSimulateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	items := h.sim.RunBatch(c.Request().Context(), req.Symbols, req.Days, req.InitialBalance)
	failed := 0
	for _, it := range items {
		if it.Error != "" {
			failed++
		}
	}
	h.logger.Info("batch simulate",
		xlogger.Strings("symbols", req.Symbols),
		xlogger.Int("failed", failed))
	return xhttp.ListResponse(c, items, int64(len(items)))
}

func (h *SimulationHandler) Stock(c echo.Context) error {
	req := &models.StockRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	symbol := strings.ToUpper(req.Symbol)
	bars, err := h.sim.History(c.Request().Context(), symbol, models.PeriodDays(req.Period))
	if err != nil {
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"symbol": symbol,
		"period": req.Period,
		"bars":   bars,
	})
}

func (h *SimulationHandler) Symbols(c echo.Context) error {
	syms := h.sim.Symbols()
	return xhttp.ListResponse(c, syms, int64(len(syms)))
}

package api

import (
	"errors"
	"net/http"

	"PriceWatch/internal/domain/models"
	"PriceWatch/internal/usecase"
	xhttp "PriceWatch/pkg/http"
	xlogger "PriceWatch/pkg/logger"

	"github.com/labstack/echo/v4"
)

// TickersEchoHandler exposes TickerService over HTTP.
type TickersEchoHandler struct {
	logger *xlogger.Logger
	svc    *usecase.TickerService
}

func NewTickersEchoHandler(logger *xlogger.Logger, svc *usecase.TickerService) *TickersEchoHandler {
	return &TickersEchoHandler{logger: logger, svc: svc}
}

func (h *TickersEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/tickers", h.List)
	g.POST("/tickers", h.Start)
	g.DELETE("/tickers/:symbol", h.Remove)
	g.POST("/tickers/:symbol/stop", h.Stop)
	g.GET("/tickers/:symbol/alerts", h.Alerts)
	g.POST("/tickers/:symbol/alerts", h.AddAlert)
	g.PUT("/tickers/:symbol/alerts", h.SetAlerts)
	g.DELETE("/tickers/:symbol/alerts/:price", h.RemoveAlert)
	g.PUT("/tickers/:symbol/last-price", h.SetLastPrice)
	g.GET("/tickers/:symbol/quote", h.Quote)

	g.GET("/settings", h.Settings)
	g.POST("/settings/save", h.SaveSettings)
	g.PUT("/settings/sound", h.SetSound)
	g.PUT("/settings/order", h.SetOrder)
}

// mutationResponse reports a change that was applied in memory. A failed
// save does not undo it, so it is reported alongside the success.
type mutationResponse struct {
	Saved   bool   `json:"saved"`
	Warning string `json:"warning,omitempty"`
}

func (h *TickersEchoHandler) mutation(c echo.Context, status int, err error) error {
	switch {
	case err == nil:
		return xhttp.DataResponse(c, status, mutationResponse{Saved: true})
	case errors.Is(err, models.ErrSettingsIO):
		return xhttp.DataResponse(c, status, mutationResponse{Saved: false, Warning: err.Error()})
	default:
		return h.fail(c, err)
	}
}

func (h *TickersEchoHandler) fail(c echo.Context, err error) error {
	var appErr *xhttp.AppError
	switch {
	case errors.Is(err, models.ErrTickerNotFound):
		appErr = xhttp.NotFoundError("ticker not found")
	case errors.Is(err, models.ErrDuplicateAlert):
		appErr = xhttp.ConflictError("ERR_DUPLICATE_ALERT", "alert already exists")
	case errors.Is(err, models.ErrAlreadySubscribed):
		appErr = xhttp.ConflictError("ERR_ALREADY_SUBSCRIBED", "ticker already subscribed")
	case errors.Is(err, models.ErrInvalidSymbol):
		appErr = xhttp.BadRequestError("invalid symbol")
	case errors.Is(err, models.ErrRateLimited):
		appErr = xhttp.TooManyRequestsError("too many quote requests, retry shortly")
	default:
		var se *xhttp.StatusError
		if errors.As(err, &se) {
			appErr = xhttp.BadGatewayError("upstream request failed")
		} else {
			h.logger.Error("ticker request failed", xlogger.String("path", c.Path()), xlogger.Error(err))
			appErr = xhttp.InternalError("internal error")
		}
	}
	return xhttp.AppErrorResponse(c, appErr.WithError(err))
}

func (h *TickersEchoHandler) List(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.svc.Tickers())
}

func (h *TickersEchoHandler) Start(c echo.Context) error {
	req := &models.StartTickerRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return h.mutation(c, http.StatusCreated, h.svc.Start(c.Request().Context(), req.Symbol))
}

func (h *TickersEchoHandler) Stop(c echo.Context) error {
	req := &models.SymbolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if err := h.svc.Stop(c.Request().Context(), req.Symbol); err != nil {
		return h.fail(c, err)
	}
	return xhttp.NoContentResponse(c)
}

func (h *TickersEchoHandler) Remove(c echo.Context) error {
	req := &models.SymbolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return h.mutation(c, http.StatusOK, h.svc.Remove(c.Request().Context(), req.Symbol))
}

func (h *TickersEchoHandler) Alerts(c echo.Context) error {
	req := &models.SymbolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, h.svc.Alerts(req.Symbol))
}

func (h *TickersEchoHandler) AddAlert(c echo.Context) error {
	req := &models.AlertRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return h.mutation(c, http.StatusCreated, h.svc.AddAlert(c.Request().Context(), req.Symbol, req.Price))
}

func (h *TickersEchoHandler) SetAlerts(c echo.Context) error {
	req := &models.SetAlertsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return h.mutation(c, http.StatusOK, h.svc.SetAlerts(c.Request().Context(), req.Symbol, req.Alerts))
}

func (h *TickersEchoHandler) RemoveAlert(c echo.Context) error {
	req := &models.AlertRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return h.mutation(c, http.StatusOK, h.svc.RemoveAlert(c.Request().Context(), req.Symbol, req.Price))
}

func (h *TickersEchoHandler) SetLastPrice(c echo.Context) error {
	req := &models.LastPriceRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if err := h.svc.SetLastPrice(c.Request().Context(), req.Symbol, req.Price); err != nil {
		return h.fail(c, err)
	}
	return xhttp.NoContentResponse(c)
}

func (h *TickersEchoHandler) Quote(c echo.Context) error {
	req := &models.SymbolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	q, err := h.svc.Quote(c.Request().Context(), req.Symbol)
	if err != nil {
		return h.fail(c, err)
	}
	return xhttp.SuccessResponse(c, q)
}

func (h *TickersEchoHandler) Settings(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.svc.LoadSettings(c.Request().Context()))
}

func (h *TickersEchoHandler) SaveSettings(c echo.Context) error {
	return h.mutation(c, http.StatusOK, h.svc.SaveSettings(c.Request().Context()))
}

func (h *TickersEchoHandler) SetSound(c echo.Context) error {
	req := &models.SoundRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return h.mutation(c, http.StatusOK, h.svc.SetSelectedSound(c.Request().Context(), req.Sound))
}

func (h *TickersEchoHandler) SetOrder(c echo.Context) error {
	req := &models.OrderRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return h.mutation(c, http.StatusOK, h.svc.UpdateTickerOrder(c.Request().Context(), req.Order))
}

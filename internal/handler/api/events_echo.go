package api

import (
	"PriceWatch/internal/domain/models"
	"PriceWatch/internal/service/notify"
	xhttp "PriceWatch/pkg/http"
	xlogger "PriceWatch/pkg/logger"
	"PriceWatch/pkg/util"

	"github.com/labstack/echo/v4"
)

// EventsEchoHandler streams price and alert events over a websocket.
type EventsEchoHandler struct {
	logger *xlogger.Logger
	hub    *notify.Hub
}

func NewEventsEchoHandler(logger *xlogger.Logger, hub *notify.Hub) *EventsEchoHandler {
	return &EventsEchoHandler{logger: logger, hub: hub}
}

func (h *EventsEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/events", h.Events)
}

func (h *EventsEchoHandler) Events(c echo.Context) error {
	req := &models.EventsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if err := h.hub.ServeWS(c.Response(), c.Request(), util.SplitList(req.Symbols)); err != nil {
		// the upgrader has already written the HTTP error
		h.logger.Warn("event stream upgrade failed", xlogger.Error(err))
	}
	return nil
}

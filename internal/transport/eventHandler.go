package transport

import (
	"bytes"
	"net/http"

	"github.com/mathmusci/optivenue/internal/service"

	"github.com/gin-gonic/gin"
)

type EventHandler struct {
	venueService    service.VenueService
	calendarService service.CalendarService
}

func NewEventHandler(venueService service.VenueService, calendarService service.CalendarService) *EventHandler {
	return &EventHandler{venueService: venueService, calendarService: calendarService}
}

func (h *EventHandler) GetAllEvents(c *gin.Context) {
	events, err := h.venueService.ListEvents(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}

// Calendar serves every booked event as an iCalendar feed.
func (h *EventHandler) Calendar(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.calendarService.WriteCalendar(c.Request.Context(), &buf); err != nil {
		abortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="events.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", buf.Bytes())
}

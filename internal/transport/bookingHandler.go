package transport

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mathmusci/optivenue/internal/service"
)

type BookingHandler struct {
	bookingService service.BookingService
}

func NewBookingHandler(bookingService service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// BookEvent books a venue for one event.
func (h *BookingHandler) BookEvent(c *gin.Context) {
	var req service.BookEventRequest
	if err := bindJSON(c, &req); err != nil {
		abortWithError(c, err)
		return
	}

	event, err := h.bookingService.BookEvent(c.Request.Context(), &req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

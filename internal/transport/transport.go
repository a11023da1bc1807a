package transport

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mathmusci/optivenue/internal/transport/middleware"
)

type Handlers struct {
	Booking *BookingHandler
	Venue   *VenueHandler
	Event   *EventHandler
	Import  *ImportHandler
}

func InitRoutes(h Handlers, requestTimeout time.Duration) *gin.Engine {
	registerJSONNames()

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.Timeout(requestTimeout))

	// API routes
	api := router.Group("/api/v1")
	{
		api.POST("/bookings", h.Booking.BookEvent)

		venues := api.Group("/venues")
		{
			venues.GET("", h.Venue.GetAllVenues)
			venues.GET("/:id", h.Venue.GetVenue)
			venues.POST("/available", h.Venue.FindAvailable)
		}

		api.GET("/locations", h.Venue.GetAllLocations)
		api.GET("/personnel", h.Venue.GetPersonnel)

		events := api.Group("/events")
		{
			events.GET("", h.Event.GetAllEvents)
			events.GET("/calendar.ics", h.Event.Calendar)
		}

		api.POST("/import", h.Import.Import)

		// Admin routes
		admin := api.Group("/admin")
		{
			admin.GET("/overview", h.Venue.Overview)
		}
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	return router
}

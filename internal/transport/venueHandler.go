package transport

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mathmusci/optivenue/internal/entity"
	"github.com/mathmusci/optivenue/internal/service"
)

type VenueHandler struct {
	venueService service.VenueService
}

func NewVenueHandler(venueService service.VenueService) *VenueHandler {
	return &VenueHandler{venueService: venueService}
}

type venueSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (h *VenueHandler) FindAvailable(c *gin.Context) {
	var req service.AvailableVenuesRequest
	if err := bindJSON(c, &req); err != nil {
		abortWithError(c, err)
		return
	}

	venues, err := h.venueService.FindAvailableVenues(c.Request.Context(), &req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	out := make([]venueSummary, 0, len(venues))
	for _, v := range venues {
		out = append(out, venueSummary{ID: v.ID, Name: v.Name})
	}
	c.JSON(http.StatusOK, gin.H{"venues": out})
}

func (h *VenueHandler) GetVenue(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		var ve entity.ValidationError
		ve.Add("id", "invalid venue id")
		abortWithError(c, ve.Err())
		return
	}

	venue, err := h.venueService.GetVenue(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, venue)
}

func (h *VenueHandler) GetAllVenues(c *gin.Context) {
	venues, err := h.venueService.ListVenues(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, venues)
}

func (h *VenueHandler) GetAllLocations(c *gin.Context) {
	locations, err := h.venueService.ListLocations(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, locations)
}

func (h *VenueHandler) GetPersonnel(c *gin.Context) {
	records, err := h.venueService.ListPersonnel(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

// Overview returns everything the admin panel shows.
func (h *VenueHandler) Overview(c *gin.Context) {
	overview, err := h.venueService.Overview(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}

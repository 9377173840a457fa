package api

import (
	"net/http"
	"strconv"

	"github.com/KevinTan25/flightsApp/internal/repository"
	"github.com/KevinTan25/flightsApp/internal/service/catalog"
	"github.com/KevinTan25/flightsApp/internal/service/importer"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service  catalog.CatalogUseCase
	importer importer.ImporterUseCase
}

func NewFlightHandler(service catalog.CatalogUseCase, imp importer.ImporterUseCase) *FlightHandler {
	return &FlightHandler{service: service, importer: imp}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.GET("/:id", h.get)
	router.GET("/number/:number", h.getByNumber)
	router.POST("/", h.create)
	router.PUT("/:id", h.update)
	router.DELETE("/:id", h.remove)
	router.POST("/import", h.importFlights)
}

func (h *FlightHandler) list(c *gin.Context) {
	filter := repository.FlightFilter{Query: c.Query("q")}
	if v := c.Query("departure_airport"); v != "" && v != "all" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid departure_airport"})
			return
		}
		filter.DepartureAirportID = id
	}
	if v := c.Query("arrival_airport"); v != "" && v != "all" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid arrival_airport"})
			return
		}
		filter.ArrivalAirportID = id
	}

	flights, err := h.service.ListFlights(c.Request.Context(), filter)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, flights)
}

func (h *FlightHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	flight, err := h.service.GetFlight(c.Request.Context(), id)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

func (h *FlightHandler) getByNumber(c *gin.Context) {
	flight, err := h.service.GetFlightByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

func (h *FlightHandler) create(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	var input catalog.FlightInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flight, err := h.service.CreateFlight(c.Request.Context(), input)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, flight)
}

func (h *FlightHandler) update(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var input catalog.FlightInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flight, err := h.service.UpdateFlight(c.Request.Context(), id, input)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

func (h *FlightHandler) remove(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.service.DeleteFlight(c.Request.Context(), id); err != nil {
		renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FlightHandler) importFlights(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	var req importer.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := h.importer.ImportFlights(c.Request.Context(), req)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

package api

import (
	"net/http"
	"strconv"

	"github.com/KevinTan25/flightsApp/internal/service/cart"
	"github.com/KevinTan25/flightsApp/internal/service/checkout"
	"github.com/gin-gonic/gin"
)

type CartHandler struct {
	carts    cart.CartUseCase
	checkout checkout.CheckoutUseCase
}

type addRentalRequest struct {
	RentalDays int `json:"rental_days"`
}

func NewCartHandler(carts cart.CartUseCase, co checkout.CheckoutUseCase) *CartHandler {
	return &CartHandler{carts: carts, checkout: co}
}

func (h *CartHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.view)
	router.POST("/", h.create)
	router.POST("/flights/:id", h.addFlight)
	router.POST("/rentals/:id", h.addRental)
	router.DELETE("/", h.remove)
	router.GET("/checkout", h.doCheckout)
}

// view shows the user's cart, creating an empty one on first access.
func (h *CartHandler) view(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	view, err := h.carts.GetOrCreateCart(c.Request.Context(), userID)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// create makes a cart directly and reports a conflict if one exists.
func (h *CartHandler) create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	created, err := h.carts.CreateCart(c.Request.Context(), userID)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *CartHandler) addFlight(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	flightID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	item, err := h.carts.AddFlight(c.Request.Context(), userID, flightID)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *CartHandler) addRental(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	rentalID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	req := addRentalRequest{RentalDays: 1}
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	item, err := h.carts.AddRental(c.Request.Context(), userID, rentalID, req.RentalDays)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *CartHandler) remove(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.carts.RemoveCart(c.Request.Context(), userID); err != nil {
		renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// doCheckout quotes every flight line item. The response always carries one
// result per line item; gateway failures show up as per-item errors, never
// as a failed request.
func (h *CartHandler) doCheckout(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	results, err := h.checkout.Checkout(c.Request.Context(), userID)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

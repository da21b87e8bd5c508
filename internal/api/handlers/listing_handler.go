package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/divesh330/timevault/internal/api/middleware"
	"github.com/divesh330/timevault/internal/services"
)

// ListingHandler handles REST requests for watch listings.
type ListingHandler struct {
	listingService services.IListingService
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(listingService services.IListingService) *ListingHandler {
	return &ListingHandler{listingService: listingService}
}

type createListingRequest struct {
	Title        string  `json:"title" binding:"required"`
	Brand        string  `json:"brand" binding:"required"`
	Condition    string  `json:"condition" binding:"required,condition"`
	SerialNumber string  `json:"serial_number" binding:"required"`
	Description  string  `json:"description"`
	Price        float64 `json:"price" binding:"required,gte=0"`
}

type updateListingRequest struct {
	Title        *string  `json:"title"`
	Brand        *string  `json:"brand"`
	Condition    *string  `json:"condition" binding:"omitempty,condition"`
	SerialNumber *string  `json:"serial_number"`
	Description  *string  `json:"description"`
	Price        *float64 `json:"price" binding:"omitempty,gte=0"`
}

// CreateListing handles POST /v1/listing
func (h *ListingHandler) CreateListing(c *gin.Context) {
	var req createListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: title, brand, condition, serial_number and price are required"})
		return
	}

	listing, err := h.listingService.CreateListing(c.Request.Context(), middleware.CallerID(c), services.CreateListingInput{
		Title:        req.Title,
		Brand:        req.Brand,
		Condition:    req.Condition,
		SerialNumber: req.SerialNumber,
		Description:  req.Description,
		Price:        req.Price,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, listing)
}

// GetListingByID handles GET /v1/listing/:id
func (h *ListingHandler) GetListingByID(c *gin.Context) {
	listing, err := h.listingService.GetListingByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// UpdateListing handles PATCH /v1/listing/:id
func (h *ListingHandler) UpdateListing(c *gin.Context) {
	var req updateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	listing, err := h.listingService.UpdateListing(c.Request.Context(), middleware.CallerID(c), c.Param("id"), services.UpdateListingInput{
		Title:        req.Title,
		Brand:        req.Brand,
		Condition:    req.Condition,
		SerialNumber: req.SerialNumber,
		Description:  req.Description,
		Price:        req.Price,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// RemoveListing handles DELETE /v1/listing/:id
func (h *ListingHandler) RemoveListing(c *gin.Context) {
	err := h.listingService.RemoveListing(c.Request.Context(), middleware.CallerID(c), middleware.CallerRole(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SearchListings handles GET /v1/listing/search
func (h *ListingHandler) SearchListings(c *gin.Context) {
	var filters services.ListingFilters

	if status := c.Query("status"); status != "" {
		filters.Status = &status
	}
	if brand := c.Query("brand"); brand != "" {
		filters.Brand = &brand
	}
	if condition := c.Query("condition"); condition != "" {
		filters.Condition = &condition
	}
	if minStr := c.Query("min_price"); minStr != "" {
		minPrice, err := strconv.ParseFloat(minStr, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid min_price"})
			return
		}
		filters.MinPrice = &minPrice
	}
	if maxStr := c.Query("max_price"); maxStr != "" {
		maxPrice, err := strconv.ParseFloat(maxStr, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid max_price"})
			return
		}
		filters.MaxPrice = &maxPrice
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		filters.Limit = limit
	}

	listings, err := h.listingService.ListListings(c.Request.Context(), filters)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": listings})
}

// GetSupportedBrands handles GET /v1/listing/brands
func (h *ListingHandler) GetSupportedBrands(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"brands": services.SupportedBrands()})
}

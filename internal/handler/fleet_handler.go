package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/loca-mat/service-rental/internal/application"
	"github.com/loca-mat/service-rental/internal/domain/rental"
	"github.com/loca-mat/service-rental/internal/platform/auth"
	"github.com/loca-mat/service-rental/internal/platform/middleware"
	"github.com/loca-mat/service-rental/internal/platform/response"
)

// FleetHandler handles HTTP requests for fleet item management.
type FleetHandler struct {
	service *application.FleetService
}

// NewFleetHandler creates a new FleetHandler.
func NewFleetHandler(service *application.FleetService) *FleetHandler {
	return &FleetHandler{service: service}
}

// RegisterRoutes registers all fleet routes on the given router group.
func (h *FleetHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	items := r.Group("/api/v1/items")
	items.Use(authMW)
	{
		items.POST("", middleware.RequireRole(auth.RoleManager), h.CreateItem)
		items.GET("", h.ListItems)
		items.GET("/:id", h.GetItem)
		items.PATCH("/:id/status", middleware.RequireRole(auth.RoleManager), h.ChangeItemStatus)
		items.DELETE("/:id", middleware.RequireRole(auth.RoleAdmin), h.DeleteItem)
	}
}

// CreateItemRequest is the request body for POST /api/v1/items.
type CreateItemRequest struct {
	Category        string `json:"category" binding:"required"`
	Brand           string `json:"brand" binding:"required"`
	Model           string `json:"model" binding:"required"`
	SerialNumber    string `json:"serial_number" binding:"required"`
	PurchaseDate    string `json:"purchase_date" binding:"required"`
	DailyPriceCents int64  `json:"daily_price_cents" binding:"required"`
}

// CreateItem handles POST /api/v1/items.
func (h *FleetHandler) CreateItem(c *gin.Context) {
	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	purchaseDate, err := parseDate(req.PurchaseDate)
	if err != nil {
		response.BadRequest(c, "invalid purchase_date, expected YYYY-MM-DD")
		return
	}

	result, err := h.service.CreateItem(c.Request.Context(), application.CreateItemInput{
		Category:        req.Category,
		Brand:           req.Brand,
		Model:           req.Model,
		SerialNumber:    req.SerialNumber,
		PurchaseDate:    purchaseDate,
		DailyPriceCents: req.DailyPriceCents,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListItems handles GET /api/v1/items. An optional status query parameter
// filters the fleet.
func (h *FleetHandler) ListItems(c *gin.Context) {
	var status *rental.ItemStatus
	if s := c.Query("status"); s != "" {
		parsed, err := rental.ParseItemStatus(s)
		if err != nil {
			response.BadRequest(c, "invalid status filter")
			return
		}
		status = &parsed
	}

	result, err := h.service.ListItems(c.Request.Context(), status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetItem handles GET /api/v1/items/:id.
func (h *FleetHandler) GetItem(c *gin.Context) {
	itemID, err := parseID(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid item ID")
		return
	}

	result, err := h.service.GetItem(c.Request.Context(), itemID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ChangeItemStatusRequest is the request body for PATCH /api/v1/items/:id/status.
type ChangeItemStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ChangeItemStatus handles PATCH /api/v1/items/:id/status.
func (h *FleetHandler) ChangeItemStatus(c *gin.Context) {
	itemID, err := parseID(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid item ID")
		return
	}

	var req ChangeItemStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	target, err := rental.ParseItemStatus(req.Status)
	if err != nil {
		response.BadRequest(c, "invalid status")
		return
	}

	result, err := h.service.ChangeItemStatus(c.Request.Context(), itemID, target)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeleteItem handles DELETE /api/v1/items/:id.
func (h *FleetHandler) DeleteItem(c *gin.Context) {
	itemID, err := parseID(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid item ID")
		return
	}

	if err := h.service.DeleteItem(c.Request.Context(), itemID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/loca-mat/service-rental/internal/application"
	"github.com/loca-mat/service-rental/internal/platform/auth"
	"github.com/loca-mat/service-rental/internal/platform/middleware"
	"github.com/loca-mat/service-rental/internal/platform/response"
)

const dateLayout = "2006-01-02"

// ContractHandler handles HTTP requests for booking and contract operations.
type ContractHandler struct {
	service *application.BookingService
}

// NewContractHandler creates a new ContractHandler.
func NewContractHandler(service *application.BookingService) *ContractHandler {
	return &ContractHandler{service: service}
}

// RegisterRoutes registers all contract routes on the given router group.
func (h *ContractHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	contracts := r.Group("/api/v1/contracts")
	contracts.Use(authMW)
	{
		contracts.POST("", middleware.RequireRole(auth.RoleManager), h.BookCart)
		contracts.GET("", h.ListContracts)
		contracts.GET("/active", h.ListActiveContracts)
		contracts.GET("/:id", h.GetContract)
		contracts.POST("/:id/returns", middleware.RequireRole(auth.RoleManager), h.ReturnItem)
		contracts.POST("/:id/cancel", middleware.RequireRole(auth.RoleManager), h.CancelContract)
	}
}

// BookCartRequest is the request body for POST /api/v1/contracts.
type BookCartRequest struct {
	ClientID  uint64   `json:"client_id" binding:"required"`
	ItemIDs   []uint64 `json:"item_ids" binding:"required"`
	StartDate string   `json:"start_date" binding:"required"`
	EndDate   string   `json:"end_date" binding:"required"`
}

// BookCart handles POST /api/v1/contracts.
func (h *ContractHandler) BookCart(c *gin.Context) {
	var req BookCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		response.BadRequest(c, "invalid start_date, expected YYYY-MM-DD")
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		response.BadRequest(c, "invalid end_date, expected YYYY-MM-DD")
		return
	}

	result, err := h.service.BookCart(c.Request.Context(), req.ClientID, req.ItemIDs, start, end)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListContracts handles GET /api/v1/contracts.
func (h *ContractHandler) ListContracts(c *gin.Context) {
	page, limit := parsePagination(c)

	contracts, total, err := h.service.ListContracts(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, contracts, total, page, limit)
}

// ListActiveContracts handles GET /api/v1/contracts/active.
func (h *ContractHandler) ListActiveContracts(c *gin.Context) {
	contracts, err := h.service.ListActiveContracts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, contracts)
}

// GetContract handles GET /api/v1/contracts/:id.
func (h *ContractHandler) GetContract(c *gin.Context) {
	contractID, err := parseID(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid contract ID")
		return
	}

	result, err := h.service.GetContract(c.Request.Context(), contractID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ReturnItemRequest is the request body for POST /api/v1/contracts/:id/returns.
type ReturnItemRequest struct {
	ItemID     uint64 `json:"item_id" binding:"required"`
	ReturnDate string `json:"return_date"`
}

// ReturnItem handles POST /api/v1/contracts/:id/returns. An omitted
// return_date defaults to today.
func (h *ContractHandler) ReturnItem(c *gin.Context) {
	contractID, err := parseID(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid contract ID")
		return
	}

	var req ReturnItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	returnDate := time.Now().UTC().Truncate(24 * time.Hour)
	if req.ReturnDate != "" {
		returnDate, err = parseDate(req.ReturnDate)
		if err != nil {
			response.BadRequest(c, "invalid return_date, expected YYYY-MM-DD")
			return
		}
	}

	result, err := h.service.ReturnItem(c.Request.Context(), contractID, req.ItemID, returnDate)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CancelContract handles POST /api/v1/contracts/:id/cancel.
func (h *ContractHandler) CancelContract(c *gin.Context) {
	contractID, err := parseID(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid contract ID")
		return
	}

	result, err := h.service.CancelContract(c.Request.Context(), contractID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// parseID parses a positive numeric path parameter.
func parseID(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}

// parseDate parses a YYYY-MM-DD date in UTC.
func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, time.UTC)
}

// parsePagination extracts page and limit query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return page, limit
}

package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/loca-mat/service-rental/internal/application"
	"github.com/loca-mat/service-rental/internal/platform/auth"
	"github.com/loca-mat/service-rental/internal/platform/middleware"
	"github.com/loca-mat/service-rental/internal/platform/response"
)

// ReportHandler handles HTTP requests for admin reports.
type ReportHandler struct {
	service *application.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(service *application.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// RegisterRoutes registers all report routes on the given router group.
// Reports are admin-only.
func (h *ReportHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	reports := r.Group("/api/v1/reports")
	reports.Use(authMW)
	reports.Use(middleware.RequireRole(auth.RoleAdmin))
	{
		reports.GET("/overdue", h.OverdueContracts)
		reports.GET("/revenue", h.Revenue)
		reports.GET("/top-items", h.TopItems)
	}
}

// OverdueContracts handles GET /api/v1/reports/overdue.
func (h *ReportHandler) OverdueContracts(c *gin.Context) {
	result, err := h.service.OverdueContracts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Revenue handles GET /api/v1/reports/revenue.
func (h *ReportHandler) Revenue(c *gin.Context) {
	result, err := h.service.RevenueLast30Days(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// TopItems handles GET /api/v1/reports/top-items.
func (h *ReportHandler) TopItems(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))

	result, err := h.service.TopItemsByRevenue(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

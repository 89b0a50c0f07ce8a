package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/loca-mat/service-rental/internal/application"
	"github.com/loca-mat/service-rental/internal/platform/auth"
	"github.com/loca-mat/service-rental/internal/platform/middleware"
	"github.com/loca-mat/service-rental/internal/platform/response"
)

// ClientHandler handles HTTP requests for client management.
type ClientHandler struct {
	service *application.ClientService
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(service *application.ClientService) *ClientHandler {
	return &ClientHandler{service: service}
}

// RegisterRoutes registers all client routes on the given router group.
func (h *ClientHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	clients := r.Group("/api/v1/clients")
	clients.Use(authMW)
	{
		clients.POST("", middleware.RequireRole(auth.RoleManager), h.CreateClient)
		clients.GET("", h.ListClients)
		clients.GET("/:id", h.GetClient)
		clients.PATCH("/:id/vip", middleware.RequireRole(auth.RoleManager), h.SetVIP)
		clients.DELETE("/:id", middleware.RequireRole(auth.RoleAdmin), h.DeleteClient)
	}
}

// CreateClientRequest is the request body for POST /api/v1/clients.
type CreateClientRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	VIP       bool   `json:"vip"`
}

// CreateClient handles POST /api/v1/clients.
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateClient(c.Request.Context(), application.CreateClientInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		VIP:       req.VIP,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListClients handles GET /api/v1/clients.
func (h *ClientHandler) ListClients(c *gin.Context) {
	result, err := h.service.ListClients(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetClient handles GET /api/v1/clients/:id.
func (h *ClientHandler) GetClient(c *gin.Context) {
	clientID, err := parseID(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid client ID")
		return
	}

	result, err := h.service.GetClient(c.Request.Context(), clientID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// SetVIPRequest is the request body for PATCH /api/v1/clients/:id/vip.
type SetVIPRequest struct {
	VIP *bool `json:"vip" binding:"required"`
}

// SetVIP handles PATCH /api/v1/clients/:id/vip.
func (h *ClientHandler) SetVIP(c *gin.Context) {
	clientID, err := parseID(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid client ID")
		return
	}

	var req SetVIPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.SetVIP(c.Request.Context(), clientID, *req.VIP)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeleteClient handles DELETE /api/v1/clients/:id.
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	clientID, err := parseID(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid client ID")
		return
	}

	if err := h.service.DeleteClient(c.Request.Context(), clientID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

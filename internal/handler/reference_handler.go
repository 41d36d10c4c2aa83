package handler

import (
	"net/http"

	"portfee/internal/middleware"
	"portfee/internal/service"

	"github.com/gin-gonic/gin"
)

type ReferenceHandler struct {
	referenceService service.ReferenceService
}

func NewReferenceHandler(referenceService service.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{referenceService: referenceService}
}

func (h *ReferenceHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/port-authorities", h.ListPortAuthorities)
	router.POST("/port-authorities", h.CreatePortAuthority)
	router.GET("/ports", h.ListPorts)
	router.POST("/ports", h.CreatePort)
	router.GET("/shipping-agents", h.ListShippingAgents)
	router.POST("/shipping-agents", h.CreateShippingAgent)
	router.GET("/disembarkment-sites", h.ListDisembarkmentSites)
	router.POST("/disembarkment-sites", h.CreateDisembarkmentSite)
}

// ListPortAuthorities
// @Summary      List port authorities visible to the caller
// @Tags         reference
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.PortAuthority}
// @Router       /api/port-authorities [get]
func (h *ReferenceHandler) ListPortAuthorities(c *gin.Context) {
	items, err := h.referenceService.ListPortAuthorities(c.Request.Context(), middleware.CurrentUser(c))
	respond(c, http.StatusOK, items, err)
}

// ListPorts
// @Summary      List ports visible to the caller
// @Tags         reference
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.Port}
// @Router       /api/ports [get]
func (h *ReferenceHandler) ListPorts(c *gin.Context) {
	items, err := h.referenceService.ListPorts(c.Request.Context(), middleware.CurrentUser(c))
	respond(c, http.StatusOK, items, err)
}

// ListShippingAgents
// @Summary      List shipping agents visible to the caller
// @Tags         reference
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.ShippingAgent}
// @Router       /api/shipping-agents [get]
func (h *ReferenceHandler) ListShippingAgents(c *gin.Context) {
	items, err := h.referenceService.ListShippingAgents(c.Request.Context(), middleware.CurrentUser(c))
	respond(c, http.StatusOK, items, err)
}

// ListDisembarkmentSites
// @Summary      List disembarkment sites
// @Tags         reference
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.DisembarkmentSite}
// @Router       /api/disembarkment-sites [get]
func (h *ReferenceHandler) ListDisembarkmentSites(c *gin.Context) {
	items, err := h.referenceService.ListDisembarkmentSites(c.Request.Context(), middleware.CurrentUser(c))
	respond(c, http.StatusOK, items, err)
}

// CreatePortAuthority
// @Summary      Create a port authority
// @Tags         reference
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.NamedRequest  true  "Port authority"
// @Success      201      {object}  response.Response{data=model.PortAuthority}
// @Router       /api/port-authorities [post]
func (h *ReferenceHandler) CreatePortAuthority(c *gin.Context) {
	var req service.NamedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	item, err := h.referenceService.CreatePortAuthority(c.Request.Context(), middleware.CurrentUser(c), req)
	respond(c, http.StatusCreated, item, err)
}

// CreatePort
// @Summary      Create a port
// @Tags         reference
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.PortRequest  true  "Port"
// @Success      201      {object}  response.Response{data=model.Port}
// @Router       /api/ports [post]
func (h *ReferenceHandler) CreatePort(c *gin.Context) {
	var req service.PortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	item, err := h.referenceService.CreatePort(c.Request.Context(), middleware.CurrentUser(c), req)
	respond(c, http.StatusCreated, item, err)
}

// CreateShippingAgent
// @Summary      Create a shipping agent
// @Tags         reference
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.NamedRequest  true  "Shipping agent"
// @Success      201      {object}  response.Response{data=model.ShippingAgent}
// @Router       /api/shipping-agents [post]
func (h *ReferenceHandler) CreateShippingAgent(c *gin.Context) {
	var req service.NamedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	item, err := h.referenceService.CreateShippingAgent(c.Request.Context(), middleware.CurrentUser(c), req)
	respond(c, http.StatusCreated, item, err)
}

// CreateDisembarkmentSite
// @Summary      Create a disembarkment site
// @Tags         reference
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.DisembarkmentSiteRequest  true  "Site"
// @Success      201      {object}  response.Response{data=model.DisembarkmentSite}
// @Router       /api/disembarkment-sites [post]
func (h *ReferenceHandler) CreateDisembarkmentSite(c *gin.Context) {
	var req service.DisembarkmentSiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	item, err := h.referenceService.CreateDisembarkmentSite(c.Request.Context(), middleware.CurrentUser(c), req)
	respond(c, http.StatusCreated, item, err)
}

package handler

import (
	"net/http"

	"portfee/internal/middleware"
	"portfee/internal/permission"
	"portfee/internal/service"
	"portfee/pkg/response"

	"github.com/gin-gonic/gin"
)

type PolicyHandler struct {
	policyService service.PolicyService
}

func NewPolicyHandler(policyService service.PolicyService) *PolicyHandler {
	return &PolicyHandler{policyService: policyService}
}

func (h *PolicyHandler) RegisterRoutes(router *gin.RouterGroup) {
	policies := router.Group("/policies")
	{
		policies.GET("", h.ListGrants)
		policies.POST("", h.AddGrant)
		policies.DELETE("", h.RemoveGrant)
	}
}

// ListGrants returns the group permission matrix
// @Summary      List permission grants
// @Tags         policies
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]permission.Grant}
// @Failure      403  {object}  response.Response
// @Router       /api/policies [get]
func (h *PolicyHandler) ListGrants(c *gin.Context) {
	grants, err := h.policyService.ListGrants(c.Request.Context(), middleware.CurrentUser(c))
	respond(c, http.StatusOK, grants, err)
}

// AddGrant
// @Summary      Add a permission grant
// @Tags         policies
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      permission.Grant  true  "Grant"
// @Success      201      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Router       /api/policies [post]
func (h *PolicyHandler) AddGrant(c *gin.Context) {
	var grant permission.Grant
	if err := c.ShouldBindJSON(&grant); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	if err := h.policyService.AddGrant(c.Request.Context(), middleware.CurrentUser(c), grant); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, grant))
}

// RemoveGrant
// @Summary      Remove a permission grant
// @Tags         policies
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      permission.Grant  true  "Grant"
// @Success      200      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/policies [delete]
func (h *PolicyHandler) RemoveGrant(c *gin.Context) {
	var grant permission.Grant
	if err := c.ShouldBindJSON(&grant); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	if err := h.policyService.RemoveGrant(c.Request.Context(), middleware.CurrentUser(c), grant); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Grant removed"))
}

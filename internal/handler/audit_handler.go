package handler

import (
	"net/http"

	"portfee/internal/middleware"
	"portfee/internal/model"
	"portfee/internal/service"
	"portfee/pkg/pagination"
	"portfee/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/audit-logs", h.GetAuditLogs)
}

// GetAuditLogs retrieves paginated audit records, newest first
// @Summary      Get audit logs
// @Description  Lists the audit trail. Tax authority and superusers only.
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Failure      403    {object}  response.Response
// @Router       /api/audit-logs [get]
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil || !(user.IsSuperuser || user.InGroup(model.GroupTaxAuthority)) {
		writeError(c, service.ErrPermissionDenied)
		return
	}

	p := pagination.Parse(c)

	logs, total, err := h.auditService.GetAuditLogs(c.Request.Context(), p.Page, p.Limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"items": logs,
		"total": total,
		"page":  p.Page,
		"limit": p.Limit,
	}))
}

package handler

import (
	"context"
	"net/http"

	"portfee/internal/middleware"
	"portfee/internal/model"
	"portfee/internal/repository"
	"portfee/internal/service"
	"portfee/pkg/pagination"
	"portfee/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FormHandler struct {
	formService service.FormService
}

func NewFormHandler(formService service.FormService) *FormHandler {
	return &FormHandler{formService: formService}
}

type RejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *FormHandler) RegisterRoutes(router *gin.RouterGroup) {
	forms := router.Group("/forms")
	{
		forms.GET("", h.ListForms)
		forms.POST("", h.CreateForm)
		forms.GET("/:id", h.GetForm)
		forms.PUT("/:id", h.UpdateForm)
		forms.DELETE("/:id", h.DeleteForm)
		forms.POST("/:id/submit", h.SubmitForm)
		forms.POST("/:id/approve", h.ApproveForm)
		forms.POST("/:id/reject", h.RejectForm)
		forms.POST("/:id/invoice", h.InvoiceForm)
		forms.POST("/:id/paid", h.MarkFormPaid)
		forms.POST("/:id/reopen", h.ReopenForm)
		forms.GET("/:id/taxes", h.PreviewTaxes)
		forms.POST("/:id/taxes", h.SaveTaxes)
		forms.GET("/:id/history", h.GetHistory)
	}
}

// ListForms returns the forms the caller may view
// @Summary      List harbor dues forms
// @Tags         forms
// @Security     BearerAuth
// @Produce      json
// @Param        status             query     string  false  "Status filter"
// @Param        port_of_call_id    query     string  false  "Port filter"
// @Param        shipping_agent_id  query     string  false  "Shipping agent filter"
// @Param        vessel_imo         query     string  false  "Vessel IMO filter"
// @Param        page               query     int     false  "Page number (default 1)"
// @Param        limit              query     int     false  "Items per page (default 20)"
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/forms [get]
func (h *FormHandler) ListForms(c *gin.Context) {
	filter := repository.FormFilter{
		Status:    model.Status(c.Query("status")),
		VesselIMO: c.Query("vessel_imo"),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		badRequest(c, "Invalid status")
		return
	}
	var ok bool
	if filter.PortOfCallID, ok = queryID(c, "port_of_call_id"); !ok {
		return
	}
	if filter.ShippingAgentID, ok = queryID(c, "shipping_agent_id"); !ok {
		return
	}

	p := pagination.Parse(c)

	forms, total, err := h.formService.List(c.Request.Context(), middleware.CurrentUser(c), filter, p.Page, p.Limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"items": forms,
		"total": total,
		"page":  p.Page,
		"limit": p.Limit,
	}))
}

// CreateForm creates a draft form
// @Summary      Create a harbor dues form
// @Tags         forms
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.FormRequest  true  "Form"
// @Success      201      {object}  response.Response{data=model.HarborDuesForm}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /api/forms [post]
func (h *FormHandler) CreateForm(c *gin.Context) {
	var req service.FormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	form, err := h.formService.Create(c.Request.Context(), middleware.CurrentUser(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, form))
}

// GetForm returns one form
// @Summary      Get a harbor dues form
// @Tags         forms
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Form ID"
// @Success      200  {object}  response.Response{data=model.HarborDuesForm}
// @Failure      404  {object}  response.Response
// @Router       /api/forms/{id} [get]
func (h *FormHandler) GetForm(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	form, err := h.formService.Get(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, form))
}

// UpdateForm replaces the editable fields of a form
// @Summary      Update a harbor dues form
// @Tags         forms
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string               true  "Form ID"
// @Param        payload  body      service.FormRequest  true  "Form"
// @Success      200      {object}  response.Response{data=model.HarborDuesForm}
// @Failure      409      {object}  response.Response
// @Router       /api/forms/{id} [put]
func (h *FormHandler) UpdateForm(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.FormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	form, err := h.formService.Update(c.Request.Context(), middleware.CurrentUser(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, form))
}

// DeleteForm removes a form
// @Summary      Delete a harbor dues form
// @Tags         forms
// @Security     BearerAuth
// @Param        id   path      string  true  "Form ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /api/forms/{id} [delete]
func (h *FormHandler) DeleteForm(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.formService.Delete(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Form deleted"))
}

// SubmitForm moves a draft to NEW and stores its taxes
// @Summary      Submit a form
// @Tags         forms
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Form ID"
// @Success      200  {object}  response.Response{data=model.HarborDuesForm}
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/forms/{id}/submit [post]
func (h *FormHandler) SubmitForm(c *gin.Context) {
	h.transition(c, h.formService.Submit)
}

// ApproveForm
// @Summary      Approve a form
// @Tags         forms
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Form ID"
// @Success      200  {object}  response.Response{data=model.HarborDuesForm}
// @Router       /api/forms/{id}/approve [post]
func (h *FormHandler) ApproveForm(c *gin.Context) {
	h.transition(c, h.formService.Approve)
}

// RejectForm rejects a form with a reason
// @Summary      Reject a form
// @Tags         forms
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string         true  "Form ID"
// @Param        payload  body      RejectRequest  true  "Reason"
// @Success      200      {object}  response.Response{data=model.HarborDuesForm}
// @Router       /api/forms/{id}/reject [post]
func (h *FormHandler) RejectForm(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "A rejection reason is required")
		return
	}

	form, err := h.formService.Reject(c.Request.Context(), middleware.CurrentUser(c), id, req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, form))
}

// InvoiceForm
// @Summary      Mark a form invoiced
// @Tags         forms
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Form ID"
// @Success      200  {object}  response.Response{data=model.HarborDuesForm}
// @Router       /api/forms/{id}/invoice [post]
func (h *FormHandler) InvoiceForm(c *gin.Context) {
	h.transition(c, h.formService.Invoice)
}

// MarkFormPaid
// @Summary      Mark a form paid
// @Tags         forms
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Form ID"
// @Success      200  {object}  response.Response{data=model.HarborDuesForm}
// @Router       /api/forms/{id}/paid [post]
func (h *FormHandler) MarkFormPaid(c *gin.Context) {
	h.transition(c, h.formService.MarkPaid)
}

// ReopenForm moves a rejected form back to draft
// @Summary      Reopen a rejected form
// @Tags         forms
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Form ID"
// @Success      200  {object}  response.Response{data=model.HarborDuesForm}
// @Router       /api/forms/{id}/reopen [post]
func (h *FormHandler) ReopenForm(c *gin.Context) {
	h.transition(c, h.formService.Reopen)
}

// PreviewTaxes computes the taxes without storing them
// @Summary      Preview form taxes
// @Tags         forms
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Form ID"
// @Success      200  {object}  response.Response{data=calculation.Taxes}
// @Router       /api/forms/{id}/taxes [get]
func (h *FormHandler) PreviewTaxes(c *gin.Context) {
	h.taxes(c, false)
}

// SaveTaxes computes the taxes and stores them on the form
// @Summary      Recalculate form taxes
// @Tags         forms
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Form ID"
// @Success      200  {object}  response.Response{data=calculation.Taxes}
// @Router       /api/forms/{id}/taxes [post]
func (h *FormHandler) SaveTaxes(c *gin.Context) {
	h.taxes(c, true)
}

// GetHistory returns the audit trail of one form, oldest first
// @Summary      Form history
// @Tags         forms
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Form ID"
// @Success      200  {object}  response.Response{data=[]service.AuditLogResponse}
// @Router       /api/forms/{id}/history [get]
func (h *FormHandler) GetHistory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	logs, err := h.formService.History(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, logs))
}

type transitionFunc func(ctx context.Context, user *model.User, id uuid.UUID) (*model.HarborDuesForm, error)

func (h *FormHandler) transition(c *gin.Context, fn transitionFunc) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	form, err := fn(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, form))
}

func (h *FormHandler) taxes(c *gin.Context, save bool) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	taxes, err := h.formService.Taxes(c.Request.Context(), middleware.CurrentUser(c), id, save)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, taxes))
}

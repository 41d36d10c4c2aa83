package handler

import (
	"net/http"
	"strconv"

	"portfee/internal/middleware"
	"portfee/internal/model"
	"portfee/internal/service"
	"portfee/pkg/pagination"
	"portfee/pkg/response"

	"github.com/gin-gonic/gin"
)

type TaxRatesHandler struct {
	taxRatesService service.TaxRatesService
}

func NewTaxRatesHandler(taxRatesService service.TaxRatesService) *TaxRatesHandler {
	return &TaxRatesHandler{taxRatesService: taxRatesService}
}

func (h *TaxRatesHandler) RegisterRoutes(router *gin.RouterGroup) {
	rates := router.Group("/tax-rates")
	{
		rates.GET("", h.ListTaxRates)
		rates.POST("", h.CreateTaxRates)
		rates.GET("/:id", h.GetTaxRates)
		rates.PUT("/:id", h.UpdateTaxRates)
		rates.DELETE("/:id", h.DeleteTaxRates)
		rates.GET("/:id/port-tax-rate", h.GetPortTaxRate)
	}
}

// ListTaxRates returns the rate schedules ordered by start
// @Summary      List tax rate schedules
// @Tags         tax-rates
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Router       /api/tax-rates [get]
func (h *TaxRatesHandler) ListTaxRates(c *gin.Context) {
	p := pagination.Parse(c)

	schedules, total, err := h.taxRatesService.List(c.Request.Context(), middleware.CurrentUser(c), p.Page, p.Limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"items": schedules,
		"total": total,
		"page":  p.Page,
		"limit": p.Limit,
	}))
}

// CreateTaxRates adds a schedule and relinks the validity chain
// @Summary      Create a tax rate schedule
// @Tags         tax-rates
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.TaxRatesRequest  true  "Schedule"
// @Success      201      {object}  response.Response{data=model.TaxRates}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/tax-rates [post]
func (h *TaxRatesHandler) CreateTaxRates(c *gin.Context) {
	var req service.TaxRatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	schedule, err := h.taxRatesService.Create(c.Request.Context(), middleware.CurrentUser(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, schedule))
}

// GetTaxRates
// @Summary      Get a tax rate schedule
// @Tags         tax-rates
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Schedule ID"
// @Success      200  {object}  response.Response{data=model.TaxRates}
// @Failure      404  {object}  response.Response
// @Router       /api/tax-rates/{id} [get]
func (h *TaxRatesHandler) GetTaxRates(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	schedule, err := h.taxRatesService.Get(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, schedule))
}

// UpdateTaxRates replaces a schedule and its entries
// @Summary      Update a tax rate schedule
// @Tags         tax-rates
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                   true  "Schedule ID"
// @Param        payload  body      service.TaxRatesRequest  true  "Schedule"
// @Success      200      {object}  response.Response{data=model.TaxRates}
// @Router       /api/tax-rates/{id} [put]
func (h *TaxRatesHandler) UpdateTaxRates(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.TaxRatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	schedule, err := h.taxRatesService.Update(c.Request.Context(), middleware.CurrentUser(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, schedule))
}

// DeleteTaxRates removes a schedule and closes the gap it leaves
// @Summary      Delete a tax rate schedule
// @Tags         tax-rates
// @Security     BearerAuth
// @Param        id   path      string  true  "Schedule ID"
// @Success      200  {object}  response.Response
// @Router       /api/tax-rates/{id} [delete]
func (h *TaxRatesHandler) DeleteTaxRates(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.taxRatesService.Delete(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Tax rates deleted"))
}

// GetPortTaxRate finds the bracket of a schedule matching a port, vessel type and tonnage
// @Summary      Look up a port tax rate
// @Tags         tax-rates
// @Security     BearerAuth
// @Produce      json
// @Param        id             path      string  true   "Schedule ID"
// @Param        port_id        query     string  false  "Port ID"
// @Param        vessel_type    query     string  true   "Vessel type"
// @Param        gross_tonnage  query     int     true   "Gross tonnage"
// @Success      200  {object}  response.Response{data=model.PortTaxRate}
// @Failure      404  {object}  response.Response
// @Router       /api/tax-rates/{id}/port-tax-rate [get]
func (h *TaxRatesHandler) GetPortTaxRate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	portID, ok := queryID(c, "port_id")
	if !ok {
		return
	}
	vesselType := model.VesselType(c.Query("vessel_type"))
	if !vesselType.Valid() {
		badRequest(c, "Invalid vessel_type")
		return
	}
	grossTonnage, err := strconv.Atoi(c.Query("gross_tonnage"))
	if err != nil || grossTonnage < 0 {
		badRequest(c, "Invalid gross_tonnage")
		return
	}

	rate, err := h.taxRatesService.GetPortTaxRate(c.Request.Context(), middleware.CurrentUser(c), id, portID, vesselType, grossTonnage)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rate))
}

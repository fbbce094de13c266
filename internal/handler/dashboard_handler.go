package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/findnest-api/internal/dto"
	"github.com/noah-isme/findnest-api/internal/middleware"
	"github.com/noah-isme/findnest-api/internal/models"
	"github.com/noah-isme/findnest-api/internal/service"
	appErrors "github.com/noah-isme/findnest-api/pkg/errors"
	"github.com/noah-isme/findnest-api/pkg/response"
)

type dashboardService interface {
	ParseFilter(params dto.FilterParams) (models.FilterConfig, error)
	Dashboard(ctx context.Context, caller models.Principal, filter models.FilterConfig) (*dto.DashboardResponse, bool, error)
	Rows(ctx context.Context, filter models.FilterConfig, page, pageSize int) ([]models.DisplayItem, *models.Pagination, error)
	Aggregate(ctx context.Context, filter models.FilterConfig) (models.Aggregation, error)
}

type reportRenderer interface {
	Render(format models.ReportFormat, rows []models.DisplayItem) (*service.RenderedReport, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service  dashboardService
	renderer reportRenderer
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService, renderer reportRenderer) *DashboardHandler {
	return &DashboardHandler{service: service, renderer: renderer}
}

// Summary godoc
// @Summary Dashboard analytics
// @Description Counters, recent lists, 7-day buckets, user count card and filtered rows
// @Tags Dashboard
// @Produce json
// @Param action query []string false "found, claimed, deleted (repeatable or comma-separated)"
// @Param name query string false "Item name tokens"
// @Param start query string false "Start date (YYYY-MM-DD)"
// @Param end query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}
	start := time.Now()
	summary, cacheHit, err := h.service.Dashboard(c.Request.Context(), principal, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, summary, nil, meta)
}

// Rows godoc
// @Summary Aggregated dashboard rows
// @Tags Dashboard
// @Produce json
// @Param action query []string false "found, claimed, deleted"
// @Param name query string false "Item name tokens"
// @Param start query string false "Start date (YYYY-MM-DD)"
// @Param end query string false "End date (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /dashboard/rows [get]
func (h *DashboardHandler) Rows(c *gin.Context) {
	var params dto.DashboardRowsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters"))
		return
	}
	filter, err := h.service.ParseFilter(params.FilterParams)
	if err != nil {
		response.Error(c, err)
		return
	}
	rows, pagination, err := h.service.Rows(c.Request.Context(), filter, params.Page, params.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, pagination)
}

// Report godoc
// @Summary Download the found items report
// @Tags Dashboard
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "xlsx (default), csv or pdf"
// @Param action query []string false "found, claimed, deleted"
// @Param name query string false "Item name tokens"
// @Param start query string false "Start date (YYYY-MM-DD)"
// @Param end query string false "End date (YYYY-MM-DD)"
// @Success 200 {file} file
// @Failure 500 {object} response.Envelope
// @Router /dashboard/report [get]
func (h *DashboardHandler) Report(c *gin.Context) {
	if h.renderer == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnavailable, "report export is not configured"))
		return
	}
	format := models.ReportFormat(strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", string(models.ReportFormatXLSX)))))
	if !format.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be xlsx, csv or pdf"))
		return
	}
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}
	agg, err := h.service.Aggregate(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	report, err := h.renderer.Render(format, agg.Rows)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, report.Filename, report.ContentType, report.Data)
}

func (h *DashboardHandler) bindFilter(c *gin.Context) (models.FilterConfig, bool) {
	var params dto.FilterParams
	if err := c.ShouldBindQuery(&params); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters"))
		return models.FilterConfig{}, false
	}
	filter, err := h.service.ParseFilter(params)
	if err != nil {
		response.Error(c, err)
		return models.FilterConfig{}, false
	}
	return filter, true
}

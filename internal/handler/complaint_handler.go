package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/examdesk/complaints-api/internal/middleware"
	"github.com/examdesk/complaints-api/internal/service"
	appErrors "github.com/examdesk/complaints-api/pkg/errors"
	"github.com/examdesk/complaints-api/pkg/response"
)

// ComplaintHandler exposes complaint endpoints.
type ComplaintHandler struct {
	complaints *service.ComplaintService
	exports    *service.ExportService
}

// NewComplaintHandler constructs ComplaintHandler.
func NewComplaintHandler(complaints *service.ComplaintService, exports *service.ExportService) *ComplaintHandler {
	return &ComplaintHandler{complaints: complaints, exports: exports}
}

// List godoc
// @Summary List complaints visible to the caller
// @Tags Complaints
// @Produce json
// @Param status query string false "Filter by status"
// @Param search query string false "Search by reference or exam"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /complaints [get]
func (h *ComplaintHandler) List(c *gin.Context) {
	var req service.ListComplaintsRequest
	req.Status = c.Query("status")
	req.Search = strings.TrimSpace(c.Query("search"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		req.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		req.PageSize = size
	}

	complaints, pagination, err := h.complaints.List(c.Request.Context(), middleware.Identity(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, complaints, pagination)
}

// Get godoc
// @Summary Get complaint detail
// @Tags Complaints
// @Produce json
// @Param id path string true "Complaint ID"
// @Success 200 {object} response.Envelope
// @Router /complaints/{id} [get]
func (h *ComplaintHandler) Get(c *gin.Context) {
	complaint, err := h.complaints.Get(c.Request.Context(), middleware.Identity(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, complaint, nil)
}

// UpdateStatus godoc
// @Summary Transition complaint status
// @Tags Complaints
// @Accept json
// @Produce json
// @Param id path string true "Complaint ID"
// @Param payload body service.TransitionRequest true "Transition payload"
// @Success 200 {object} response.Envelope
// @Router /complaints/{id}/status [patch]
func (h *ComplaintHandler) UpdateStatus(c *gin.Context) {
	var req service.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	detail, err := h.complaints.Transition(c.Request.Context(), middleware.Identity(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// History godoc
// @Summary List status history for a complaint
// @Tags Complaints
// @Produce json
// @Param id path string true "Complaint ID"
// @Success 200 {object} response.Envelope
// @Router /complaints/{id}/history [get]
func (h *ComplaintHandler) History(c *gin.Context) {
	history, err := h.complaints.History(c.Request.Context(), middleware.Identity(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, history, nil)
}

// ListResponses godoc
// @Summary List responses for a complaint
// @Tags Complaints
// @Produce json
// @Param id path string true "Complaint ID"
// @Success 200 {object} response.Envelope
// @Router /complaints/{id}/responses [get]
func (h *ComplaintHandler) ListResponses(c *gin.Context) {
	responses, err := h.complaints.Responses(c.Request.Context(), middleware.Identity(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, responses, nil)
}

// AddResponse godoc
// @Summary Add a response to a complaint
// @Tags Complaints
// @Accept json
// @Produce json
// @Param id path string true "Complaint ID"
// @Param payload body service.AddResponseRequest true "Response payload"
// @Success 201 {object} response.Envelope
// @Router /complaints/{id}/responses [post]
func (h *ComplaintHandler) AddResponse(c *gin.Context) {
	var req service.AddResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	resp, err := h.complaints.AddResponse(c.Request.Context(), middleware.Identity(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, resp)
}

// Export godoc
// @Summary Export visible complaints as CSV or PDF
// @Tags Complaints
// @Produce text/csv
// @Param format query string false "csv or pdf"
// @Param status query string false "Filter by status"
// @Success 200
// @Router /complaints/export [get]
func (h *ComplaintHandler) Export(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "export disabled"))
		return
	}
	result, err := h.exports.Export(c.Request.Context(), middleware.Identity(c), c.DefaultQuery("format", "csv"), c.Query("status"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

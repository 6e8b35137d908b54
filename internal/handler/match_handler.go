package handler

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/careerkit/cvmatch/internal/pkg/errcode"
	"github.com/careerkit/cvmatch/internal/pkg/response"
	"github.com/careerkit/cvmatch/internal/service"
)

type MatchHandler struct {
	match   *service.MatchService
	reports *service.ReportService
}

func NewMatchHandler(match *service.MatchService, reports *service.ReportService) *MatchHandler {
	return &MatchHandler{match: match, reports: reports}
}

type matchRequest struct {
	ResumeText string `json:"resume_text"`
	JDText     string `json:"jd_text"`
}

func (h *MatchHandler) Match(c *gin.Context) {
	var req matchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	result, err := h.match.Match(c.Request.Context(), req.ResumeText, req.JDText)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

// Report streams a stored report as a download attachment.
func (h *MatchHandler) Report(c *gin.Context) {
	key := c.Param("key")
	format := strings.TrimSpace(c.Query("format"))
	data, contentType, err := h.reports.Open(c.Request.Context(), key, format)
	if err != nil {
		handleError(c, err)
		return
	}
	ext := ".md"
	if strings.EqualFold(format, "html") {
		ext = ".html"
	}
	filename := fmt.Sprintf("cvmatch-report-%s%s", time.Now().Format("20060102-150405"), ext)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(200, contentType, data)
}

func (h *MatchHandler) Roles(c *gin.Context) {
	response.Success(c, gin.H{"roles": h.match.RoleNames()})
}

func (h *MatchHandler) Health(c *gin.Context) {
	modelName, dimension := h.match.EmbeddingInfo()
	response.Success(c, gin.H{
		"status":          "ok",
		"embedding_model": modelName,
		"dimension":       dimension,
	})
}

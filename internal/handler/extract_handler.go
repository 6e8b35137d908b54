package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/careerkit/cvmatch/internal/model"
	"github.com/careerkit/cvmatch/internal/pkg/errcode"
	"github.com/careerkit/cvmatch/internal/pkg/response"
	"github.com/careerkit/cvmatch/internal/service"
)

type ExtractHandler struct {
	extract       *service.ExtractService
	maxUploadSize int64
}

func NewExtractHandler(extract *service.ExtractService, maxUploadSize int64) *ExtractHandler {
	return &ExtractHandler{extract: extract, maxUploadSize: maxUploadSize}
}

type extractResponse struct {
	Role           model.DocumentRole `json:"role"`
	Text           string             `json:"text"`
	NormalizedText string             `json:"normalized_text"`
}

// Extract accepts either a multipart file upload or a pasted "text" form
// field, for one document role. Files never outlive the request.
func (h *ExtractHandler) Extract(c *gin.Context) {
	role, ok := parseRole(c.PostForm("role"))
	if !ok {
		response.Error(c, errcode.ErrInvalid, "role must be resume or job_description")
		return
	}

	file, err := c.FormFile("file")
	if err == nil && file.Filename != "" {
		if h.maxUploadSize > 0 && file.Size > h.maxUploadSize {
			response.Error(c, errcode.ErrInvalidFile, "file too large (max "+formatUploadLimit(h.maxUploadSize)+")")
			return
		}
		opened, err := file.Open()
		if err != nil {
			response.Error(c, errcode.ErrInvalidFile, "failed to open file")
			return
		}
		defer opened.Close()
		doc, err := h.extract.FromUpload(c.Request.Context(), role, file.Filename, opened)
		if err != nil {
			handleError(c, err)
			return
		}
		response.Success(c, extractResponse{Role: doc.Role, Text: doc.RawText, NormalizedText: doc.NormalizedText})
		return
	}

	text := strings.TrimSpace(c.PostForm("text"))
	if text == "" {
		response.Error(c, errcode.ErrInvalid, "file or text is required")
		return
	}
	doc, err := h.extract.FromText(role, text)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, extractResponse{Role: doc.Role, Text: doc.RawText, NormalizedText: doc.NormalizedText})
}

func parseRole(value string) (model.DocumentRole, bool) {
	switch model.DocumentRole(strings.TrimSpace(value)) {
	case model.RoleResume:
		return model.RoleResume, true
	case model.RoleJobDescription:
		return model.RoleJobDescription, true
	default:
		return "", false
	}
}

package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/careerkit/cvmatch/internal/pkg/errcode"
	apperrors "github.com/careerkit/cvmatch/internal/pkg/errors"
	"github.com/careerkit/cvmatch/internal/pkg/response"
	"github.com/careerkit/cvmatch/internal/similarity"
)

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID, _ := c.Get("request_id")
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.Any("request_id", requestID),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		response.Error(c, errcode.ErrNotFound, "not found")
	case errors.Is(err, apperrors.ErrUnsupportedFile):
		response.Error(c, errcode.ErrInvalidFile, "unsupported file type, upload pdf, docx or txt")
	case errors.Is(err, apperrors.ErrExtraction):
		response.Error(c, errcode.ErrExtractionFailed, "could not read the uploaded file, please check it and try again")
	case errors.Is(err, apperrors.ErrDegenerateInput):
		response.Error(c, errcode.ErrDegenerateInput, "the text has too little content to analyze, please provide more detail")
	case errors.Is(err, apperrors.ErrInvalid):
		response.Error(c, errcode.ErrInvalid, "invalid request")
	case errors.Is(err, similarity.ErrDimensionMismatch):
		response.Error(c, errcode.ErrConfiguration, "embedding configuration error")
	default:
		response.Error(c, errcode.ErrInternal, "internal error")
	}
}

func formatUploadLimit(bytes int64) string {
	const mb = 1024 * 1024
	if bytes <= 0 {
		return "0MB"
	}
	value := bytes / mb
	if value <= 0 {
		value = 1
	}
	return strconv.FormatInt(value, 10) + "MB"
}

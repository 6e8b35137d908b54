package service

import (
	"context"
	"io"
	"os"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/careerkit/cvmatch/internal/extract"
	"github.com/careerkit/cvmatch/internal/model"
	apperrors "github.com/careerkit/cvmatch/internal/pkg/errors"
)

// ExtractService turns an uploaded artifact into a TextDocument. Uploads
// are written to a scratch file for extraction and removed on every exit
// path; nothing a user uploads outlives the request.
type ExtractService struct {
	scratchDir string
	normalizer *extract.Normalizer
}

func NewExtractService(scratchDir string, normalizer *extract.Normalizer) *ExtractService {
	return &ExtractService{scratchDir: scratchDir, normalizer: normalizer}
}

func (s *ExtractService) FromUpload(ctx context.Context, role model.DocumentRole, filename string, r io.Reader) (*model.TextDocument, error) {
	if !extract.IsSupported(filename) {
		return nil, apperrors.ErrUnsupportedFile
	}
	path, err := extract.SaveScratch(s.scratchDir, filename, r)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			logutil.GetLogger(ctx).Warn("remove scratch upload failed", zap.String("path", path), zap.Error(err))
		}
	}()

	text, err := extract.File(path)
	if err != nil {
		return nil, err
	}
	return s.FromText(role, text)
}

func (s *ExtractService) FromText(role model.DocumentRole, text string) (*model.TextDocument, error) {
	normalized := s.normalizer.Normalize(text)
	if normalized == "" {
		return nil, apperrors.ErrDegenerateInput
	}
	return &model.TextDocument{
		Role:           role,
		RawText:        text,
		NormalizedText: normalized,
	}, nil
}

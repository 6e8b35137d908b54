package service

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/xxxsen/common/logutil"
	"github.com/yuin/goldmark"
	"go.uber.org/zap"

	"github.com/careerkit/cvmatch/internal/filestore"
	"github.com/careerkit/cvmatch/internal/model"
	apperrors "github.com/careerkit/cvmatch/internal/pkg/errors"
)

// ReportService renders match results into downloadable markdown reports
// and stores them in the filestore. Report keys are tracked in memory with
// their creation time so the cleanup job can expire them; reports are
// ephemeral by design and do not survive a restart.
type ReportService struct {
	store filestore.Store
	ttl   time.Duration

	mu    sync.Mutex
	index map[string]time.Time
}

func NewReportService(store filestore.Store, ttl time.Duration) *ReportService {
	return &ReportService{
		store: store,
		ttl:   ttl,
		index: make(map[string]time.Time),
	}
}

type readSeekNopCloser struct {
	*bytes.Reader
}

func (readSeekNopCloser) Close() error { return nil }

// Create renders and stores a report, returning its download key.
func (s *ReportService) Create(ctx context.Context, result *model.MatchResult) (string, error) {
	content := renderMarkdown(result)
	key := randomHex(8) + ".md"
	data := []byte(content)
	if err := s.store.Save(ctx, key, readSeekNopCloser{bytes.NewReader(data)}, int64(len(data))); err != nil {
		return "", fmt.Errorf("save report: %w", err)
	}
	s.mu.Lock()
	s.index[key] = time.Now()
	s.mu.Unlock()
	return key, nil
}

// Open returns the stored report content. Format "html" renders the
// markdown through goldmark; anything else returns raw markdown.
func (s *ReportService) Open(ctx context.Context, key, format string) ([]byte, string, error) {
	s.mu.Lock()
	_, known := s.index[key]
	s.mu.Unlock()
	if !known {
		return nil, "", apperrors.ErrNotFound
	}
	file, err := s.store.Open(ctx, key)
	if err != nil {
		return nil, "", apperrors.ErrNotFound
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}
	if strings.EqualFold(format, "html") {
		var buf bytes.Buffer
		if err := goldmark.Convert(data, &buf); err != nil {
			return nil, "", fmt.Errorf("render report html: %w", err)
		}
		return buf.Bytes(), "text/html; charset=utf-8", nil
	}
	return data, "text/markdown; charset=utf-8", nil
}

// CleanupExpired removes reports older than the configured TTL. Stores that
// do not support removal (remote stores with lifecycle rules) are skipped.
func (s *ReportService) CleanupExpired(ctx context.Context) (int, error) {
	ttl := s.ttl
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	cutoff := time.Now().Add(-ttl)

	s.mu.Lock()
	expired := make([]string, 0)
	for key, created := range s.index {
		if created.Before(cutoff) {
			expired = append(expired, key)
		}
	}
	s.mu.Unlock()

	removed := 0
	for _, key := range expired {
		err := s.store.Remove(ctx, key)
		if err != nil && err != filestore.ErrUnsupported {
			logutil.GetLogger(ctx).Warn("remove expired report failed", zap.String("key", key), zap.Error(err))
			continue
		}
		s.mu.Lock()
		delete(s.index, key)
		s.mu.Unlock()
		removed++
	}
	return removed, nil
}

func renderMarkdown(result *model.MatchResult) string {
	var b strings.Builder
	b.WriteString("# Resume Match Report\n\n")
	b.WriteString(fmt.Sprintf("Generated: %s\n\n", time.UnixMilli(result.GeneratedAt).UTC().Format(time.RFC3339)))
	b.WriteString(fmt.Sprintf("**Match score: %.1f%%**\n\n", result.Score*100))
	if result.EmbeddingModel != "" {
		b.WriteString(fmt.Sprintf("Embedding model: %s\n\n", result.EmbeddingModel))
	}

	b.WriteString("## Top role matches\n\n")
	for i, role := range result.Roles {
		b.WriteString(fmt.Sprintf("%d. %s: %.1f%%\n", i+1, role.Name, role.Score*100))
	}
	b.WriteString("\n")

	if result.ATS != nil {
		b.WriteString("## ATS coverage\n\n")
		b.WriteString(fmt.Sprintf("Score: %d/100 (%s)\n\n", result.ATS.Score, result.ATS.Level))
		b.WriteString(fmt.Sprintf("- Required keyword coverage: %.1f%%\n", result.ATS.RequiredCoverage))
		b.WriteString(fmt.Sprintf("- Optional keyword coverage: %.1f%%\n\n", result.ATS.OptionalCoverage))
	}

	if result.Keywords != nil {
		writeKeywordSection(&b, "Present required keywords", result.Keywords.PresentRequired)
		writeKeywordSection(&b, "Missing required keywords", result.Keywords.MissingRequired)
		writeKeywordSection(&b, "Present optional keywords", result.Keywords.PresentOptional)
		writeKeywordSection(&b, "Missing optional keywords", result.Keywords.MissingOptional)
	}

	if result.Narrative != "" {
		b.WriteString("## Analysis\n\n")
		b.WriteString(result.Narrative)
		b.WriteString("\n")
	}
	return b.String()
}

func writeKeywordSection(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString("## " + title + "\n\n")
	for _, item := range items {
		b.WriteString("- " + item + "\n")
	}
	b.WriteString("\n")
}

func randomHex(size int) string {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return hex.EncodeToString(buf)
}

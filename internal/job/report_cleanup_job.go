package job

import (
	"context"

	"github.com/careerkit/cvmatch/internal/service"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

type ReportCleanupJob struct {
	reports *service.ReportService
}

func NewReportCleanupJob(reports *service.ReportService) *ReportCleanupJob {
	return &ReportCleanupJob{reports: reports}
}

func (j *ReportCleanupJob) Name() string {
	return "report_cleanup"
}

func (j *ReportCleanupJob) Run(ctx context.Context) error {
	removed, err := j.reports.CleanupExpired(ctx)
	if err != nil {
		return err
	}
	if removed > 0 {
		logutil.GetLogger(ctx).Info("expired reports removed", zap.Int("count", removed))
	}
	return nil
}

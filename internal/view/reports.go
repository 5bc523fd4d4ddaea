package view

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/aryan0dhankhar/reviewdesk/internal/domain"
)

// ReportsAPI is the backend calls used by the reports view
type ReportsAPI interface {
	Schedules(ctx context.Context) ([]domain.ReportSchedule, error)
	DownloadReport(ctx context.Context, format domain.ReportFormat) (*domain.ReportFile, error)
}

// ReportFormats are the formats offered for download
var ReportFormats = []domain.ReportFormat{domain.ReportCSV, domain.ReportPDF, domain.ReportXLSX}

// Reports lists scheduled reports and downloads on demand
type Reports struct {
	api      ReportsAPI
	notifier *Notifier
	logger   *slog.Logger

	mu          sync.Mutex
	gen         generation
	loading     bool
	downloading bool
	schedules   []domain.ReportSchedule
}

func NewReports(api ReportsAPI, notifier *Notifier, logger *slog.Logger) *Reports {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = NewNotifier(0)
	}
	return &Reports{api: api, notifier: notifier, logger: logger}
}

// Load fetches the report schedules
func (v *Reports) Load(ctx context.Context) (err error) {
	defer func() {
		observeFetch("reports", err)
		reportFetchError(v.logger, v.notifier, "reports", "report schedules", err)
	}()

	v.mu.Lock()
	id := v.gen.next()
	v.loading = true
	v.mu.Unlock()

	schedules, err := v.api.Schedules(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.gen.current(id) {
		return ErrSuperseded
	}
	v.loading = false
	if err != nil {
		return err
	}
	v.schedules = schedules
	return nil
}

func (v *Reports) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loading
}

func (v *Reports) Schedules() []domain.ReportSchedule {
	v.mu.Lock()
	defer v.mu.Unlock()
	return slices.Clone(v.schedules)
}

// Download fetches a report in the given format
func (v *Reports) Download(ctx context.Context, format domain.ReportFormat) (*domain.ReportFile, error) {
	format = domain.ReportFormat(strings.ToLower(string(format)))
	if !slices.Contains(ReportFormats, format) {
		return nil, &ValidationError{Field: "format", Message: fmt.Sprintf("unsupported report format %q", format)}
	}

	v.mu.Lock()
	v.downloading = true
	v.mu.Unlock()

	file, err := v.api.DownloadReport(ctx, format)

	v.mu.Lock()
	v.downloading = false
	v.mu.Unlock()

	if err != nil {
		v.notifier.Show(ToastError, "Failed to download report: "+err.Error())
		v.logger.Warn("report download failed",
			slog.String("format", string(format)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	v.notifier.Show(ToastSuccess, fmt.Sprintf("Downloaded %s", file.Name))
	return file, nil
}

func (v *Reports) Downloading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.downloading
}

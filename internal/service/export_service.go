package service

import (
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/findnest-api/internal/models"
	appErrors "github.com/noah-isme/findnest-api/pkg/errors"
	"github.com/noah-isme/findnest-api/pkg/export"
	"github.com/noah-isme/findnest-api/pkg/storage"
)

// Report layout.
const (
	ReportSheetName    = "Found Items Report"
	reportBaseFilename = "found_items_report"
	notAvailable       = "N/A"
)

// ReportHeaders are the exported columns, in order.
var ReportHeaders = []string{"Item", "DateFound", "Location", "Description", "Category", "Status", "ClaimantName", "ClaimedDate"}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
	Location  *time.Location
}

// RenderedReport is an in-memory report ready for download.
type RenderedReport struct {
	Filename    string
	ContentType string
	Data        []byte
	RowCount    int
}

// ExportResult captures a stored report and its signed download link.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ReportFormat
	RowCount     int
	ExpiresAt    time.Time
}

// ExportService renders aggregated rows into spreadsheet, CSV or PDF files.
type ExportService struct {
	renderers map[models.ReportFormat]export.Renderer
	storage   fileStorage
	signer    *storage.SignedURLSigner
	metrics   *MetricsService
	logger    *zap.Logger
	cfg       ExportConfig
}

// NewExportService constructs an ExportService. storage and signer may be nil when only
// synchronous downloads are served.
func NewExportService(store fileStorage, signer *storage.SignedURLSigner, metrics *MetricsService, logger *zap.Logger, cfg ExportConfig) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &ExportService{
		renderers: map[models.ReportFormat]export.Renderer{
			models.ReportFormatXLSX: export.NewXLSXExporter(),
			models.ReportFormatCSV:  export.NewCSVExporter(),
			models.ReportFormatPDF:  export.NewPDFExporter(),
		},
		storage: store,
		signer:  signer,
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
	}
}

// WithRenderer overrides the renderer for a format.
func (s *ExportService) WithRenderer(format models.ReportFormat, r export.Renderer) *ExportService {
	s.renderers[format] = r
	return s
}

// ReportFilename returns the download name for a format.
func ReportFilename(format models.ReportFormat) string {
	return reportBaseFilename + "." + string(format)
}

// BuildReportDataset maps display rows onto the report columns.
func BuildReportDataset(rows []models.DisplayItem, loc *time.Location) export.Dataset {
	out := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		claimant := row.ClaimantName
		if strings.TrimSpace(claimant) == "" {
			claimant = notAvailable
		}
		out = append(out, map[string]string{
			"Item":         row.Item.Item,
			"DateFound":    row.DisplayDate,
			"Location":     row.Location,
			"Description":  row.Description,
			"Category":     row.Category,
			"Status":       string(row.Action),
			"ClaimantName": claimant,
			"ClaimedDate":  ISODate(row.ClaimedDate, loc, notAvailable),
		})
	}
	return export.Dataset{
		Title:   ReportSheetName,
		Sheet:   ReportSheetName,
		Headers: ReportHeaders,
		Rows:    out,
	}
}

// Render produces the report in memory. A failure is logged and surfaces as EXPORT_FAILED.
func (s *ExportService) Render(format models.ReportFormat, rows []models.DisplayItem) (*RenderedReport, error) {
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported report format %q", format))
	}
	payload, err := renderer.Render(BuildReportDataset(rows, s.cfg.Location))
	s.metrics.RecordReport(format, err)
	if err != nil {
		s.logger.Error("report render failed", zap.String("format", string(format)), zap.Int("rows", len(rows)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrExportFailed.Code, appErrors.ErrExportFailed.Status, appErrors.ErrExportFailed.Message)
	}
	return &RenderedReport{
		Filename:    ReportFilename(format),
		ContentType: renderer.ContentType(),
		Data:        payload,
		RowCount:    len(rows),
	}, nil
}

// Store renders and persists a report for a job, then signs a download link.
// Nothing is written unless rendering succeeded.
func (s *ExportService) Store(jobID string, format models.ReportFormat, rows []models.DisplayItem) (*ExportResult, error) {
	if s.storage == nil || s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrUnavailable, "report storage is not configured")
	}
	report, err := s.Render(format, rows)
	if err != nil {
		return nil, err
	}
	relPath, err := s.storage.Save(path.Join(jobID, report.Filename), report.Data)
	if err != nil {
		return nil, fmt.Errorf("store report %s: %w", jobID, err)
	}
	token, expiresAt, err := s.signer.Generate(jobID, relPath)
	if err != nil {
		return nil, fmt.Errorf("sign report %s: %w", jobID, err)
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api"
	}
	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/export/%s", prefix, token),
		Format:       format,
		RowCount:     report.RowCount,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (storage.SignedToken, error) {
	if s.signer == nil {
		return storage.SignedToken{}, storage.ErrTokenInvalid
	}
	return s.signer.Parse(token, allowExpired)
}

// ContentType returns the MIME type for a format.
func (s *ExportService) ContentType(format models.ReportFormat) string {
	if r, ok := s.renderers[format]; ok {
		return r.ContentType()
	}
	return "application/octet-stream"
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

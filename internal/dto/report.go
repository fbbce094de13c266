package dto

import "github.com/noah-isme/findnest-api/internal/models"

// ReportRequest captures the POST /reports payload.
type ReportRequest struct {
	Format models.ReportFormat `json:"format" validate:"required,oneof=xlsx csv pdf"`
	Filter FilterParams        `json:"filter"`
}

// ReportJobResponse is returned after enqueueing a report.
type ReportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ReportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ReportStatusResponse exposes job progress metadata.
type ReportStatusResponse struct {
	ID        string              `json:"id"`
	Format    models.ReportFormat `json:"format"`
	Status    models.ReportStatus `json:"status"`
	Progress  int                 `json:"progress"`
	RowCount  int                 `json:"rowCount"`
	ResultURL *string             `json:"resultUrl,omitempty"`
	Error     *string             `json:"error,omitempty"`
}

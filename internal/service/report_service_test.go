package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/findnest-api/internal/dto"
	"github.com/noah-isme/findnest-api/internal/models"
	"github.com/noah-isme/findnest-api/internal/repository"
	appErrors "github.com/noah-isme/findnest-api/pkg/errors"
	"github.com/noah-isme/findnest-api/pkg/jobs"
)

type reportRepoStub struct {
	mu   sync.Mutex
	jobs map[string]*models.ReportJob
}

func newReportRepoStub() *reportRepoStub {
	return &reportRepoStub{jobs: map[string]*models.ReportJob{}}
}

func (r *reportRepoStub) Create(_ context.Context, job *models.ReportJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	copied := *job
	r.jobs[job.ID] = &copied
	return nil
}

func (r *reportRepoStub) GetByID(_ context.Context, id string) (*models.ReportJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, appErrors.ErrNotFound
	}
	copied := *job
	return &copied, nil
}

func (r *reportRepoStub) Update(_ context.Context, id string, params repository.UpdateReportJobParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return errors.New("not found")
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.Progress != nil {
		job.Progress = *params.Progress
	}
	if params.RowCount != nil {
		job.RowCount = *params.RowCount
	}
	if params.ResultURL != nil {
		url := *params.ResultURL
		job.ResultURL = &url
	}
	if params.ErrorMessage != nil {
		msg := *params.ErrorMessage
		job.ErrorMessage = &msg
	}
	if params.FinishedAt != nil {
		job.FinishedAt = params.FinishedAt
	}
	return nil
}

func (r *reportRepoStub) ListPending(context.Context, int) ([]models.ReportJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var pending []models.ReportJob
	for _, job := range r.jobs {
		if job.Status == models.ReportStatusQueued || job.Status == models.ReportStatusProcessing {
			pending = append(pending, *job)
		}
	}
	return pending, nil
}

func (r *reportRepoStub) ListFinishedBefore(_ context.Context, cutoff time.Time, _ int) ([]models.ReportJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ReportJob
	for _, job := range r.jobs {
		if job.Status == models.ReportStatusFinished && job.FinishedAt != nil && job.FinishedAt.Before(cutoff) {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (r *reportRepoStub) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobs, id)
	return nil
}

type queueStub struct {
	jobs []jobs.Job
	err  error
}

func (q *queueStub) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

type aggregatorStub struct {
	rows []models.DisplayItem
	err  error
	seen models.FilterConfig
}

func (a *aggregatorStub) Aggregate(_ context.Context, filter models.FilterConfig) (models.Aggregation, error) {
	a.seen = filter
	if a.err != nil {
		return models.Aggregation{}, a.err
	}
	return models.Aggregation{Rows: a.rows}, nil
}

func TestReportLifecycle(t *testing.T) {
	repo := newReportRepoStub()
	queue := &queueStub{}
	exporter, _ := newExportServiceForTest(t)
	svc := NewReportService(repo, queue, exporter, nil, nil, ReportServiceConfig{ResultTTL: time.Hour})
	agg := &aggregatorStub{rows: exportRows()}
	worker := NewReportWorker(repo, agg, exporter, nil)

	created, err := svc.CreateJob(context.Background(), dto.ReportRequest{
		Format: models.ReportFormatXLSX,
		Filter: dto.FilterParams{Action: []string{"Found"}, Name: "wallet"},
	}, models.Principal{ID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusQueued, created.Status)
	require.Len(t, queue.jobs, 1)

	require.NoError(t, worker.Handle(context.Background(), queue.jobs[0]))
	assert.Equal(t, "wallet", agg.seen.Name)
	assert.Equal(t, []models.ItemAction{models.ActionFound}, agg.seen.Actions)

	status, err := svc.GetStatus(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusFinished, status.Status)
	assert.Equal(t, 100, status.Progress)
	assert.Equal(t, 2, status.RowCount)
	require.NotNil(t, status.ResultURL)

	download, err := svc.ResolveDownload(context.Background(), extractToken(*status.ResultURL))
	require.NoError(t, err)
	defer download.File.Close()
	assert.Equal(t, "found_items_report.xlsx", download.Filename)
	body, err := io.ReadAll(download.File)
	require.NoError(t, err)
	assert.NotEmpty(t, body)
}

func TestReportCreateValidation(t *testing.T) {
	exporter, _ := newExportServiceForTest(t)
	svc := NewReportService(newReportRepoStub(), &queueStub{}, exporter, nil, nil, ReportServiceConfig{})

	_, err := svc.CreateJob(context.Background(), dto.ReportRequest{Format: "docx"}, models.Principal{ID: "u1"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.CreateJob(context.Background(), dto.ReportRequest{Format: models.ReportFormatCSV, Filter: dto.FilterParams{Start: "yesterday"}}, models.Principal{ID: "u1"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestReportCreateQueueFullMarksFailed(t *testing.T) {
	repo := newReportRepoStub()
	exporter, _ := newExportServiceForTest(t)
	svc := NewReportService(repo, &queueStub{err: jobs.ErrQueueFull}, exporter, nil, nil, ReportServiceConfig{})

	_, err := svc.CreateJob(context.Background(), dto.ReportRequest{Format: models.ReportFormatCSV}, models.Principal{ID: "u1"})
	require.ErrorIs(t, err, appErrors.ErrUnavailable)
	require.Len(t, repo.jobs, 1)
	for _, job := range repo.jobs {
		assert.Equal(t, models.ReportStatusFailed, job.Status)
	}
}

func TestReportWorkerRenderFailureIsPermanent(t *testing.T) {
	repo := newReportRepoStub()
	exporter, _ := newExportServiceForTest(t)
	exporter.WithRenderer(models.ReportFormatXLSX, failingRenderer{})
	svc := NewReportService(repo, &queueStub{}, exporter, nil, nil, ReportServiceConfig{})
	worker := NewReportWorker(repo, &aggregatorStub{rows: exportRows()}, exporter, nil)

	job := &models.ReportJob{Params: models.ReportJobParams{Format: models.ReportFormatXLSX}, CreatedBy: "u1"}
	require.NoError(t, repo.Create(context.Background(), job))

	err := worker.Handle(context.Background(), jobs.Job{ID: job.ID})
	require.Error(t, err)
	assert.True(t, jobs.IsPermanent(err))

	svc.MarkExhausted(context.Background(), jobs.Job{ID: job.ID}, err)
	status, err := svc.GetStatus(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusFailed, status.Status)
	require.NotNil(t, status.Error)
	assert.Nil(t, status.ResultURL)
}

func TestReportWorkerBackendFailureIsRetryable(t *testing.T) {
	repo := newReportRepoStub()
	exporter, _ := newExportServiceForTest(t)
	worker := NewReportWorker(repo, &aggregatorStub{err: appErrors.ErrUpstream}, exporter, nil)

	job := &models.ReportJob{Params: models.ReportJobParams{Format: models.ReportFormatCSV}, CreatedBy: "u1"}
	require.NoError(t, repo.Create(context.Background(), job))

	err := worker.Handle(context.Background(), jobs.Job{ID: job.ID})
	require.Error(t, err)
	assert.False(t, jobs.IsPermanent(err))
}

func TestReportRecoverAndCleanup(t *testing.T) {
	repo := newReportRepoStub()
	queue := &queueStub{}
	exporter, _ := newExportServiceForTest(t)
	svc := NewReportService(repo, queue, exporter, nil, nil, ReportServiceConfig{ResultTTL: time.Minute})

	pending := &models.ReportJob{Status: models.ReportStatusProcessing, Params: models.ReportJobParams{Format: models.ReportFormatCSV}}
	require.NoError(t, repo.Create(context.Background(), pending))
	svc.RecoverPendingJobs(context.Background())
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, pending.ID, queue.jobs[0].ID)

	result, err := exporter.Store("old-job", models.ReportFormatCSV, exportRows())
	require.NoError(t, err)
	finishedAt := time.Now().Add(-time.Hour)
	old := &models.ReportJob{ID: "old-job", Status: models.ReportStatusFinished, ResultURL: &result.URL, FinishedAt: &finishedAt}
	require.NoError(t, repo.Create(context.Background(), old))

	svc.CleanupExpired(context.Background())

	_, err = repo.GetByID(context.Background(), "old-job")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	_, err = exporter.Open(result.RelativePath)
	assert.Error(t, err)
}

func TestResolveDownloadRejectsBadToken(t *testing.T) {
	exporter, _ := newExportServiceForTest(t)
	svc := NewReportService(newReportRepoStub(), &queueStub{}, exporter, nil, nil, ReportServiceConfig{})

	_, err := svc.ResolveDownload(context.Background(), "garbage")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

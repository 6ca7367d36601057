package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/onlineworkerske/backend/internal/events"
	"github.com/onlineworkerske/backend/internal/models"
	"github.com/onlineworkerske/backend/internal/repositories"
	"go.uber.org/zap"
)

type JobService struct {
	jobRepo   *repositories.JobRepo
	userRepo  *repositories.UserRepo
	auditRepo *repositories.AuditRepo
	publisher events.Publisher
	log       *zap.Logger
}

func NewJobService(
	jobRepo *repositories.JobRepo,
	userRepo *repositories.UserRepo,
	auditRepo *repositories.AuditRepo,
	publisher events.Publisher,
	log *zap.Logger,
) *JobService {
	return &JobService{
		jobRepo:   jobRepo,
		userRepo:  userRepo,
		auditRepo: auditRepo,
		publisher: publisher,
		log:       log,
	}
}

type PostJobInput struct {
	Title          string
	Description    *string
	SkillsRequired []string
	BudgetKES      float64
}

func (s *JobService) PostJob(ctx context.Context, employerID uuid.UUID, input PostJobInput) (*models.Job, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if input.BudgetKES <= 0 {
		return nil, fmt.Errorf("%w: budget_kes must be positive", ErrValidation)
	}

	job := &models.Job{
		EmployerID:     employerID,
		Title:          input.Title,
		Description:    input.Description,
		SkillsRequired: input.SkillsRequired,
		BudgetKES:      input.BudgetKES,
		Status:         models.JobStatusOpen,
	}
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &employerID,
		ActorType:   "user",
		Action:      "job_posted",
		EntityType:  "job",
		EntityID:    &job.ID,
		Meta:        map[string]any{"budget_kes": input.BudgetKES},
	})

	return job, nil
}

func (s *JobService) GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: job", ErrNotFound)
	}
	return job, nil
}

func (s *JobService) ListJobs(ctx context.Context, f repositories.JobFilter) ([]models.Job, error) {
	return s.jobRepo.List(ctx, f)
}

func (s *JobService) Apply(ctx context.Context, jobID, workerID uuid.UUID, coverLetter *string, bidKES *float64) (*models.JobApplication, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("%w: job", ErrNotFound)
	}
	if job.Status != models.JobStatusOpen {
		return nil, fmt.Errorf("%w: job is not open for applications", ErrInvalidState)
	}
	if job.EmployerID == workerID {
		return nil, fmt.Errorf("%w: cannot apply to your own job", ErrForbidden)
	}

	app := &models.JobApplication{
		JobID:       jobID,
		WorkerID:    workerID,
		CoverLetter: coverLetter,
		BidKES:      bidKES,
		Status:      models.ApplicationStatusPending,
	}
	if err := s.jobRepo.CreateApplication(ctx, app); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &workerID,
		ActorType:   "user",
		Action:      "job_application_submitted",
		EntityType:  "job",
		EntityID:    &jobID,
		Meta:        map[string]any{"worker_id": workerID.String()},
	})

	return app, nil
}

func (s *JobService) GetApplications(ctx context.Context, jobID, actorID uuid.UUID, actorRole string) ([]models.JobApplication, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("%w: job", ErrNotFound)
	}
	if job.EmployerID != actorID && actorRole != models.RoleAdmin {
		return nil, fmt.Errorf("%w: only the employer can view applications", ErrForbidden)
	}
	return s.jobRepo.GetApplications(ctx, jobID)
}

// AssignWorker accepts an application and moves the job to assigned. Other
// pending applications stay pending; they are simply never accepted.
func (s *JobService) AssignWorker(ctx context.Context, jobID, applicationID, actorID uuid.UUID, actorRole string) (*models.Job, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("%w: job", ErrNotFound)
	}
	if job.EmployerID != actorID && actorRole != models.RoleAdmin {
		return nil, fmt.Errorf("%w: only the employer can assign a worker", ErrForbidden)
	}
	if job.Status != models.JobStatusOpen {
		return nil, fmt.Errorf("%w: job is not open", ErrInvalidState)
	}

	apps, err := s.jobRepo.GetApplications(ctx, jobID)
	if err != nil {
		return nil, err
	}
	var app *models.JobApplication
	for i := range apps {
		if apps[i].ID == applicationID {
			app = &apps[i]
			break
		}
	}
	if app == nil {
		return nil, fmt.Errorf("%w: application", ErrNotFound)
	}

	if err := s.jobRepo.Assign(ctx, jobID, app.WorkerID); err != nil {
		return nil, err
	}
	if err := s.jobRepo.UpdateApplicationStatus(ctx, app.ID, models.ApplicationStatusAccepted); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &actorID,
		ActorType:   "user",
		Action:      "job_worker_assigned",
		EntityType:  "job",
		EntityID:    &jobID,
		Meta:        map[string]any{"worker_id": app.WorkerID.String()},
	})
	_ = s.publisher.Publish(ctx, events.StreamJobs, events.Event{
		Type: events.EventJobStatusChanged,
		Payload: map[string]any{
			"job_id":     jobID.String(),
			"old_status": models.JobStatusOpen,
			"new_status": models.JobStatusAssigned,
		},
	})

	return s.jobRepo.GetByID(ctx, jobID)
}

func (s *JobService) CancelJob(ctx context.Context, jobID, actorID uuid.UUID, actorRole string) error {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("%w: job", ErrNotFound)
	}
	if job.EmployerID != actorID && actorRole != models.RoleAdmin {
		return fmt.Errorf("%w: only the employer can cancel a job", ErrForbidden)
	}
	if job.Status == models.JobStatusCompleted || job.Status == models.JobStatusCancelled {
		return fmt.Errorf("%w: job already %s", ErrInvalidState, job.Status)
	}

	if err := s.jobRepo.UpdateStatus(ctx, jobID, models.JobStatusCancelled); err != nil {
		return err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &actorID,
		ActorType:   "user",
		Action:      "job_cancelled",
		EntityType:  "job",
		EntityID:    &jobID,
	})
	_ = s.publisher.Publish(ctx, events.StreamJobs, events.Event{
		Type: events.EventJobStatusChanged,
		Payload: map[string]any{
			"job_id":     jobID.String(),
			"old_status": job.Status,
			"new_status": models.JobStatusCancelled,
		},
	})
	return nil
}

func (s *JobService) GetJobEvents(ctx context.Context, jobID uuid.UUID) ([]models.AuditLog, error) {
	return s.auditRepo.GetByEntity(ctx, "job", jobID, 100, 0)
}

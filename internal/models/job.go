package models

import (
	"time"

	"github.com/google/uuid"
)

// Job statuses
const (
	JobStatusOpen      = "open"
	JobStatusAssigned  = "assigned"
	JobStatusCompleted = "completed"
	JobStatusCancelled = "cancelled"
)

type Job struct {
	ID               uuid.UUID  `json:"id"`
	EmployerID       uuid.UUID  `json:"employer_id"`
	Title            string     `json:"title"`
	Description      *string    `json:"description,omitempty"`
	SkillsRequired   []string   `json:"skills_required"`
	BudgetKES        float64    `json:"budget_kes"`
	Status           string     `json:"status"`
	AssignedWorkerID *uuid.UUID `json:"assigned_worker_id,omitempty"`
	VerifiedListing  bool       `json:"verified_listing"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Application statuses
const (
	ApplicationStatusPending  = "pending"
	ApplicationStatusAccepted = "accepted"
	ApplicationStatusDeclined = "declined"
)

type JobApplication struct {
	ID          uuid.UUID `json:"id"`
	JobID       uuid.UUID `json:"job_id"`
	WorkerID    uuid.UUID `json:"worker_id"`
	CoverLetter *string   `json:"cover_letter,omitempty"`
	BidKES      *float64  `json:"bid_kes,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

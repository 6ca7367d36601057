package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/onlineworkerske/backend/internal/http/dto"
	"github.com/onlineworkerske/backend/internal/middleware"
	"github.com/onlineworkerske/backend/internal/repositories"
	"github.com/onlineworkerske/backend/internal/services"
	"go.uber.org/zap"
)

type JobHandler struct {
	jobService *services.JobService
	log        *zap.Logger
}

func NewJobHandler(jobService *services.JobService, log *zap.Logger) *JobHandler {
	return &JobHandler{jobService: jobService, log: log}
}

func (h *JobHandler) PostJob(c *fiber.Ctx) error {
	var req dto.PostJobRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	employerID := middleware.GetUserID(c)
	job, err := h.jobService.PostJob(c.Context(), employerID, services.PostJobInput{
		Title:          req.Title,
		Description:    req.Description,
		SkillsRequired: req.SkillsRequired,
		BudgetKES:      req.BudgetKES,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: job})
}

func (h *JobHandler) GetJob(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid job id")
	}

	job, err := h.jobService.GetJob(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: job})
}

func (h *JobHandler) ListJobs(c *fiber.Ctx) error {
	filter := repositories.JobFilter{Limit: 20}

	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}
	if v := c.Query("status"); v != "" {
		filter.Status = &v
	}
	if v := c.Query("skill"); v != "" {
		filter.Skill = &v
	}
	if v := c.Query("employerId"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			filter.EmployerID = &id
		}
	}
	if c.Query("mine") == "true" {
		userID := middleware.GetUserID(c)
		switch middleware.GetUserRole(c) {
		case "worker":
			filter.WorkerID = &userID
		default:
			filter.EmployerID = &userID
		}
	}

	jobs, err := h.jobService.ListJobs(c.Context(), filter)
	if err != nil {
		h.log.Error("list jobs failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Message: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: jobs})
}

func (h *JobHandler) Apply(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid job id")
	}

	var req dto.ApplyJobRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	workerID := middleware.GetUserID(c)
	app, err := h.jobService.Apply(c.Context(), jobID, workerID, req.CoverLetter, req.BidKES)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: app})
}

func (h *JobHandler) GetApplications(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid job id")
	}

	apps, err := h.jobService.GetApplications(c.Context(), jobID, middleware.GetUserID(c), middleware.GetUserRole(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: apps})
}

func (h *JobHandler) AssignWorker(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid job id")
	}

	var req dto.AssignWorkerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	appID, err := uuid.Parse(req.ApplicationID)
	if err != nil {
		return badRequest(c, "invalid application_id")
	}

	job, err := h.jobService.AssignWorker(c.Context(), jobID, appID, middleware.GetUserID(c), middleware.GetUserRole(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: job})
}

func (h *JobHandler) CancelJob(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid job id")
	}

	if err := h.jobService.CancelJob(c.Context(), jobID, middleware.GetUserID(c), middleware.GetUserRole(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *JobHandler) GetJobEvents(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid job id")
	}

	logs, err := h.jobService.GetJobEvents(c.Context(), jobID)
	if err != nil {
		h.log.Error("job events failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Message: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: logs})
}

package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/onlineworkerske/backend/internal/http/dto"
	"github.com/onlineworkerske/backend/internal/middleware"
	"github.com/onlineworkerske/backend/internal/services"
	"go.uber.org/zap"
)

type VerificationHandler struct {
	verificationService *services.VerificationService
	log                 *zap.Logger
}

func NewVerificationHandler(verificationService *services.VerificationService, log *zap.Logger) *VerificationHandler {
	return &VerificationHandler{verificationService: verificationService, log: log}
}

func (h *VerificationHandler) Submit(c *fiber.Ctx) error {
	var req dto.SubmitVerificationRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	userID := middleware.GetUserID(c)
	request, err := h.verificationService.Submit(c.Context(), userID, req.DocumentType, req.DocumentURL)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: request})
}

func (h *VerificationHandler) ListPending(c *fiber.Ctx) error {
	limit, offset := 20, 0
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			offset = n
		}
	}

	requests, err := h.verificationService.ListPending(c.Context(), limit, offset)
	if err != nil {
		h.log.Error("list pending verifications failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Message: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: requests})
}

func (h *VerificationHandler) Review(c *fiber.Ctx) error {
	requestID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid request id")
	}

	var req dto.ReviewDecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	request, err := h.verificationService.Review(c.Context(), middleware.GetUserID(c), requestID, req.Approve, req.Note)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: request})
}

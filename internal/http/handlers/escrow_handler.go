package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/onlineworkerske/backend/internal/http/dto"
	"github.com/onlineworkerske/backend/internal/middleware"
	"github.com/onlineworkerske/backend/internal/services"
	"go.uber.org/zap"
)

type EscrowHandler struct {
	escrowService *services.EscrowService
	log           *zap.Logger
}

func NewEscrowHandler(escrowService *services.EscrowService, log *zap.Logger) *EscrowHandler {
	return &EscrowHandler{escrowService: escrowService, log: log}
}

func (h *EscrowHandler) Initiate(c *fiber.Ctx) error {
	var req dto.EscrowInitiateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		return badRequest(c, "invalid jobId")
	}

	escrow, err := h.escrowService.Initiate(c.Context(), middleware.GetUserID(c), middleware.GetUserRole(c), jobID, req.Amount, req.Currency)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(escrow)
}

func (h *EscrowHandler) GetEscrow(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid escrow id")
	}

	escrow, err := h.escrowService.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(escrow)
}

func (h *EscrowHandler) Release(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid escrow id")
	}

	result, err := h.escrowService.Release(c.Context(), id, middleware.GetUserID(c), middleware.GetUserRole(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ReleaseResponse{
		Escrow:       result.Escrow,
		PlatformFee:  result.PlatformFee,
		WorkerAmount: result.WorkerAmount,
	})
}

// Webhook is the public escrow funding confirmation. Like the STK callback
// it always responds 200; failures are logged only.
func (h *EscrowHandler) Webhook(c *fiber.Ctx) error {
	var req dto.EscrowWebhookRequest
	if err := c.BodyParser(&req); err != nil {
		h.log.Warn("unparseable escrow webhook", zap.Error(err))
		return c.JSON(dto.MessageResponse{Message: "webhook received"})
	}

	escrowID, err := uuid.Parse(req.EscrowID)
	if err != nil {
		h.log.Warn("escrow webhook with invalid escrowId", zap.String("escrow_id", req.EscrowID))
		return c.JSON(dto.MessageResponse{Message: "webhook received"})
	}

	if err := h.escrowService.ProviderWebhook(c.Context(), escrowID, req.ExternalTxID, req.Status); err != nil {
		h.log.Error("escrow webhook processing failed",
			zap.String("escrow_id", req.EscrowID),
			zap.Error(err),
		)
	}
	return c.JSON(dto.MessageResponse{Message: "webhook received"})
}

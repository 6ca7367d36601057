package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/onlineworkerske/backend/internal/http/dto"
	"github.com/onlineworkerske/backend/internal/models"
	"github.com/onlineworkerske/backend/internal/repositories"
	"go.uber.org/zap"
)

type AdminHandler struct {
	auditRepo   *repositories.AuditRepo
	paymentRepo *repositories.PaymentRepo
	log         *zap.Logger
}

func NewAdminHandler(auditRepo *repositories.AuditRepo, paymentRepo *repositories.PaymentRepo, log *zap.Logger) *AdminHandler {
	return &AdminHandler{auditRepo: auditRepo, paymentRepo: paymentRepo, log: log}
}

func (h *AdminHandler) ListAuditLogs(c *fiber.Ctx) error {
	limit, offset := 50, 0
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

	if entityType := c.Query("entityType"); entityType != "" {
		entityID, err := uuid.Parse(c.Query("entityId"))
		if err != nil {
			return badRequest(c, "entityId is required with entityType")
		}
		logs, err := h.auditRepo.GetByEntity(c.Context(), entityType, entityID, limit, offset)
		if err != nil {
			h.log.Error("audit listing failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Message: "internal error"})
		}
		return c.JSON(dto.SuccessResponse{OK: true, Data: logs})
	}

	logs, err := h.auditRepo.ListRecent(c.Context(), limit, offset)
	if err != nil {
		h.log.Error("audit listing failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Message: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: logs})
}

// ListPendingPayouts lets the review queue be fetched without knowing user ids.
func (h *AdminHandler) ListPendingPayouts(c *fiber.Ctx) error {
	payoutType := models.PaymentTypePayout
	pending := models.ReviewStatusPending
	payments, err := h.paymentRepo.List(c.Context(), repositories.PaymentFilter{
		Type:         &payoutType,
		ReviewStatus: &pending,
		Limit:        100,
	})
	if err != nil {
		h.log.Error("pending payout listing failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Message: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: payments})
}

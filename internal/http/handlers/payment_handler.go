package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/onlineworkerske/backend/internal/http/dto"
	"github.com/onlineworkerske/backend/internal/middleware"
	"github.com/onlineworkerske/backend/internal/models"
	"github.com/onlineworkerske/backend/internal/repositories"
	"github.com/onlineworkerske/backend/internal/services"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
	log            *zap.Logger
}

func NewPaymentHandler(paymentService *services.PaymentService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, log: log}
}

func (h *PaymentHandler) Topup(c *fiber.Ctx) error {
	var req dto.TopupRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	userID := middleware.GetUserID(c)
	payment, err := h.paymentService.Topup(c.Context(), userID, req.Amount, req.PhoneNumber)
	if err != nil {
		return respondError(c, err)
	}

	checkoutID := ""
	if payment.CheckoutRequestID != nil {
		checkoutID = *payment.CheckoutRequestID
	}
	return c.JSON(dto.TopupResponse{
		Success:           true,
		CheckoutRequestID: checkoutID,
		PaymentID:         payment.ID.String(),
	})
}

func (h *PaymentHandler) PayJob(c *fiber.Ctx) error {
	var req dto.PayJobRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		return badRequest(c, "invalid jobId")
	}

	userID := middleware.GetUserID(c)
	result, err := h.paymentService.PayForJob(c.Context(), userID, jobID, req.PhoneNumber, req.Amount)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.PayJobResponse{
		Success: true,
		Payment: result.Payment,
		Escrow:  result.Escrow,
		Mpesa:   dto.MpesaRef{CheckoutRequestID: result.STK.CheckoutRequestID},
	})
}

func (h *PaymentHandler) VerifyJob(c *fiber.Ctx) error {
	var req dto.VerifyJobRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		return badRequest(c, "invalid jobId")
	}

	userID := middleware.GetUserID(c)
	payment, stk, err := h.paymentService.VerifyJobFee(c.Context(), userID, middleware.GetUserRole(c), jobID, req.PhoneNumber, req.Amount)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.VerifyJobResponse{
		Success: true,
		Payment: payment,
		Mpesa:   dto.MpesaRef{CheckoutRequestID: stk.CheckoutRequestID},
	})
}

// MpesaCallback is the public STK webhook. It always responds 200 regardless
// of internal outcome so the provider does not retry-storm a handler that is
// already failing; failures are logged server-side.
func (h *PaymentHandler) MpesaCallback(c *fiber.Ctx) error {
	raw := make([]byte, len(c.Body()))
	copy(raw, c.Body())

	if err := h.paymentService.HandleSTKCallback(c.Context(), raw); err != nil {
		h.log.Error("stk callback processing failed", zap.Error(err))
	}
	return c.JSON(dto.MessageResponse{Message: "callback received"})
}

func (h *PaymentHandler) QuerySTK(c *fiber.Ctx) error {
	checkoutRequestID := c.Params("checkoutRequestId")
	if checkoutRequestID == "" {
		return badRequest(c, "checkoutRequestId is required")
	}

	resp, err := h.paymentService.QuerySTK(c.Context(), checkoutRequestID)
	if err != nil {
		return respondError(c, err)
	}
	// Raw provider payload, passed through.
	return c.JSON(resp)
}

func (h *PaymentHandler) RequestPayout(c *fiber.Ctx) error {
	var req dto.RequestPayoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	userID := middleware.GetUserID(c)
	payout, err := h.paymentService.RequestPayout(c.Context(), userID, req.Amount, req.Method, req.AccountInfo)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.PayoutResponse{Success: true, Payout: payout})
}

func (h *PaymentHandler) ListPayments(c *fiber.Ctx) error {
	filter := repositories.PaymentFilter{Limit: 20}

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
	if v := c.Query("type"); v != "" {
		filter.Type = &v
	}
	if v := c.Query("status"); v != "" {
		filter.GatewayStatus = &v
	}

	// Admins may list any user's payments via the userId query; everyone
	// else sees their own.
	userID := middleware.GetUserID(c)
	if v := c.Query("userId"); v != "" && middleware.GetUserRole(c) == models.RoleAdmin {
		if id, err := uuid.Parse(v); err == nil {
			userID = id
		}
	}
	filter.UserID = &userID

	payments, err := h.paymentService.ListPayments(c.Context(), filter)
	if err != nil {
		h.log.Error("list payments failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Message: "internal error"})
	}
	if payments == nil {
		payments = []models.Payment{}
	}
	return c.JSON(dto.PaymentsListResponse{Payments: payments})
}

func (h *PaymentHandler) GetBalance(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	result, err := h.paymentService.GetBalance(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.BalanceResponse{
		Wallet:         result.Wallet,
		HistoryBalance: result.HistoryBalance,
		Reconciled:     result.Reconciled,
	})
}

// ReviewPayout is the admin decision endpoint for pending payouts.
func (h *PaymentHandler) ReviewPayout(c *fiber.Ctx) error {
	paymentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid payment id")
	}

	var req dto.ReviewDecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	note := ""
	if req.Note != nil {
		note = *req.Note
	}
	payment, err := h.paymentService.ReviewPayout(c.Context(), middleware.GetUserID(c), paymentID, req.Approve, note)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: payment})
}

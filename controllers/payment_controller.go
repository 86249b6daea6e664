package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/FaizGusion00/fazztrack-backend/models"
	"github.com/FaizGusion00/fazztrack-backend/services"
)

// CreatePaymentRequest represents the request body for recording a payment
type CreatePaymentRequest struct {
	OrderID       uint                 `json:"order_id" binding:"required"`
	Type          models.PaymentType   `json:"type"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	Amount        decimal.Decimal      `json:"amount"`
	PaymentDate   string               `json:"payment_date" binding:"omitempty,datetime=2006-01-02"`
	Remarks       *string              `json:"remarks"`
	ReceiptFileID *uint                `json:"receipt_file_id"`
}

// UpdatePaymentRequest represents the request body for editing an unapproved payment
type UpdatePaymentRequest struct {
	Type          *models.PaymentType   `json:"type"`
	PaymentMethod *models.PaymentMethod `json:"payment_method"`
	Amount        *decimal.Decimal      `json:"amount"`
	PaymentDate   *string               `json:"payment_date" binding:"omitempty,datetime=2006-01-02"`
	Remarks       *string               `json:"remarks"`
	ReceiptFileID *uint                 `json:"receipt_file_id"`
}

// CreatePayment handles POST /api/v1/payments
func CreatePayment(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}

	var req CreatePaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	payment, err := services.GetRegistry().Payments.Record(c.Request.Context(), user, req.OrderID, PaymentRequest{
		Type:          req.Type,
		PaymentMethod: req.PaymentMethod,
		Amount:        req.Amount,
		PaymentDate:   req.PaymentDate,
		Remarks:       req.Remarks,
		ReceiptFileID: req.ReceiptFileID,
	}.input())
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusCreated, payment)
}

// GetPayment handles GET /api/v1/payments/:id
func GetPayment(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	payment, err := services.GetRegistry().Payments.Get(c.Request.Context(), user, id)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, payment)
}

// UpdatePayment handles PUT /api/v1/payments/:id
func UpdatePayment(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req UpdatePaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	payment, err := services.GetRegistry().Payments.Update(c.Request.Context(), user, id, services.PaymentUpdate{
		Type:          req.Type,
		PaymentMethod: req.PaymentMethod,
		Amount:        req.Amount,
		PaymentDate:   parseOptionalDate(req.PaymentDate),
		Remarks:       req.Remarks,
		ReceiptFileID: req.ReceiptFileID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, payment)
}

// ApprovePayment handles POST /api/v1/payments/:id/approve
func ApprovePayment(c *gin.Context) {
	paymentAction(c, services.GetRegistry().Payments.Approve)
}

// RejectPayment handles POST /api/v1/payments/:id/reject
func RejectPayment(c *gin.Context) {
	paymentAction(c, services.GetRegistry().Payments.Reject)
}

// DeletePayment handles DELETE /api/v1/payments/:id
func DeletePayment(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := services.GetRegistry().Payments.Delete(c.Request.Context(), user, id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type paymentTransition func(ctx context.Context, actor *models.User, id uint) (*models.Payment, error)

func paymentAction(c *gin.Context, transition paymentTransition) {
	user, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	payment, err := transition(c.Request.Context(), user, id)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, payment)
}

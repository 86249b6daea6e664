package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/FaizGusion00/fazztrack-backend/models"
)

// PaymentLedger records payments against orders and derives what is still owed
type PaymentLedger struct {
	core
}

// PaymentInput is a new payment
type PaymentInput struct {
	Type          models.PaymentType
	PaymentMethod models.PaymentMethod
	Amount        decimal.Decimal
	PaymentDate   time.Time
	Remarks       *string
	ReceiptFileID *uint
}

// PaymentUpdate carries the fields to change; nil fields are left alone
type PaymentUpdate struct {
	Type          *models.PaymentType
	PaymentMethod *models.PaymentMethod
	Amount        *decimal.Decimal
	PaymentDate   *time.Time
	Remarks       *string
	ReceiptFileID *uint
}

// Financials are the money figures of an order
type Financials struct {
	TotalAmount decimal.Decimal `json:"total_amount"`
	TotalPaid   decimal.Decimal `json:"total_paid"`
	Balance     decimal.Decimal `json:"balance"`
}

// Totals computes order value, paid amount and balance.
// Only approved payments and legacy rows without a status count as paid.
func Totals(items []models.OrderItem, payments []models.Payment) Financials {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}

	paid := decimal.Zero
	for _, p := range payments {
		if p.CountsAsPaid() {
			paid = paid.Add(p.Amount)
		}
	}

	return Financials{
		TotalAmount: total,
		TotalPaid:   paid,
		Balance:     total.Sub(paid),
	}
}

func validatePayment(in PaymentInput, prefix string) []FieldError {
	var details []FieldError
	if !in.Type.Valid() {
		details = append(details, FieldError{Field: prefix + "type", Message: "must be one of deposit_design, deposit_production, balance_payment"})
	}
	if !in.PaymentMethod.Valid() {
		details = append(details, FieldError{Field: prefix + "payment_method", Message: "must be one of cash, bank_transfer, credit_card, debit_card, check, other"})
	}
	if in.Amount.IsNegative() {
		details = append(details, FieldError{Field: prefix + "amount", Message: "must be zero or greater"})
	}
	if in.PaymentDate.IsZero() {
		details = append(details, FieldError{Field: prefix + "payment_date", Message: "is required"})
	}
	return details
}

// checkReceipt verifies the referenced receipt file exists
func checkReceipt(tx *gorm.DB, id *uint, field string) error {
	if id == nil {
		return nil
	}
	var count int64
	if err := tx.Model(&models.FileAttachment{}).Where("id = ?", *id).Count(&count).Error; err != nil {
		return Unexpected("failed to check receipt file", err)
	}
	if count == 0 {
		return FieldInvalid(field, "receipt file does not exist")
	}
	return nil
}

// Record adds a pending payment to an order
func (l *PaymentLedger) Record(ctx context.Context, actor *models.User, orderID uint, in PaymentInput) (*models.Payment, error) {
	if err := l.authorize(actor, ResourcePayments, ActionCreate, nil); err != nil {
		return nil, err
	}
	if details := validatePayment(in, ""); len(details) > 0 {
		return nil, ValidationError("invalid payment", details...)
	}

	payment := &models.Payment{
		OrderID:       orderID,
		Type:          in.Type,
		PaymentMethod: in.PaymentMethod,
		Amount:        in.Amount,
		PaymentDate:   in.PaymentDate,
		Remarks:       in.Remarks,
		ReceiptFileID: in.ReceiptFileID,
		Status:        models.StatusPtr(models.PaymentStatusPending),
	}

	err := l.inTx(ctx, func(u *unit) error {
		if _, err := lockOrder(u.tx, orderID); err != nil {
			return err
		}
		if err := checkReceipt(u.tx, in.ReceiptFileID, "receipt_file_id"); err != nil {
			return err
		}
		if err := u.tx.Create(payment).Error; err != nil {
			return Unexpected("failed to record payment", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// Get returns a payment with its receipt
func (l *PaymentLedger) Get(ctx context.Context, actor *models.User, id uint) (*models.Payment, error) {
	if err := l.authorize(actor, ResourcePayments, ActionView, nil); err != nil {
		return nil, err
	}

	var payment models.Payment
	if err := l.db.WithContext(ctx).Preload("ReceiptFile").First(&payment, id).Error; err != nil {
		return nil, lookupError(err, "payment")
	}
	return &payment, nil
}

// Approve marks the payment approved. An approved design deposit approves a pending order.
func (l *PaymentLedger) Approve(ctx context.Context, actor *models.User, id uint) (*models.Payment, error) {
	if err := l.authorize(actor, ResourcePayments, ActionApprove, nil); err != nil {
		return nil, err
	}

	var payment *models.Payment
	err := l.inTx(ctx, func(u *unit) error {
		order, p, err := lockPayment(u.tx, id)
		if err != nil {
			return err
		}
		if p.IsApproved() {
			return PreconditionFailed("PAYMENT_ALREADY_APPROVED", "payment is already approved")
		}

		now := l.now()
		p.Status = models.StatusPtr(models.PaymentStatusApproved)
		p.ApprovedBy = &actor.ID
		p.ApprovedAt = &now
		if err := u.tx.Model(p).Select("status", "approved_by", "approved_at").Updates(p).Error; err != nil {
			return Unexpected("failed to approve payment", err)
		}

		if p.Type == models.PaymentDepositDesign {
			if err := l.lifecycle.ApproveIfPending(u, order, fmt.Sprintf("design deposit #%d approved", p.ID)); err != nil {
				return err
			}
		}
		payment = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// Reject marks a payment rejected. Approved payments cannot be rejected.
func (l *PaymentLedger) Reject(ctx context.Context, actor *models.User, id uint) (*models.Payment, error) {
	if err := l.authorize(actor, ResourcePayments, ActionReject, nil); err != nil {
		return nil, err
	}

	var payment *models.Payment
	err := l.inTx(ctx, func(u *unit) error {
		_, p, err := lockPayment(u.tx, id)
		if err != nil {
			return err
		}
		if p.IsApproved() {
			return PreconditionFailed("PAYMENT_APPROVED", "approved payments cannot be rejected")
		}

		p.Status = models.StatusPtr(models.PaymentStatusRejected)
		if err := u.tx.Model(p).Update("status", p.Status).Error; err != nil {
			return Unexpected("failed to reject payment", err)
		}
		payment = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// Update edits a payment that has not been approved
func (l *PaymentLedger) Update(ctx context.Context, actor *models.User, id uint, upd PaymentUpdate) (*models.Payment, error) {
	if err := l.authorize(actor, ResourcePayments, ActionUpdate, nil); err != nil {
		return nil, err
	}

	var payment *models.Payment
	err := l.inTx(ctx, func(u *unit) error {
		_, p, err := lockPayment(u.tx, id)
		if err != nil {
			return err
		}
		if p.IsApproved() {
			return PreconditionFailed("PAYMENT_APPROVED", "approved payments cannot be modified")
		}

		merged := PaymentInput{
			Type:          p.Type,
			PaymentMethod: p.PaymentMethod,
			Amount:        p.Amount,
			PaymentDate:   p.PaymentDate,
			Remarks:       p.Remarks,
			ReceiptFileID: p.ReceiptFileID,
		}
		if upd.Type != nil {
			merged.Type = *upd.Type
		}
		if upd.PaymentMethod != nil {
			merged.PaymentMethod = *upd.PaymentMethod
		}
		if upd.Amount != nil {
			merged.Amount = *upd.Amount
		}
		if upd.PaymentDate != nil {
			merged.PaymentDate = *upd.PaymentDate
		}
		if upd.Remarks != nil {
			merged.Remarks = upd.Remarks
		}
		if upd.ReceiptFileID != nil {
			merged.ReceiptFileID = upd.ReceiptFileID
		}
		if details := validatePayment(merged, ""); len(details) > 0 {
			return ValidationError("invalid payment", details...)
		}
		if err := checkReceipt(u.tx, upd.ReceiptFileID, "receipt_file_id"); err != nil {
			return err
		}

		p.Type = merged.Type
		p.PaymentMethod = merged.PaymentMethod
		p.Amount = merged.Amount
		p.PaymentDate = merged.PaymentDate
		p.Remarks = merged.Remarks
		p.ReceiptFileID = merged.ReceiptFileID
		if err := u.tx.Model(p).
			Select("type", "payment_method", "amount", "payment_date", "remarks", "receipt_file_id").
			Updates(p).Error; err != nil {
			return Unexpected("failed to update payment", err)
		}
		payment = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// Delete removes a payment that has not been approved
func (l *PaymentLedger) Delete(ctx context.Context, actor *models.User, id uint) error {
	if err := l.authorize(actor, ResourcePayments, ActionDelete, nil); err != nil {
		return err
	}

	return l.inTx(ctx, func(u *unit) error {
		_, p, err := lockPayment(u.tx, id)
		if err != nil {
			return err
		}
		if p.IsApproved() {
			return PreconditionFailed("PAYMENT_APPROVED", "approved payments cannot be deleted")
		}
		if err := u.tx.Delete(p).Error; err != nil {
			return Unexpected("failed to delete payment", err)
		}
		return nil
	})
}

// lockPayment locks the owning order, then reloads the payment under that lock
func lockPayment(tx *gorm.DB, id uint) (*models.Order, *models.Payment, error) {
	var p models.Payment
	if err := tx.Select("id", "order_id").First(&p, id).Error; err != nil {
		return nil, nil, lookupError(err, "payment")
	}
	order, err := lockOrder(tx, p.OrderID)
	if err != nil {
		return nil, nil, err
	}
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, id).Error; err != nil {
		return nil, nil, lookupError(err, "payment")
	}
	return order, &p, nil
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentType says which stage of the order a payment covers
type PaymentType string

const (
	PaymentDepositDesign     PaymentType = "deposit_design"
	PaymentDepositProduction PaymentType = "deposit_production"
	PaymentBalance           PaymentType = "balance_payment"
)

// Valid reports whether t is a known payment type
func (t PaymentType) Valid() bool {
	switch t {
	case PaymentDepositDesign, PaymentDepositProduction, PaymentBalance:
		return true
	}
	return false
}

// PaymentMethod is how the client paid
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCreditCard   PaymentMethod = "credit_card"
	PaymentMethodDebitCard    PaymentMethod = "debit_card"
	PaymentMethodCheck        PaymentMethod = "check"
	PaymentMethodOther        PaymentMethod = "other"
)

// Valid reports whether m is a known payment method
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCreditCard,
		PaymentMethodDebitCard, PaymentMethodCheck, PaymentMethodOther:
		return true
	}
	return false
}

// PaymentStatus tracks review of a recorded payment
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusApproved PaymentStatus = "approved"
	PaymentStatusRejected PaymentStatus = "rejected"
)

// Payment is money received against an order
type Payment struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	OrderID       uint            `gorm:"not null;index" json:"order_id"`
	Type          PaymentType     `gorm:"size:32;not null" json:"type"`
	PaymentMethod PaymentMethod   `gorm:"size:32;not null" json:"payment_method"`
	Amount        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	PaymentDate   time.Time       `gorm:"not null" json:"payment_date"`
	Remarks       *string         `gorm:"type:text" json:"remarks,omitempty"`
	ReceiptFileID *uint           `json:"receipt_file_id,omitempty"`
	ReceiptFile   *FileAttachment `gorm:"foreignKey:ReceiptFileID" json:"receipt_file,omitempty"`
	Status        *PaymentStatus  `gorm:"size:16" json:"status"` // nil on rows recorded before review existed
	ApprovedBy    *uint           `json:"approved_by,omitempty"`
	ApprovedAt    *time.Time      `json:"approved_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the Payment model
func (Payment) TableName() string {
	return "payments"
}

// IsApproved reports whether the payment has been approved
func (p Payment) IsApproved() bool {
	return p.Status != nil && *p.Status == PaymentStatusApproved
}

// CountsAsPaid reports whether the amount contributes to the order's paid total.
// Rows without a status predate payment review and are treated as settled.
func (p Payment) CountsAsPaid() bool {
	return p.Status == nil || *p.Status == PaymentStatusApproved
}

// StatusPtr returns a pointer to s, for assigning Payment.Status
func StatusPtr(s PaymentStatus) *PaymentStatus {
	return &s
}

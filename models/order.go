package models

import (
	"time"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusApproved       OrderStatus = "approved"
	OrderStatusInProgress     OrderStatus = "in_progress"
	OrderStatusQCPackaging    OrderStatus = "qc_packaging"
	OrderStatusInDelivery     OrderStatus = "in_delivery"
	OrderStatusReadyToCollect OrderStatus = "ready_to_collect"
	OrderStatusCompleted      OrderStatus = "completed"
	OrderStatusDelivered      OrderStatus = "delivered" // reporting synonym of completed for shipped orders
)

var orderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusApproved,
	OrderStatusInProgress,
	OrderStatusQCPackaging,
	OrderStatusInDelivery,
	OrderStatusReadyToCollect,
	OrderStatusCompleted,
	OrderStatusDelivered,
}

// OrderStatuses lists every declared order status
func OrderStatuses() []OrderStatus {
	return append([]OrderStatus(nil), orderStatuses...)
}

// Valid reports whether s is a declared status
func (s OrderStatus) Valid() bool {
	for _, v := range orderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the order has left production for good
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusDelivered
}

// AcceptsJobs reports whether production jobs may be created in this status
func (s OrderStatus) AcceptsJobs() bool {
	return s == OrderStatusApproved || s == OrderStatusInProgress
}

// DeliveryMethod is how the finished order reaches the client
type DeliveryMethod string

const (
	DeliverySelfCollect DeliveryMethod = "self_collect"
	DeliveryDelivery    DeliveryMethod = "delivery"
)

// Valid reports whether m is a known delivery method
func (m DeliveryMethod) Valid() bool {
	return m == DeliverySelfCollect || m == DeliveryDelivery
}

// Order is the aggregate root: items, payments, the design and jobs all hang off it
type Order struct {
	ID                    uint           `gorm:"primaryKey" json:"id"`
	ClientID              uint           `gorm:"not null;index" json:"client_id"`
	Client                *Client        `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	CreatedBy             uint           `gorm:"not null;index" json:"created_by"`
	Creator               *User          `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	JobName               string         `gorm:"not null" json:"job_name"`
	Status                OrderStatus    `gorm:"size:32;not null;index" json:"status"`
	DeliveryMethod        DeliveryMethod `gorm:"size:32;not null" json:"delivery_method"`
	ShippingAddress       *string        `gorm:"type:text" json:"shipping_address,omitempty"`
	DeliveryTrackingID    *string        `gorm:"size:128" json:"delivery_tracking_id,omitempty"`
	DueDateDesign         time.Time      `gorm:"not null" json:"due_date_design"`
	DueDateProduction     time.Time      `gorm:"not null" json:"due_date_production"`
	EstimatedDeliveryDate time.Time      `gorm:"not null" json:"estimated_delivery_date"`
	LinkDownload          *string        `json:"link_download,omitempty"`
	TrackingCode          string         `gorm:"size:16;uniqueIndex;not null" json:"tracking_code"` // generated once, never changes
	Items                 []OrderItem    `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	Payments              []Payment      `gorm:"foreignKey:OrderID" json:"payments,omitempty"`
	Design                *OrderDesign   `gorm:"foreignKey:OrderID" json:"design,omitempty"`
	Jobs                  []Job          `gorm:"foreignKey:OrderID" json:"jobs,omitempty"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

package models

import "time"

// DesignStatus is the state of an order's artwork
type DesignStatus string

const (
	DesignStatusNew        DesignStatus = "new"
	DesignStatusInProgress DesignStatus = "in_progress"
	DesignStatusFinalized  DesignStatus = "finalized"
	DesignStatusCompleted  DesignStatus = "completed"
)

// Valid reports whether s is a known design status
func (s DesignStatus) Valid() bool {
	switch s {
	case DesignStatusNew, DesignStatusInProgress, DesignStatusFinalized, DesignStatusCompleted:
		return true
	}
	return false
}

// Locked reports whether the design can no longer be deleted
func (s DesignStatus) Locked() bool {
	return s == DesignStatusFinalized || s == DesignStatusCompleted
}

// OrderDesign is the artwork for an order. An order has at most one.
type OrderDesign struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	OrderID      uint            `gorm:"not null;uniqueIndex" json:"order_id"`
	DesignerID   uint            `gorm:"not null;index" json:"designer_id"`
	Designer     *User           `gorm:"foreignKey:DesignerID" json:"designer,omitempty"`
	Status       DesignStatus    `gorm:"size:16;not null" json:"status"`
	DesignFileID *uint           `json:"design_file_id,omitempty"`
	DesignFile   *FileAttachment `gorm:"foreignKey:DesignFileID" json:"design_file,omitempty"`
	FileURL      *string         `gorm:"-" json:"file_url,omitempty"` // computed, presigned download URL
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the OrderDesign model
func (OrderDesign) TableName() string {
	return "order_designs"
}

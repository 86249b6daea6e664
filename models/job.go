package models

import "time"

// JobStatus is the state of a production job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
)

// Valid reports whether s is a known job status
func (s JobStatus) Valid() bool {
	return s == JobStatusPending || s == JobStatusInProgress || s == JobStatusCompleted
}

// Job is the work for one phase of one order
type Job struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	OrderID         uint       `gorm:"not null;uniqueIndex:idx_jobs_order_phase" json:"order_id"`
	Order           *Order     `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	Phase           Phase      `gorm:"size:32;not null;uniqueIndex:idx_jobs_order_phase" json:"phase"`
	Status          JobStatus  `gorm:"size:16;not null" json:"status"`
	AssignedTo      uint       `gorm:"not null;index" json:"assigned_to"`
	Assignee        *User      `gorm:"foreignKey:AssignedTo" json:"assignee,omitempty"`
	StartTime       *time.Time `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	DurationMinutes *int       `json:"duration"`
	ScanToken       string     `gorm:"size:64;uniqueIndex;not null" json:"qr_code"` // printed on the job sheet as a QR code
	Remarks         *string    `gorm:"type:text" json:"remarks,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TableName specifies the table name for the Job model
func (Job) TableName() string {
	return "jobs"
}

package models

import "time"

// FileAttachment records a blob kept in the file store
type FileAttachment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FilePath    string    `gorm:"not null" json:"file_path"` // storage key
	FileName    string    `gorm:"not null" json:"file_name"`
	ContentType string    `gorm:"size:128" json:"content_type"`
	Size        int64     `json:"size"`
	UploadedBy  uint      `gorm:"index" json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName specifies the table name for the FileAttachment model
func (FileAttachment) TableName() string {
	return "file_attachments"
}

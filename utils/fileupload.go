package utils

import (
	"fmt"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"
)

// MaxFileSize is 10MB in bytes
const MaxFileSize = 10 * 1024 * 1024

// UploadKind decides which formats an upload may use and where it is stored
type UploadKind string

const (
	UploadReceipt UploadKind = "receipts"
	UploadDesign  UploadKind = "designs"
)

var allowedExtensions = map[UploadKind][]string{
	UploadReceipt: {".png", ".jpg", ".jpeg", ".pdf"},
	UploadDesign:  {".png", ".jpg", ".jpeg", ".pdf", ".svg", ".ai", ".psd"},
}

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// ValidKind reports whether k is a known upload kind
func ValidKind(k UploadKind) bool {
	_, ok := allowedExtensions[k]
	return ok
}

// ValidateUpload validates the uploaded file format and size for kind
func ValidateUpload(fileHeader *multipart.FileHeader, kind UploadKind) error {
	if fileHeader == nil {
		return &FileUploadError{Code: "MISSING_FILE", Message: "No file was uploaded"}
	}

	if fileHeader.Size > MaxFileSize {
		return &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", MaxFileSize/(1024*1024)),
		}
	}

	allowed, ok := allowedExtensions[kind]
	if !ok {
		return &FileUploadError{Code: "INVALID_UPLOAD_KIND", Message: fmt.Sprintf("Unknown upload kind %q", kind)}
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	for _, a := range allowed {
		if ext == a {
			return nil
		}
	}
	return &FileUploadError{
		Code:    "INVALID_FILE_FORMAT",
		Message: fmt.Sprintf("Only %s files are allowed", strings.Join(allowed, ", ")),
	}
}

// ContentType guesses the MIME type from the file extension
func ContentType(filename string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// StorageKey builds the object key for an upload: {kind}/{unique}_{basename}
func StorageKey(kind UploadKind, unique, filename string) string {
	base := strings.ReplaceAll(filepath.Base(filename), " ", "_")
	return fmt.Sprintf("%s/%s_%s", kind, unique, base)
}

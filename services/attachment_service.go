package services

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/FaizGusion00/fazztrack-backend/logger"
	"github.com/FaizGusion00/fazztrack-backend/models"
	"github.com/FaizGusion00/fazztrack-backend/utils"
)

// AttachmentService validates uploads, writes them to the FileStore and records them
type AttachmentService struct {
	core
	files FileStore
}

// Upload stores a receipt or design file and returns its attachment record
func (s *AttachmentService) Upload(ctx context.Context, actor *models.User, fh *multipart.FileHeader, kind utils.UploadKind) (*models.FileAttachment, error) {
	if err := s.authorize(actor, ResourceFiles, ActionUpload, nil); err != nil {
		return nil, err
	}

	key, err := s.putBlob(ctx, fh, kind)
	if err != nil {
		return nil, err
	}

	attachment := newAttachment(key, fh, actor)
	if err := s.db.WithContext(ctx).Create(attachment).Error; err != nil {
		s.removeBlob(ctx, key)
		return nil, Unexpected("failed to record upload", err)
	}
	return attachment, nil
}

// Get returns the attachment and a presigned download URL
func (s *AttachmentService) Get(ctx context.Context, actor *models.User, id uint) (*models.FileAttachment, string, error) {
	if err := s.authorize(actor, ResourceFiles, ActionView, nil); err != nil {
		return nil, "", err
	}

	var attachment models.FileAttachment
	if err := s.db.WithContext(ctx).First(&attachment, id).Error; err != nil {
		return nil, "", lookupError(err, "file")
	}

	url, err := s.files.PresignURL(ctx, attachment.FilePath)
	if err != nil {
		return nil, "", Unexpected("failed to generate file URL", err)
	}
	return &attachment, url, nil
}

// putBlob validates the upload and writes it to the store under a fresh key
func (s *AttachmentService) putBlob(ctx context.Context, fh *multipart.FileHeader, kind utils.UploadKind) (string, error) {
	if err := utils.ValidateUpload(fh, kind); err != nil {
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			return "", &Error{
				Kind:    KindValidation,
				Code:    uploadErr.Code,
				Message: uploadErr.Message,
				Details: []FieldError{{Field: "file", Message: uploadErr.Message}},
			}
		}
		return "", ValidationError(err.Error())
	}

	file, err := fh.Open()
	if err != nil {
		return "", Unexpected("failed to open uploaded file", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			logger.FromContext(ctx).Warn("failed to close uploaded file", zap.Error(closeErr))
		}
	}()

	unique := strings.ReplaceAll(uuid.NewString(), "-", "")
	key := utils.StorageKey(kind, unique, fh.Filename)
	if err := s.files.Put(ctx, key, file, fh.Size, utils.ContentType(fh.Filename)); err != nil {
		return "", Unexpected("failed to store file", err)
	}
	return key, nil
}

func (s *AttachmentService) removeBlob(ctx context.Context, key string) {
	removeStoredFile(ctx, s.files, key)
}

// removeStoredFile deletes a blob, logging instead of failing
func removeStoredFile(ctx context.Context, files FileStore, key string) {
	if key == "" {
		return
	}
	if err := files.Delete(ctx, key); err != nil {
		logger.FromContext(ctx).Warn("failed to delete stored file", zap.String("key", key), zap.Error(err))
	}
}

// deleteAttachment removes the attachment row inside tx and returns the blob key to remove after commit
func deleteAttachment(tx *gorm.DB, id uint) (string, error) {
	var attachment models.FileAttachment
	if err := tx.First(&attachment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", Unexpected("failed to load file", err)
	}
	if err := tx.Delete(&attachment).Error; err != nil {
		return "", Unexpected("failed to delete file record", err)
	}
	return attachment.FilePath, nil
}

func newAttachment(key string, fh *multipart.FileHeader, actor *models.User) *models.FileAttachment {
	a := &models.FileAttachment{
		FilePath:    key,
		FileName:    fh.Filename,
		ContentType: utils.ContentType(fh.Filename),
		Size:        fh.Size,
	}
	if actor != nil {
		a.UploadedBy = actor.ID
	}
	return a
}

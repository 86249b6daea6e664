package services

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/FaizGusion00/fazztrack-backend/models"
	"github.com/FaizGusion00/fazztrack-backend/utils"
)

// DesignWorkflow manages the single artwork record of an order
type DesignWorkflow struct {
	core
	attachments *AttachmentService
}

// DesignUpdate carries a reassignment and/or status override; nil fields are left alone
type DesignUpdate struct {
	DesignerID *uint
	Status     *models.DesignStatus
}

// Create opens the design for an order and assigns a designer
func (w *DesignWorkflow) Create(ctx context.Context, actor *models.User, orderID, designerID uint, status *models.DesignStatus) (*models.OrderDesign, error) {
	if err := w.authorize(actor, ResourceDesigns, ActionCreate, nil); err != nil {
		return nil, err
	}

	initial := models.DesignStatusNew
	if status != nil {
		if !status.Valid() {
			return nil, FieldInvalid("status", "unknown design status")
		}
		initial = *status
	}

	design := &models.OrderDesign{OrderID: orderID, DesignerID: designerID, Status: initial}
	err := w.inTx(ctx, func(u *unit) error {
		if _, err := lockOrder(u.tx, orderID); err != nil {
			return err
		}

		var existing int64
		if err := u.tx.Model(&models.OrderDesign{}).Where("order_id = ?", orderID).Count(&existing).Error; err != nil {
			return Unexpected("failed to check existing design", err)
		}
		if existing > 0 {
			return PreconditionFailed("DESIGN_EXISTS", "order already has a design")
		}

		if err := checkDesigner(u, designerID); err != nil {
			return err
		}
		if err := u.tx.Create(design).Error; err != nil {
			if IsDuplicateKey(err) {
				return PreconditionFailed("DESIGN_EXISTS", "order already has a design")
			}
			return Unexpected("failed to create design", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return design, nil
}

// Get returns a design with its designer and a download URL for the file
func (w *DesignWorkflow) Get(ctx context.Context, actor *models.User, id uint) (*models.OrderDesign, error) {
	if err := w.authorize(actor, ResourceDesigns, ActionView, nil); err != nil {
		return nil, err
	}

	var design models.OrderDesign
	if err := w.db.WithContext(ctx).Preload("Designer").Preload("DesignFile").First(&design, id).Error; err != nil {
		return nil, lookupError(err, "design")
	}
	if err := w.attachURL(ctx, &design); err != nil {
		return nil, err
	}
	return &design, nil
}

// AttachFile stores the uploaded artwork and links it to the design.
// A previously attached file is removed. The design status is not changed.
func (w *DesignWorkflow) AttachFile(ctx context.Context, actor *models.User, id uint, fh *multipart.FileHeader) (*models.OrderDesign, error) {
	current, err := w.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := w.authorize(actor, ResourceDesigns, ActionUpload, &Target{DesignerID: current.DesignerID}); err != nil {
		return nil, err
	}

	key, err := w.attachments.putBlob(ctx, fh, utils.UploadDesign)
	if err != nil {
		return nil, err
	}

	var design *models.OrderDesign
	var oldKey string
	err = w.inTx(ctx, func(u *unit) error {
		d, err := lockDesign(u, id)
		if err != nil {
			return err
		}

		attachment := newAttachment(key, fh, actor)
		if err := u.tx.Create(attachment).Error; err != nil {
			return Unexpected("failed to record design file", err)
		}

		previous := d.DesignFileID
		d.DesignFileID = &attachment.ID
		if err := u.tx.Model(d).Update("design_file_id", attachment.ID).Error; err != nil {
			return Unexpected("failed to attach design file", err)
		}
		if previous != nil {
			if oldKey, err = deleteAttachment(u.tx, *previous); err != nil {
				return err
			}
		}

		d.DesignFile = attachment
		design = d
		return nil
	})
	if err != nil {
		w.attachments.removeBlob(ctx, key)
		return nil, err
	}

	w.attachments.removeBlob(ctx, oldKey)
	if err := w.attachURL(ctx, design); err != nil {
		return nil, err
	}
	return design, nil
}

// Finalize locks in the artwork. A file must be attached. Finalizing starts production on an approved order.
func (w *DesignWorkflow) Finalize(ctx context.Context, actor *models.User, id uint) (*models.OrderDesign, error) {
	current, err := w.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := w.authorize(actor, ResourceDesigns, ActionFinalize, &Target{DesignerID: current.DesignerID}); err != nil {
		return nil, err
	}

	var design *models.OrderDesign
	err = w.inTx(ctx, func(u *unit) error {
		order, err := lockOrder(u.tx, current.OrderID)
		if err != nil {
			return err
		}
		d, err := lockDesign(u, id)
		if err != nil {
			return err
		}
		if d.DesignFileID == nil {
			return PreconditionFailed("DESIGN_FILE_REQUIRED", "upload a design file before finalizing")
		}

		d.Status = models.DesignStatusFinalized
		if err := u.tx.Model(d).Update("status", d.Status).Error; err != nil {
			return Unexpected("failed to finalize design", err)
		}
		if err := w.lifecycle.StartIfApproved(u, order, fmt.Sprintf("design #%d finalized", d.ID)); err != nil {
			return err
		}
		design = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return design, nil
}

// Update reassigns the designer and/or overrides the status
func (w *DesignWorkflow) Update(ctx context.Context, actor *models.User, id uint, upd DesignUpdate) (*models.OrderDesign, error) {
	current, err := w.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := w.authorize(actor, ResourceDesigns, ActionUpdate, &Target{DesignerID: current.DesignerID}); err != nil {
		return nil, err
	}
	if upd.Status != nil && !upd.Status.Valid() {
		return nil, FieldInvalid("status", "unknown design status")
	}

	var design *models.OrderDesign
	err = w.inTx(ctx, func(u *unit) error {
		d, err := lockDesign(u, id)
		if err != nil {
			return err
		}

		changes := map[string]interface{}{}
		if upd.DesignerID != nil {
			if err := checkDesigner(u, *upd.DesignerID); err != nil {
				return err
			}
			d.DesignerID = *upd.DesignerID
			changes["designer_id"] = d.DesignerID
		}
		if upd.Status != nil {
			d.Status = *upd.Status
			changes["status"] = d.Status
		}
		if len(changes) > 0 {
			if err := u.tx.Model(d).Updates(changes).Error; err != nil {
				return Unexpected("failed to update design", err)
			}
		}
		design = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return design, nil
}

// Delete removes a design that is not finalized or completed, along with its file
func (w *DesignWorkflow) Delete(ctx context.Context, actor *models.User, id uint) error {
	if err := w.authorize(actor, ResourceDesigns, ActionDelete, nil); err != nil {
		return err
	}

	var key string
	err := w.inTx(ctx, func(u *unit) error {
		d, err := lockDesign(u, id)
		if err != nil {
			return err
		}
		if d.Status.Locked() {
			return PreconditionFailed("DESIGN_LOCKED", "finalized or completed designs cannot be deleted")
		}

		key, err = removeDesign(u, d)
		return err
	})
	if err != nil {
		return err
	}

	w.attachments.removeBlob(ctx, key)
	return nil
}

func (w *DesignWorkflow) load(ctx context.Context, id uint) (*models.OrderDesign, error) {
	var design models.OrderDesign
	if err := w.db.WithContext(ctx).First(&design, id).Error; err != nil {
		return nil, lookupError(err, "design")
	}
	return &design, nil
}

func (w *DesignWorkflow) attachURL(ctx context.Context, design *models.OrderDesign) error {
	if design.DesignFile == nil {
		return nil
	}
	url, err := w.attachments.files.PresignURL(ctx, design.DesignFile.FilePath)
	if err != nil {
		return Unexpected("failed to generate design file URL", err)
	}
	design.FileURL = &url
	return nil
}

// lockDesign locks the owning order and reloads the design under that lock
func lockDesign(u *unit, id uint) (*models.OrderDesign, error) {
	var d models.OrderDesign
	if err := u.tx.Select("id", "order_id").First(&d, id).Error; err != nil {
		return nil, lookupError(err, "design")
	}
	if _, err := lockOrder(u.tx, d.OrderID); err != nil {
		return nil, err
	}
	if err := u.tx.First(&d, id).Error; err != nil {
		return nil, lookupError(err, "design")
	}
	return &d, nil
}

// removeDesign deletes the design row and its attachment, returning the blob key to remove after commit
func removeDesign(u *unit, d *models.OrderDesign) (string, error) {
	if err := u.tx.Delete(d).Error; err != nil {
		return "", Unexpected("failed to delete design", err)
	}
	if d.DesignFileID == nil {
		return "", nil
	}
	return deleteAttachment(u.tx, *d.DesignFileID)
}

// checkDesigner requires the user to belong to the Designer department
func checkDesigner(u *unit, designerID uint) error {
	designer, err := loadUser(u.tx, designerID, "designer_id")
	if err != nil {
		return err
	}
	if designer.Department != models.DepartmentDesigner {
		return PreconditionFailed("ROLE_MISMATCH", "assigned user must be a Designer")
	}
	return nil
}

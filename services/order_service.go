package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/FaizGusion00/fazztrack-backend/models"
)

var validate = validator.New()

// OrderService creates and maintains the order aggregate
type OrderService struct {
	core
	files FileStore
}

// ItemInput is a new order line
type ItemInput struct {
	ProductID uint
	Quantity  int
	Price     decimal.Decimal
}

// ItemUpdate carries the line fields to change; nil fields are left alone
type ItemUpdate struct {
	ProductID *uint
	Quantity  *int
	Price     *decimal.Decimal
}

// CreateOrderInput is everything needed to open an order in one step
type CreateOrderInput struct {
	ClientID              uint
	JobName               string
	DeliveryMethod        models.DeliveryMethod
	ShippingAddress       *string
	DeliveryTrackingID    *string
	DueDateDesign         time.Time
	DueDateProduction     time.Time
	EstimatedDeliveryDate time.Time
	LinkDownload          *string
	Items                 []ItemInput
	Payments              []PaymentInput
}

// OrderUpdate carries the order fields to change; nil fields are left alone
type OrderUpdate struct {
	JobName               *string
	DeliveryMethod        *models.DeliveryMethod
	ShippingAddress       *string
	DeliveryTrackingID    *string
	DueDateDesign         *time.Time
	DueDateProduction     *time.Time
	EstimatedDeliveryDate *time.Time
	LinkDownload          *string
}

// JobProgress counts an order's jobs by status
type JobProgress struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	InProgress int `json:"in_progress"`
	Pending    int `json:"pending"`
}

// OrderDetail is the full order with computed money and progress figures
type OrderDetail struct {
	*models.Order
	Financials
	JobProgress JobProgress `json:"job_progress"`
}

// orderFields are the scalar fields shared by create and update validation
type orderFields struct {
	JobName               string
	DeliveryMethod        models.DeliveryMethod
	ShippingAddress       *string
	DueDateDesign         time.Time
	DueDateProduction     time.Time
	EstimatedDeliveryDate time.Time
	LinkDownload          *string
}

func validateOrderFields(f orderFields) []FieldError {
	var details []FieldError
	if strings.TrimSpace(f.JobName) == "" {
		details = append(details, FieldError{Field: "job_name", Message: "is required"})
	} else if len(f.JobName) > 255 {
		details = append(details, FieldError{Field: "job_name", Message: "must be at most 255 characters"})
	}
	if !f.DeliveryMethod.Valid() {
		details = append(details, FieldError{Field: "delivery_method", Message: "must be self_collect or delivery"})
	}
	if f.DeliveryMethod == models.DeliveryDelivery && (f.ShippingAddress == nil || strings.TrimSpace(*f.ShippingAddress) == "") {
		details = append(details, FieldError{Field: "shipping_address", Message: "is required for delivery orders"})
	}
	if f.DueDateDesign.IsZero() {
		details = append(details, FieldError{Field: "due_date_design", Message: "is required"})
	}
	if f.DueDateProduction.IsZero() {
		details = append(details, FieldError{Field: "due_date_production", Message: "is required"})
	} else if f.DueDateProduction.Before(f.DueDateDesign) {
		details = append(details, FieldError{Field: "due_date_production", Message: "must not be before due_date_design"})
	}
	if f.EstimatedDeliveryDate.IsZero() {
		details = append(details, FieldError{Field: "estimated_delivery_date", Message: "is required"})
	} else if f.EstimatedDeliveryDate.Before(f.DueDateProduction) {
		details = append(details, FieldError{Field: "estimated_delivery_date", Message: "must not be before due_date_production"})
	}
	if f.LinkDownload != nil && *f.LinkDownload != "" {
		if err := validate.Var(*f.LinkDownload, "url"); err != nil {
			details = append(details, FieldError{Field: "link_download", Message: "must be a valid URL"})
		}
	}
	return details
}

func validateItem(in ItemInput, prefix string) []FieldError {
	var details []FieldError
	if in.ProductID == 0 {
		details = append(details, FieldError{Field: prefix + "product_id", Message: "is required"})
	}
	if in.Quantity < 1 {
		details = append(details, FieldError{Field: prefix + "quantity", Message: "must be at least 1"})
	}
	if in.Price.IsNegative() {
		details = append(details, FieldError{Field: prefix + "price", Message: "must be zero or greater"})
	}
	return details
}

func (s *OrderService) validateCreate(in CreateOrderInput) []FieldError {
	details := validateOrderFields(orderFields{
		JobName:               in.JobName,
		DeliveryMethod:        in.DeliveryMethod,
		ShippingAddress:       in.ShippingAddress,
		DueDateDesign:         in.DueDateDesign,
		DueDateProduction:     in.DueDateProduction,
		EstimatedDeliveryDate: in.EstimatedDeliveryDate,
		LinkDownload:          in.LinkDownload,
	})
	if in.ClientID == 0 {
		details = append(details, FieldError{Field: "client_id", Message: "is required"})
	}
	if !in.DueDateDesign.IsZero() && in.DueDateDesign.Before(startOfDay(s.now())) {
		details = append(details, FieldError{Field: "due_date_design", Message: "must not be in the past"})
	}

	if len(in.Items) == 0 {
		details = append(details, FieldError{Field: "items", Message: "at least one item is required"})
	}
	for i, item := range in.Items {
		details = append(details, validateItem(item, fmt.Sprintf("items.%d.", i))...)
	}
	if len(in.Payments) == 0 {
		details = append(details, FieldError{Field: "payments", Message: "at least one payment is required"})
	}
	for i, p := range in.Payments {
		details = append(details, validatePayment(p, fmt.Sprintf("payments.%d.", i))...)
	}
	return details
}

// Create opens an order with its items and initial payments in one transaction
func (s *OrderService) Create(ctx context.Context, actor *models.User, in CreateOrderInput) (*models.Order, error) {
	if err := s.authorize(actor, ResourceOrders, ActionCreate, nil); err != nil {
		return nil, err
	}
	if details := s.validateCreate(in); len(details) > 0 {
		return nil, ValidationError("invalid order", details...)
	}

	order := &models.Order{
		ClientID:              in.ClientID,
		CreatedBy:             actor.ID,
		JobName:               strings.TrimSpace(in.JobName),
		Status:                models.OrderStatusPending,
		DeliveryMethod:        in.DeliveryMethod,
		ShippingAddress:       in.ShippingAddress,
		DeliveryTrackingID:    in.DeliveryTrackingID,
		DueDateDesign:         in.DueDateDesign,
		DueDateProduction:     in.DueDateProduction,
		EstimatedDeliveryDate: in.EstimatedDeliveryDate,
		LinkDownload:          in.LinkDownload,
	}

	err := s.inTx(ctx, func(u *unit) error {
		if err := mustExist(u.tx, &models.Client{}, in.ClientID, "client_id", "client does not exist"); err != nil {
			return err
		}
		for i, item := range in.Items {
			if err := mustExist(u.tx, &models.Product{}, item.ProductID, fmt.Sprintf("items.%d.product_id", i), "product does not exist"); err != nil {
				return err
			}
		}
		for i, p := range in.Payments {
			if err := checkReceipt(u.tx, p.ReceiptFileID, fmt.Sprintf("payments.%d.receipt_file_id", i)); err != nil {
				return err
			}
		}

		code, err := uniqueTrackingCode(u.tx)
		if err != nil {
			return err
		}
		order.TrackingCode = code

		if err := u.tx.Omit("Items", "Payments", "Design", "Jobs").Create(order).Error; err != nil {
			return Unexpected("failed to create order", err)
		}

		for _, item := range in.Items {
			order.Items = append(order.Items, models.OrderItem{
				OrderID:   order.ID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     item.Price,
			})
		}
		if err := u.tx.Create(&order.Items).Error; err != nil {
			return Unexpected("failed to create order items", err)
		}

		for _, p := range in.Payments {
			order.Payments = append(order.Payments, models.Payment{
				OrderID:       order.ID,
				Type:          p.Type,
				PaymentMethod: p.PaymentMethod,
				Amount:        p.Amount,
				PaymentDate:   p.PaymentDate,
				Remarks:       p.Remarks,
				ReceiptFileID: p.ReceiptFileID,
				Status:        models.StatusPtr(models.PaymentStatusPending),
			})
		}
		if err := u.tx.Create(&order.Payments).Error; err != nil {
			return Unexpected("failed to create payments", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Get returns the order with its client and creator
func (s *OrderService) Get(ctx context.Context, actor *models.User, id uint) (*models.Order, error) {
	if err := s.authorize(actor, ResourceOrders, ActionView, nil); err != nil {
		return nil, err
	}

	var order models.Order
	if err := s.db.WithContext(ctx).Preload("Client").Preload("Creator").First(&order, id).Error; err != nil {
		return nil, lookupError(err, "order")
	}
	return &order, nil
}

// Detail returns the order with every relation, its financials and job progress
func (s *OrderService) Detail(ctx context.Context, actor *models.User, id uint) (*OrderDetail, error) {
	if err := s.authorize(actor, ResourceOrders, ActionView, nil); err != nil {
		return nil, err
	}

	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Client").
		Preload("Creator").
		Preload("Items.Product").
		Preload("Payments.ReceiptFile").
		Preload("Design.Designer").
		Preload("Design.DesignFile").
		Preload("Jobs.Assignee").
		First(&order, id).Error
	if err != nil {
		return nil, lookupError(err, "order")
	}

	sort.SliceStable(order.Jobs, func(i, j int) bool {
		return order.Jobs[i].Phase.Index() < order.Jobs[j].Phase.Index()
	})
	if order.Design != nil && order.Design.DesignFile != nil {
		url, err := s.files.PresignURL(ctx, order.Design.DesignFile.FilePath)
		if err != nil {
			return nil, Unexpected("failed to generate design file URL", err)
		}
		order.Design.FileURL = &url
	}

	return &OrderDetail{
		Order:       &order,
		Financials:  Totals(order.Items, order.Payments),
		JobProgress: progressOf(order.Jobs),
	}, nil
}

// Update edits the descriptive fields of an order. Date ordering is checked on the merged values.
func (s *OrderService) Update(ctx context.Context, actor *models.User, id uint, upd OrderUpdate) (*models.Order, error) {
	var order *models.Order
	err := s.inTx(ctx, func(u *unit) error {
		o, err := lockOrder(u.tx, id)
		if err != nil {
			return err
		}
		if err := s.authorize(actor, ResourceOrders, ActionUpdate, &Target{OrderCreatorID: o.CreatedBy}); err != nil {
			return err
		}

		if upd.JobName != nil {
			o.JobName = strings.TrimSpace(*upd.JobName)
		}
		if upd.DeliveryMethod != nil {
			o.DeliveryMethod = *upd.DeliveryMethod
		}
		if upd.ShippingAddress != nil {
			o.ShippingAddress = upd.ShippingAddress
		}
		if upd.DeliveryTrackingID != nil {
			o.DeliveryTrackingID = upd.DeliveryTrackingID
		}
		if upd.DueDateDesign != nil {
			o.DueDateDesign = *upd.DueDateDesign
		}
		if upd.DueDateProduction != nil {
			o.DueDateProduction = *upd.DueDateProduction
		}
		if upd.EstimatedDeliveryDate != nil {
			o.EstimatedDeliveryDate = *upd.EstimatedDeliveryDate
		}
		if upd.LinkDownload != nil {
			o.LinkDownload = upd.LinkDownload
		}

		details := validateOrderFields(orderFields{
			JobName:               o.JobName,
			DeliveryMethod:        o.DeliveryMethod,
			ShippingAddress:       o.ShippingAddress,
			DueDateDesign:         o.DueDateDesign,
			DueDateProduction:     o.DueDateProduction,
			EstimatedDeliveryDate: o.EstimatedDeliveryDate,
			LinkDownload:          o.LinkDownload,
		})
		if len(details) > 0 {
			return ValidationError("invalid order", details...)
		}

		if err := u.tx.Model(o).Select(
			"job_name", "delivery_method", "shipping_address", "delivery_tracking_id",
			"due_date_design", "due_date_production", "estimated_delivery_date", "link_download",
		).Updates(o).Error; err != nil {
			return Unexpected("failed to update order", err)
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateStatus overwrites the order status with any declared value
func (s *OrderService) UpdateStatus(ctx context.Context, actor *models.User, id uint, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, FieldInvalid("status", "unknown order status")
	}

	var order *models.Order
	err := s.inTx(ctx, func(u *unit) error {
		o, err := lockOrder(u.tx, id)
		if err != nil {
			return err
		}
		if err := s.authorize(actor, ResourceOrders, ActionUpdateStatus, &Target{OrderCreatorID: o.CreatedBy}); err != nil {
			return err
		}
		if err := s.lifecycle.Override(u, o, status); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Approve moves a pending order to approved
func (s *OrderService) Approve(ctx context.Context, actor *models.User, id uint) (*models.Order, error) {
	if err := s.authorize(actor, ResourceOrders, ActionApprove, nil); err != nil {
		return nil, err
	}

	var order *models.Order
	err := s.inTx(ctx, func(u *unit) error {
		o, err := lockOrder(u.tx, id)
		if err != nil {
			return err
		}
		if err := s.lifecycle.Approve(u, o); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Delete removes a pending order and everything it owns
func (s *OrderService) Delete(ctx context.Context, actor *models.User, id uint) error {
	var designKey string
	err := s.inTx(ctx, func(u *unit) error {
		o, err := lockOrder(u.tx, id)
		if err != nil {
			return err
		}
		if err := s.authorize(actor, ResourceOrders, ActionDelete, &Target{OrderCreatorID: o.CreatedBy}); err != nil {
			return err
		}
		if o.Status != models.OrderStatusPending {
			return PreconditionFailed("ORDER_NOT_PENDING", "only pending orders can be deleted")
		}

		if err := u.tx.Where("order_id = ?", o.ID).Delete(&models.Job{}).Error; err != nil {
			return Unexpected("failed to delete jobs", err)
		}
		var design models.OrderDesign
		err = u.tx.Where("order_id = ?", o.ID).Limit(1).Find(&design).Error
		if err != nil {
			return Unexpected("failed to load design", err)
		}
		if design.ID != 0 {
			if designKey, err = removeDesign(u, &design); err != nil {
				return err
			}
		}
		if err := u.tx.Where("order_id = ?", o.ID).Delete(&models.Payment{}).Error; err != nil {
			return Unexpected("failed to delete payments", err)
		}
		if err := u.tx.Where("order_id = ?", o.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return Unexpected("failed to delete items", err)
		}
		if err := u.tx.Delete(o).Error; err != nil {
			return Unexpected("failed to delete order", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	removeStoredFile(ctx, s.files, designKey)
	return nil
}

// AddItem adds a line to a pending order
func (s *OrderService) AddItem(ctx context.Context, actor *models.User, orderID uint, in ItemInput) (*models.OrderItem, error) {
	if details := validateItem(in, ""); len(details) > 0 {
		return nil, ValidationError("invalid item", details...)
	}

	item := &models.OrderItem{OrderID: orderID, ProductID: in.ProductID, Quantity: in.Quantity, Price: in.Price}
	err := s.inTx(ctx, func(u *unit) error {
		o, err := s.lockPendingOrder(u, actor, orderID)
		if err != nil {
			return err
		}
		if err := mustExist(u.tx, &models.Product{}, in.ProductID, "product_id", "product does not exist"); err != nil {
			return err
		}
		item.OrderID = o.ID
		if err := u.tx.Create(item).Error; err != nil {
			return Unexpected("failed to add item", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItem edits a line of a pending order
func (s *OrderService) UpdateItem(ctx context.Context, actor *models.User, itemID uint, upd ItemUpdate) (*models.OrderItem, error) {
	var item *models.OrderItem
	err := s.inTx(ctx, func(u *unit) error {
		it, err := s.lockItem(u, actor, itemID)
		if err != nil {
			return err
		}

		merged := ItemInput{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price}
		if upd.ProductID != nil {
			merged.ProductID = *upd.ProductID
		}
		if upd.Quantity != nil {
			merged.Quantity = *upd.Quantity
		}
		if upd.Price != nil {
			merged.Price = *upd.Price
		}
		if details := validateItem(merged, ""); len(details) > 0 {
			return ValidationError("invalid item", details...)
		}
		if upd.ProductID != nil {
			if err := mustExist(u.tx, &models.Product{}, merged.ProductID, "product_id", "product does not exist"); err != nil {
				return err
			}
		}

		it.ProductID, it.Quantity, it.Price = merged.ProductID, merged.Quantity, merged.Price
		if err := u.tx.Model(it).Select("product_id", "quantity", "price").Updates(it).Error; err != nil {
			return Unexpected("failed to update item", err)
		}
		item = it
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItem removes a line from a pending order. The last line cannot be removed.
func (s *OrderService) DeleteItem(ctx context.Context, actor *models.User, itemID uint) error {
	return s.inTx(ctx, func(u *unit) error {
		it, err := s.lockItem(u, actor, itemID)
		if err != nil {
			return err
		}

		var count int64
		if err := u.tx.Model(&models.OrderItem{}).Where("order_id = ?", it.OrderID).Count(&count).Error; err != nil {
			return Unexpected("failed to count items", err)
		}
		if count <= 1 {
			return PreconditionFailed("LAST_ITEM", "order must have at least one item")
		}
		if err := u.tx.Delete(it).Error; err != nil {
			return Unexpected("failed to delete item", err)
		}
		return nil
	})
}

// lockPendingOrder locks the order, checks the actor may edit it and that it is still pending
func (s *OrderService) lockPendingOrder(u *unit, actor *models.User, orderID uint) (*models.Order, error) {
	o, err := lockOrder(u.tx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, ResourceOrders, ActionUpdate, &Target{OrderCreatorID: o.CreatedBy}); err != nil {
		return nil, err
	}
	if o.Status != models.OrderStatusPending {
		return nil, PreconditionFailed("ORDER_NOT_PENDING", "items can only be changed while the order is pending")
	}
	return o, nil
}

func (s *OrderService) lockItem(u *unit, actor *models.User, itemID uint) (*models.OrderItem, error) {
	var it models.OrderItem
	if err := u.tx.Select("id", "order_id").First(&it, itemID).Error; err != nil {
		return nil, lookupError(err, "order_item")
	}
	if _, err := s.lockPendingOrder(u, actor, it.OrderID); err != nil {
		return nil, err
	}
	if err := u.tx.First(&it, itemID).Error; err != nil {
		return nil, lookupError(err, "order_item")
	}
	return &it, nil
}

func progressOf(jobs []models.Job) JobProgress {
	p := JobProgress{Total: len(jobs)}
	for _, j := range jobs {
		switch j.Status {
		case models.JobStatusCompleted:
			p.Completed++
		case models.JobStatusInProgress:
			p.InProgress++
		default:
			p.Pending++
		}
	}
	return p
}

// mustExist fails with a field error when no row of model has the id
func mustExist(tx *gorm.DB, model interface{}, id uint, field, message string) error {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return Unexpected("failed to check "+field, err)
	}
	if count == 0 {
		return FieldInvalid(field, message)
	}
	return nil
}

// uniqueTrackingCode generates a public tracking code not used by any order
func uniqueTrackingCode(tx *gorm.DB) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		code := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:10]
		var count int64
		if err := tx.Model(&models.Order{}).Where("tracking_code = ?", code).Count(&count).Error; err != nil {
			return "", Unexpected("failed to check tracking code", err)
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", Unexpected("could not generate a unique tracking code", nil)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

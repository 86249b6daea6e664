package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/FaizGusion00/fazztrack-backend/models"
	"github.com/FaizGusion00/fazztrack-backend/services"
)

// ItemRequest is an order line in a create request
type ItemRequest struct {
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// PaymentRequest is a payment in a create request
type PaymentRequest struct {
	Type          models.PaymentType   `json:"type"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	Amount        decimal.Decimal      `json:"amount"`
	PaymentDate   string               `json:"payment_date" binding:"omitempty,datetime=2006-01-02"`
	Remarks       *string              `json:"remarks"`
	ReceiptFileID *uint                `json:"receipt_file_id"`
}

func (r PaymentRequest) input() services.PaymentInput {
	return services.PaymentInput{
		Type:          r.Type,
		PaymentMethod: r.PaymentMethod,
		Amount:        r.Amount,
		PaymentDate:   parseDate(r.PaymentDate),
		Remarks:       r.Remarks,
		ReceiptFileID: r.ReceiptFileID,
	}
}

// CreateOrderRequest represents the request body for creating an order
type CreateOrderRequest struct {
	ClientID              uint                  `json:"client_id"`
	JobName               string                `json:"job_name"`
	DeliveryMethod        models.DeliveryMethod `json:"delivery_method"`
	ShippingAddress       *string               `json:"shipping_address"`
	DeliveryTrackingID    *string               `json:"delivery_tracking_id"`
	DueDateDesign         string                `json:"due_date_design" binding:"omitempty,datetime=2006-01-02"`
	DueDateProduction     string                `json:"due_date_production" binding:"omitempty,datetime=2006-01-02"`
	EstimatedDeliveryDate string                `json:"estimated_delivery_date" binding:"omitempty,datetime=2006-01-02"`
	LinkDownload          *string               `json:"link_download"`
	Items                 []ItemRequest         `json:"items" binding:"dive"`
	Payments              []PaymentRequest      `json:"payments" binding:"dive"`
}

// UpdateOrderRequest represents the request body for updating a pending order
type UpdateOrderRequest struct {
	JobName               *string                `json:"job_name"`
	DeliveryMethod        *models.DeliveryMethod `json:"delivery_method"`
	ShippingAddress       *string                `json:"shipping_address"`
	DeliveryTrackingID    *string                `json:"delivery_tracking_id"`
	DueDateDesign         *string                `json:"due_date_design" binding:"omitempty,datetime=2006-01-02"`
	DueDateProduction     *string                `json:"due_date_production" binding:"omitempty,datetime=2006-01-02"`
	EstimatedDeliveryDate *string                `json:"estimated_delivery_date" binding:"omitempty,datetime=2006-01-02"`
	LinkDownload          *string                `json:"link_download"`
}

// UpdateOrderStatusRequest represents the request body for a status override
type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

// CreateOrder handles POST /api/v1/orders - opens an order with items and payments
func CreateOrder(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	in := services.CreateOrderInput{
		ClientID:              req.ClientID,
		JobName:               req.JobName,
		DeliveryMethod:        req.DeliveryMethod,
		ShippingAddress:       req.ShippingAddress,
		DeliveryTrackingID:    req.DeliveryTrackingID,
		DueDateDesign:         parseDate(req.DueDateDesign),
		DueDateProduction:     parseDate(req.DueDateProduction),
		EstimatedDeliveryDate: parseDate(req.EstimatedDeliveryDate),
		LinkDownload:          req.LinkDownload,
	}
	for _, item := range req.Items {
		in.Items = append(in.Items, services.ItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	for _, p := range req.Payments {
		in.Payments = append(in.Payments, p.input())
	}

	order, err := services.GetRegistry().Orders.Create(c.Request.Context(), user, in)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusCreated, order)
}

// GetOrder handles GET /api/v1/orders/:id
func GetOrder(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	order, err := services.GetRegistry().Orders.Get(c.Request.Context(), user, id)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, order)
}

// GetOrderDetails handles GET /api/v1/orders/:id/details - the order with financials and job progress
func GetOrderDetails(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	detail, err := services.GetRegistry().Orders.Detail(c.Request.Context(), user, id)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, detail)
}

// UpdateOrder handles PUT /api/v1/orders/:id - edits a pending order
func UpdateOrder(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req UpdateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := services.GetRegistry().Orders.Update(c.Request.Context(), user, id, services.OrderUpdate{
		JobName:               req.JobName,
		DeliveryMethod:        req.DeliveryMethod,
		ShippingAddress:       req.ShippingAddress,
		DeliveryTrackingID:    req.DeliveryTrackingID,
		DueDateDesign:         parseOptionalDate(req.DueDateDesign),
		DueDateProduction:     parseOptionalDate(req.DueDateProduction),
		EstimatedDeliveryDate: parseOptionalDate(req.EstimatedDeliveryDate),
		LinkDownload:          req.LinkDownload,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, order)
}

// UpdateOrderStatus handles POST (or PATCH) /api/v1/orders/:id/status - administrative status override
func UpdateOrderStatus(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := services.GetRegistry().Orders.UpdateStatus(c.Request.Context(), user, id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, order)
}

// ApproveOrder handles POST /api/v1/orders/:id/approve
func ApproveOrder(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	order, err := services.GetRegistry().Orders.Approve(c.Request.Context(), user, id)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, order)
}

// DeleteOrder handles DELETE /api/v1/orders/:id - removes a pending order and everything under it
func DeleteOrder(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := services.GetRegistry().Orders.Delete(c.Request.Context(), user, id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

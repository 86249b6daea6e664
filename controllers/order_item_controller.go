package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/FaizGusion00/fazztrack-backend/services"
)

// UpdateItemRequest represents the request body for editing an order line
type UpdateItemRequest struct {
	ProductID *uint            `json:"product_id"`
	Quantity  *int             `json:"quantity"`
	Price     *decimal.Decimal `json:"price"`
}

// AddOrderItem handles POST /api/v1/orders/:id/items
func AddOrderItem(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req ItemRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := services.GetRegistry().Orders.AddItem(c.Request.Context(), user, orderID, services.ItemInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Price:     req.Price,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusCreated, item)
}

// UpdateOrderItem handles PUT /api/v1/items/:id
func UpdateOrderItem(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req UpdateItemRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := services.GetRegistry().Orders.UpdateItem(c.Request.Context(), user, id, services.ItemUpdate{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Price:     req.Price,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, item)
}

// DeleteOrderItem handles DELETE /api/v1/items/:id
func DeleteOrderItem(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := services.GetRegistry().Orders.DeleteItem(c.Request.Context(), user, id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

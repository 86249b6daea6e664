package services

import (
	"time"

	"github.com/FaizGusion00/fazztrack-backend/models"
)

// OrderLifecycle owns every write to orders.status.
//
// Automatic promotions are compare-and-set updates on the current status: when
// the order is not in the expected source state the call is a no-op, so replays
// and concurrent callers never move an order backwards or skip a step.
// Callers must hold the order row lock (see lockOrder).
type OrderLifecycle struct {
	now func() time.Time
}

// NewOrderLifecycle returns a lifecycle using clock for event timestamps
func NewOrderLifecycle(clock func() time.Time) *OrderLifecycle {
	if clock == nil {
		clock = time.Now
	}
	return &OrderLifecycle{now: clock}
}

// ApproveIfPending moves pending to approved. Triggered by an approved design deposit.
func (l *OrderLifecycle) ApproveIfPending(u *unit, order *models.Order, reason string) error {
	_, err := l.promote(u, order, models.OrderStatusPending, models.OrderStatusApproved, reason)
	return err
}

// StartIfApproved moves approved to in_progress. Triggered by production activity.
func (l *OrderLifecycle) StartIfApproved(u *unit, order *models.Order, reason string) error {
	_, err := l.promote(u, order, models.OrderStatusApproved, models.OrderStatusInProgress, reason)
	return err
}

// FinishIfProductionDone moves an in_progress order out of production once
// every one of its jobs is completed. The destination depends on the delivery method.
func (l *OrderLifecycle) FinishIfProductionDone(u *unit, order *models.Order, reason string) error {
	if order.Status != models.OrderStatusInProgress {
		return nil
	}

	var open int64
	if err := u.tx.Model(&models.Job{}).
		Where("order_id = ? AND status <> ?", order.ID, models.JobStatusCompleted).
		Count(&open).Error; err != nil {
		return Unexpected("failed to count open jobs", err)
	}
	if open > 0 {
		return nil
	}

	next := models.OrderStatusReadyToCollect
	if order.DeliveryMethod == models.DeliveryDelivery {
		next = models.OrderStatusInDelivery
	}
	_, err := l.promote(u, order, models.OrderStatusInProgress, next, reason)
	return err
}

// Approve is the explicit operator approval of a pending order
func (l *OrderLifecycle) Approve(u *unit, order *models.Order) error {
	if order.Status != models.OrderStatusPending {
		return PreconditionFailed("ORDER_NOT_PENDING", "only pending orders can be approved")
	}
	_, err := l.promote(u, order, models.OrderStatusPending, models.OrderStatusApproved, "approved by operator")
	return err
}

// Override writes any declared status without checking adjacency.
// This is the administrative escape hatch; automatic flows never call it.
func (l *OrderLifecycle) Override(u *unit, order *models.Order, status models.OrderStatus) error {
	if !status.Valid() {
		return FieldInvalid("status", "unknown order status")
	}
	if order.Status == status {
		return nil
	}

	from := order.Status
	if err := u.tx.Model(&models.Order{}).Where("id = ?", order.ID).Update("status", status).Error; err != nil {
		return Unexpected("failed to update order status", err)
	}
	order.Status = status
	u.record(l.event(order, from, status, "status override"))
	return nil
}

// promote performs the guarded from→to update and reports whether it applied
func (l *OrderLifecycle) promote(u *unit, order *models.Order, from, to models.OrderStatus, reason string) (bool, error) {
	if order.Status != from {
		return false, nil
	}

	res := u.tx.Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, from).
		Update("status", to)
	if res.Error != nil {
		return false, Unexpected("failed to update order status", res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	order.Status = to
	u.record(l.event(order, from, to, reason))
	return true, nil
}

func (l *OrderLifecycle) event(order *models.Order, from, to models.OrderStatus, reason string) OrderEvent {
	return OrderEvent{
		Type:         EventOrderStatusChanged,
		OrderID:      order.ID,
		TrackingCode: order.TrackingCode,
		From:         from,
		To:           to,
		Reason:       reason,
		OccurredAt:   l.now(),
	}
}

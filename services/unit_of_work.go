package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/FaizGusion00/fazztrack-backend/logger"
	"github.com/FaizGusion00/fazztrack-backend/models"
)

// unit is one transaction plus the events it produced
type unit struct {
	tx     *gorm.DB
	events []OrderEvent
}

func (u *unit) record(e OrderEvent) {
	u.events = append(u.events, e)
}

// core holds what every service needs
type core struct {
	db        *gorm.DB
	gate      AuthorizationGate
	events    EventPublisher
	lifecycle *OrderLifecycle
	now       func() time.Time
}

// inTx runs fn in a transaction and publishes the recorded events once it commits
func (c *core) inTx(ctx context.Context, fn func(u *unit) error) error {
	u := &unit{}
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u.tx = tx
		return fn(u)
	})
	if err != nil {
		err = normalize(err)
		if IsKind(err, KindUnexpected) {
			logger.FromContext(ctx).Error("transaction failed", zap.Error(err))
		}
		return err
	}

	for _, e := range u.events {
		if pubErr := c.events.Publish(ctx, e); pubErr != nil {
			logger.FromContext(ctx).Warn("failed to publish order event",
				zap.String("type", e.Type),
				zap.Uint("order_id", e.OrderID),
				zap.Error(pubErr))
		}
	}
	return nil
}

// authorize returns Forbidden when the gate denies the action
func (c *core) authorize(actor *models.User, resource Resource, action Action, target *Target) error {
	if !c.gate.Allow(actor, resource, action, target) {
		return Forbidden("you are not allowed to " + string(action) + " " + string(resource))
	}
	return nil
}

// lockOrder loads the order row and holds it for the rest of the transaction.
// Operations on the same order serialize here.
func lockOrder(tx *gorm.DB, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, orderID).Error; err != nil {
		return nil, lookupError(err, "order")
	}
	return &order, nil
}

// loadUser fetches a user for role checks
func loadUser(tx *gorm.DB, id uint, field string) (*models.User, error) {
	var user models.User
	if err := tx.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, FieldInvalid(field, "user does not exist")
		}
		return nil, Unexpected("failed to load user", err)
	}
	return &user, nil
}

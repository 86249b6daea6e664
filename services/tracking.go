package services

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/FaizGusion00/fazztrack-backend/models"
)

// PhaseNotStarted is reported for phases that have no job yet
const PhaseNotStarted = "not_started"

// TrackingPhase is one row of the public progress view
type TrackingPhase struct {
	Phase     models.Phase `json:"phase"`
	PhaseName string       `json:"phase_name"`
	Status    string       `json:"status"`
	StartTime *time.Time   `json:"start_time"`
	EndTime   *time.Time   `json:"end_time"`
}

// TrackingView is what a client sees when looking up an order
type TrackingView struct {
	TrackingID         string                `json:"tracking_id"`
	OrderID            uint                  `json:"order_id"`
	JobName            string                `json:"job_name"`
	Status             models.OrderStatus    `json:"status"`
	CreatedAt          string                `json:"created_at"`
	DeliveryMethod     models.DeliveryMethod `json:"delivery_method"`
	EstimatedDelivery  string                `json:"estimated_delivery"`
	DeliveryTrackingID *string               `json:"delivery_tracking_id,omitempty"`
	Phases             []TrackingPhase       `json:"phases"`
	ProgressPercentage int                   `json:"progress_percentage"`
}

// TrackByCode looks an order up by its public tracking code. No authentication is needed.
func (s *OrderService) TrackByCode(ctx context.Context, code string) (*TrackingView, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, FieldInvalid("tracking_id", "is required")
	}

	var order models.Order
	if err := s.db.WithContext(ctx).Preload("Jobs").Where("tracking_code = ?", code).First(&order).Error; err != nil {
		return nil, lookupError(err, "order")
	}
	return buildTrackingView(&order), nil
}

// TrackByID looks an order up by id for the public tracking page
func (s *OrderService) TrackByID(ctx context.Context, id uint) (*TrackingView, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).Preload("Jobs").First(&order, id).Error; err != nil {
		return nil, lookupError(err, "order")
	}
	return buildTrackingView(&order), nil
}

func buildTrackingView(order *models.Order) *TrackingView {
	jobs := byPhase(order.Jobs)
	phases := make([]TrackingPhase, 0, len(models.Phases()))
	for _, phase := range models.Phases() {
		row := TrackingPhase{Phase: phase, PhaseName: phase.DisplayName(), Status: PhaseNotStarted}
		if j, ok := jobs[phase]; ok {
			row.Status = string(j.Status)
			row.StartTime = j.StartTime
			row.EndTime = j.EndTime
		}
		phases = append(phases, row)
	}

	view := &TrackingView{
		TrackingID:         order.TrackingCode,
		OrderID:            order.ID,
		JobName:            order.JobName,
		Status:             order.Status,
		CreatedAt:          order.CreatedAt.Format("2006-01-02"),
		DeliveryMethod:     order.DeliveryMethod,
		EstimatedDelivery:  order.EstimatedDeliveryDate.Format("2006-01-02"),
		Phases:             phases,
		ProgressPercentage: ProgressPercentage(order.Jobs),
	}
	if order.DeliveryMethod == models.DeliveryDelivery {
		view.DeliveryTrackingID = order.DeliveryTrackingID
	}
	return view
}

// ProgressPercentage weighs completed phases fully and in-progress phases by half
func ProgressPercentage(jobs []models.Job) int {
	var completed, inProgress float64
	for _, j := range jobs {
		switch j.Status {
		case models.JobStatusCompleted:
			completed++
		case models.JobStatusInProgress:
			inProgress++
		}
	}
	total := float64(len(models.Phases()))
	return int(math.Round((completed + 0.5*inProgress) / total * 100))
}

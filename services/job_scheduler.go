package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/FaizGusion00/fazztrack-backend/models"
)

// JobScheduler sequences production jobs across the fixed phase order
type JobScheduler struct {
	core
	publicBaseURL string
}

// JobInput is a new job
type JobInput struct {
	OrderID    uint
	Phase      models.Phase
	AssignedTo uint
	Status     *models.JobStatus
	Remarks    *string
}

// JobUpdate carries a reassignment and/or status override; nil fields are left alone
type JobUpdate struct {
	AssignedTo *uint
	Status     *models.JobStatus
	Remarks    *string
}

// ScanResult is what a production worker sees after scanning a job sheet
type ScanResult struct {
	Job         *models.Job `json:"job"`
	CanStart    bool        `json:"can_start"`
	CanComplete bool        `json:"can_complete"`
}

// Create schedules a job for one phase of an order
func (s *JobScheduler) Create(ctx context.Context, actor *models.User, in JobInput) (*models.Job, error) {
	if err := s.authorize(actor, ResourceJobs, ActionCreate, nil); err != nil {
		return nil, err
	}
	if !in.Phase.Valid() {
		return nil, FieldInvalid("phase", "unknown phase")
	}
	initial := models.JobStatusPending
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, FieldInvalid("status", "unknown job status")
		}
		initial = *in.Status
	}

	job := &models.Job{
		OrderID:    in.OrderID,
		Phase:      in.Phase,
		Status:     initial,
		AssignedTo: in.AssignedTo,
		ScanToken:  newScanToken(),
		Remarks:    in.Remarks,
	}

	err := s.inTx(ctx, func(u *unit) error {
		order, err := lockOrder(u.tx, in.OrderID)
		if err != nil {
			return err
		}
		if !order.Status.AcceptsJobs() {
			return PreconditionFailed("ORDER_NOT_READY", "jobs can only be created for approved or in-progress orders")
		}

		jobs, err := orderJobs(u, order.ID)
		if err != nil {
			return err
		}
		if _, exists := jobs[in.Phase]; exists {
			if in.Phase == models.PhaseDesign {
				return PreconditionFailed("DESIGN_JOB_EXISTS", "order already has a design job")
			}
			return PreconditionFailed("PHASE_JOB_EXISTS", fmt.Sprintf("order already has a %s job", in.Phase))
		}
		if in.Phase != models.PhaseDesign {
			design, ok := jobs[models.PhaseDesign]
			if !ok || design.Status != models.JobStatusCompleted {
				return PreconditionFailed("DESIGN_NOT_COMPLETED", "the design job must be completed before production jobs are created")
			}
		}

		if err := checkAssignee(u, in.AssignedTo, in.Phase); err != nil {
			return err
		}
		if err := u.tx.Create(job).Error; err != nil {
			if IsDuplicateKey(err) {
				return Conflict("PHASE_JOB_EXISTS", fmt.Sprintf("order already has a %s job", in.Phase))
			}
			return Unexpected("failed to create job", err)
		}
		return s.lifecycle.StartIfApproved(u, order, fmt.Sprintf("%s job created", in.Phase))
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// Get returns a job with its assignee
func (s *JobScheduler) Get(ctx context.Context, actor *models.User, id uint) (*models.Job, error) {
	if err := s.authorize(actor, ResourceJobs, ActionView, nil); err != nil {
		return nil, err
	}

	var job models.Job
	if err := s.db.WithContext(ctx).Preload("Assignee").First(&job, id).Error; err != nil {
		return nil, lookupError(err, "job")
	}
	return &job, nil
}

// Start begins a pending job once the previous phase is completed
func (s *JobScheduler) Start(ctx context.Context, actor *models.User, id uint) (*models.Job, error) {
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, ResourceJobs, ActionStart, &Target{AssigneeID: current.AssignedTo}); err != nil {
		return nil, err
	}

	var job *models.Job
	err = s.inTx(ctx, func(u *unit) error {
		order, j, err := lockJob(u, id)
		if err != nil {
			return err
		}
		if j.Status != models.JobStatusPending {
			return PreconditionFailed("JOB_NOT_PENDING", "only pending jobs can be started")
		}

		jobs, err := orderJobs(u, order.ID)
		if err != nil {
			return err
		}
		if !predecessorDone(j.Phase, jobs) {
			return PreconditionFailed("PREVIOUS_PHASE_INCOMPLETE", "the previous phase must be completed first")
		}

		now := s.now()
		j.Status = models.JobStatusInProgress
		j.StartTime = &now
		if err := u.tx.Model(j).Select("status", "start_time").Updates(j).Error; err != nil {
			return Unexpected("failed to start job", err)
		}
		if err := s.lifecycle.StartIfApproved(u, order, fmt.Sprintf("%s job started", j.Phase)); err != nil {
			return err
		}
		job = j
		return nil
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// Complete finishes an in-progress job and records how long it took.
// Completing the last phase moves the order out of production once every job is done.
func (s *JobScheduler) Complete(ctx context.Context, actor *models.User, id uint) (*models.Job, error) {
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, ResourceJobs, ActionComplete, &Target{AssigneeID: current.AssignedTo}); err != nil {
		return nil, err
	}

	var job *models.Job
	err = s.inTx(ctx, func(u *unit) error {
		order, j, err := lockJob(u, id)
		if err != nil {
			return err
		}
		if j.Status != models.JobStatusInProgress {
			return PreconditionFailed("JOB_NOT_IN_PROGRESS", "only in-progress jobs can be completed")
		}

		now := s.now()
		j.Status = models.JobStatusCompleted
		j.EndTime = &now
		minutes := 0
		if j.StartTime != nil {
			minutes = wholeMinutes(*j.StartTime, now)
		}
		j.DurationMinutes = &minutes
		if err := u.tx.Model(j).Select("status", "end_time", "duration_minutes").Updates(j).Error; err != nil {
			return Unexpected("failed to complete job", err)
		}

		if j.Phase.IsLast() {
			if err := s.lifecycle.FinishIfProductionDone(u, order, fmt.Sprintf("%s job completed", j.Phase)); err != nil {
				return err
			}
		}
		job = j
		return nil
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// Update reassigns a job and/or overrides its status without sequencing checks
func (s *JobScheduler) Update(ctx context.Context, actor *models.User, id uint, upd JobUpdate) (*models.Job, error) {
	if err := s.authorize(actor, ResourceJobs, ActionUpdate, nil); err != nil {
		return nil, err
	}
	if upd.Status != nil && !upd.Status.Valid() {
		return nil, FieldInvalid("status", "unknown job status")
	}

	var job *models.Job
	err := s.inTx(ctx, func(u *unit) error {
		_, j, err := lockJob(u, id)
		if err != nil {
			return err
		}

		changes := map[string]interface{}{}
		if upd.AssignedTo != nil {
			if err := checkAssignee(u, *upd.AssignedTo, j.Phase); err != nil {
				return err
			}
			j.AssignedTo = *upd.AssignedTo
			changes["assigned_to"] = j.AssignedTo
		}
		if upd.Status != nil {
			j.Status = *upd.Status
			changes["status"] = j.Status
		}
		if upd.Remarks != nil {
			j.Remarks = upd.Remarks
			changes["remarks"] = *upd.Remarks
		}
		if len(changes) > 0 {
			if err := u.tx.Model(j).Updates(changes).Error; err != nil {
				return Unexpected("failed to update job", err)
			}
		}
		job = j
		return nil
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// Delete removes a job that has not been started
func (s *JobScheduler) Delete(ctx context.Context, actor *models.User, id uint) error {
	if err := s.authorize(actor, ResourceJobs, ActionDelete, nil); err != nil {
		return err
	}

	return s.inTx(ctx, func(u *unit) error {
		_, j, err := lockJob(u, id)
		if err != nil {
			return err
		}
		if j.Status != models.JobStatusPending {
			return PreconditionFailed("JOB_NOT_PENDING", "only pending jobs can be deleted")
		}
		if err := u.tx.Delete(j).Error; err != nil {
			return Unexpected("failed to delete job", err)
		}
		return nil
	})
}

// AccessByScanToken resolves a scanned job sheet. It never changes state.
func (s *JobScheduler) AccessByScanToken(ctx context.Context, actor *models.User, token string) (*ScanResult, error) {
	var job models.Job
	if err := s.db.WithContext(ctx).Preload("Order").Preload("Assignee").
		Where("scan_token = ?", token).First(&job).Error; err != nil {
		return nil, lookupError(err, "job")
	}
	if err := s.authorize(actor, ResourceJobs, ActionScan, &Target{AssigneeID: job.AssignedTo}); err != nil {
		return nil, err
	}

	// Sequencing is enforced by Start, not by the scan sheet
	result := &ScanResult{
		Job:         &job,
		CanStart:    job.Status == models.JobStatusPending,
		CanComplete: job.Status == models.JobStatusInProgress,
	}
	return result, nil
}

// ScanURL is the link encoded in the job sheet QR code
func (s *JobScheduler) ScanURL(job *models.Job) string {
	return strings.TrimRight(s.publicBaseURL, "/") + "/api/v1/jobs/qr/" + job.ScanToken
}

func (s *JobScheduler) load(ctx context.Context, id uint) (*models.Job, error) {
	var job models.Job
	if err := s.db.WithContext(ctx).First(&job, id).Error; err != nil {
		return nil, lookupError(err, "job")
	}
	return &job, nil
}

// lockJob locks the owning order and reloads the job under that lock
func lockJob(u *unit, id uint) (*models.Order, *models.Job, error) {
	var j models.Job
	if err := u.tx.Select("id", "order_id").First(&j, id).Error; err != nil {
		return nil, nil, lookupError(err, "job")
	}
	order, err := lockOrder(u.tx, j.OrderID)
	if err != nil {
		return nil, nil, err
	}
	if err := u.tx.First(&j, id).Error; err != nil {
		return nil, nil, lookupError(err, "job")
	}
	return order, &j, nil
}

func orderJobs(u *unit, orderID uint) (map[models.Phase]models.Job, error) {
	var jobs []models.Job
	if err := u.tx.Where("order_id = ?", orderID).Find(&jobs).Error; err != nil {
		return nil, Unexpected("failed to load order jobs", err)
	}
	return byPhase(jobs), nil
}

func byPhase(jobs []models.Job) map[models.Phase]models.Job {
	out := make(map[models.Phase]models.Job, len(jobs))
	for _, j := range jobs {
		out[j.Phase] = j
	}
	return out
}

// predecessorDone reports whether phase may start given the order's jobs
func predecessorDone(phase models.Phase, jobs map[models.Phase]models.Job) bool {
	prev, ok := phase.Previous()
	if !ok {
		return true
	}
	j, exists := jobs[prev]
	return exists && j.Status == models.JobStatusCompleted
}

// checkAssignee requires the user's production role to match the phase
func checkAssignee(u *unit, userID uint, phase models.Phase) error {
	user, err := loadUser(u.tx, userID, "assigned_to")
	if err != nil {
		return err
	}
	if !user.HasProductionRole(phase.RequiredRole()) {
		return PreconditionFailed("ROLE_MISMATCH", fmt.Sprintf("assigned user must have the %s production role", phase.RequiredRole()))
	}
	return nil
}

func newScanToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// wholeMinutes is the elapsed time truncated to whole minutes, never negative
func wholeMinutes(start, end time.Time) int {
	d := end.Sub(start)
	if d < 0 {
		return 0
	}
	return int(d / time.Minute)
}

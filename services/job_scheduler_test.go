package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FaizGusion00/fazztrack-backend/models"
)

func TestJobScheduler_CreateGating(t *testing.T) {
	e := newTestEnv(t)

	pending := e.createOrder()
	_, err := e.reg.Jobs.Create(e.ctx, e.fx.Admin, JobInput{OrderID: pending.ID, Phase: models.PhaseDesign, AssignedTo: e.fx.Designer.ID})
	requireKind(t, err, KindPrecondition, "ORDER_NOT_READY")

	order := e.approvedOrder()

	tests := []struct {
		name string
		in   JobInput
		kind ErrorKind
		code string
	}{
		{"unknown phase", JobInput{OrderID: order.ID, Phase: "embroidery", AssignedTo: e.fx.Designer.ID}, KindValidation, ""},
		{"production before design", JobInput{OrderID: order.ID, Phase: models.PhasePrint, AssignedTo: e.fx.Worker(models.PhasePrint).ID}, KindPrecondition, "DESIGN_NOT_COMPLETED"},
		{"wrong role", JobInput{OrderID: order.ID, Phase: models.PhaseDesign, AssignedTo: e.fx.Worker(models.PhasePrint).ID}, KindPrecondition, "ROLE_MISMATCH"},
		{"unknown assignee", JobInput{OrderID: order.ID, Phase: models.PhaseDesign, AssignedTo: 9999}, KindValidation, ""},
		{"unknown order", JobInput{OrderID: 9999, Phase: models.PhaseDesign, AssignedTo: e.fx.Designer.ID}, KindNotFound, "ORDER_NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.reg.Jobs.Create(e.ctx, e.fx.Admin, tt.in)
			requireKind(t, err, tt.kind, tt.code)
		})
	}

	// Production staff cannot schedule work
	_, err = e.reg.Jobs.Create(e.ctx, e.fx.Worker(models.PhasePrint), JobInput{OrderID: order.ID, Phase: models.PhaseDesign, AssignedTo: e.fx.Designer.ID})
	requireKind(t, err, KindForbidden, "")

	design := e.createJob(order.ID, models.PhaseDesign)
	assert.Equal(t, models.JobStatusPending, design.Status)
	assert.Len(t, design.ScanToken, 32)
	assert.Equal(t, "https://track.fazztrack.test/api/v1/jobs/qr/"+design.ScanToken, e.reg.Jobs.ScanURL(design))

	_, err = e.reg.Jobs.Create(e.ctx, e.fx.Admin, JobInput{OrderID: order.ID, Phase: models.PhaseDesign, AssignedTo: e.fx.Designer.ID})
	requireKind(t, err, KindPrecondition, "DESIGN_JOB_EXISTS")

	// A design job that is not completed still blocks production phases
	_, err = e.reg.Jobs.Create(e.ctx, e.fx.Admin, JobInput{OrderID: order.ID, Phase: models.PhaseCut, AssignedTo: e.fx.Worker(models.PhaseCut).ID})
	requireKind(t, err, KindPrecondition, "DESIGN_NOT_COMPLETED")
}

func TestJobScheduler_OneJobPerPhase(t *testing.T) {
	e := newTestEnv(t)
	order := e.approvedOrder()
	e.runJob(order.ID, models.PhaseDesign)

	e.createJob(order.ID, models.PhaseSew)
	_, err := e.reg.Jobs.Create(e.ctx, e.fx.Admin, JobInput{OrderID: order.ID, Phase: models.PhaseSew, AssignedTo: e.fx.Worker(models.PhaseSew).ID})
	requireKind(t, err, KindPrecondition, "PHASE_JOB_EXISTS")

	var count int64
	require.NoError(t, e.db.Model(&models.Job{}).Where("order_id = ? AND phase = ?", order.ID, models.PhaseSew).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestJobScheduler_StartRequiresPreviousPhase(t *testing.T) {
	e := newTestEnv(t)
	order := e.approvedOrder()
	e.runJob(order.ID, models.PhaseDesign)

	// press created before print exists
	press := e.createJob(order.ID, models.PhasePress)
	_, err := e.reg.Jobs.Start(e.ctx, e.fx.Worker(models.PhasePress), press.ID)
	requireKind(t, err, KindPrecondition, "PREVIOUS_PHASE_INCOMPLETE")

	printJob := e.createJob(order.ID, models.PhasePrint)
	_, err = e.reg.Jobs.Start(e.ctx, e.fx.Worker(models.PhasePrint), printJob.ID)
	require.NoError(t, err)

	// print is in progress, not completed
	_, err = e.reg.Jobs.Start(e.ctx, e.fx.Worker(models.PhasePress), press.ID)
	requireKind(t, err, KindPrecondition, "PREVIOUS_PHASE_INCOMPLETE")

	_, err = e.reg.Jobs.Complete(e.ctx, e.fx.Worker(models.PhasePrint), printJob.ID)
	require.NoError(t, err)
	started, err := e.reg.Jobs.Start(e.ctx, e.fx.Worker(models.PhasePress), press.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusInProgress, started.Status)
	assert.Equal(t, e.clock.Now(), *started.StartTime)

	_, err = e.reg.Jobs.Start(e.ctx, e.fx.Worker(models.PhasePress), press.ID)
	requireKind(t, err, KindPrecondition, "JOB_NOT_PENDING")
}

func TestJobScheduler_OnlyAssigneeActs(t *testing.T) {
	e := newTestEnv(t)
	order := e.approvedOrder()
	design := e.createJob(order.ID, models.PhaseDesign)

	_, err := e.reg.Jobs.Start(e.ctx, e.fx.Worker(models.PhasePrint), design.ID)
	requireKind(t, err, KindForbidden, "")

	// Admins may act on anyone's job
	_, err = e.reg.Jobs.Start(e.ctx, e.fx.Admin, design.ID)
	require.NoError(t, err)
}

func TestJobScheduler_CompleteRecordsDuration(t *testing.T) {
	e := newTestEnv(t)
	order := e.approvedOrder()
	job := e.createJob(order.ID, models.PhaseDesign)

	_, err := e.reg.Jobs.Complete(e.ctx, e.fx.Designer, job.ID)
	requireKind(t, err, KindPrecondition, "JOB_NOT_IN_PROGRESS")

	_, err = e.reg.Jobs.Start(e.ctx, e.fx.Designer, job.ID)
	require.NoError(t, err)
	e.clock.Advance(95*time.Minute + 59*time.Second)

	done, err := e.reg.Jobs.Complete(e.ctx, e.fx.Designer, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, done.Status)
	require.NotNil(t, done.DurationMinutes)
	assert.Equal(t, 95, *done.DurationMinutes)

	_, err = e.reg.Jobs.Complete(e.ctx, e.fx.Designer, job.ID)
	requireKind(t, err, KindPrecondition, "JOB_NOT_IN_PROGRESS")
}

func TestWholeMinutes(t *testing.T) {
	start := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		end  time.Time
		want int
	}{
		{"same instant", start, 0},
		{"under a minute", start.Add(59 * time.Second), 0},
		{"truncates", start.Add(2*time.Hour + 30*time.Second), 120},
		{"end before start", start.Add(-time.Hour), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, wholeMinutes(start, tt.end))
		})
	}
}

func TestJobScheduler_UpdateAndDelete(t *testing.T) {
	e := newTestEnv(t)
	order := e.approvedOrder()
	job := e.createJob(order.ID, models.PhaseDesign)

	other := e.fx.Worker(models.PhaseQC)
	_, err := e.reg.Jobs.Update(e.ctx, e.fx.Admin, job.ID, JobUpdate{AssignedTo: &other.ID})
	requireKind(t, err, KindPrecondition, "ROLE_MISMATCH")

	// Status override skips sequencing
	completed := models.JobStatusCompleted
	remarks := "done offline"
	updated, err := e.reg.Jobs.Update(e.ctx, e.fx.Admin, job.ID, JobUpdate{Status: &completed, Remarks: &remarks})
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, updated.Status)
	assert.Equal(t, "done offline", *updated.Remarks)

	err = e.reg.Jobs.Delete(e.ctx, e.fx.Admin, job.ID)
	requireKind(t, err, KindPrecondition, "JOB_NOT_PENDING")

	printJob := e.createJob(order.ID, models.PhasePrint)
	require.NoError(t, e.reg.Jobs.Delete(e.ctx, e.fx.Admin, printJob.ID))
	_, err = e.reg.Jobs.Get(e.ctx, e.fx.Admin, printJob.ID)
	requireKind(t, err, KindNotFound, "JOB_NOT_FOUND")
}

func TestJobScheduler_AccessByScanToken(t *testing.T) {
	e := newTestEnv(t)
	order := e.approvedOrder()
	e.runJob(order.ID, models.PhaseDesign)
	printJob := e.createJob(order.ID, models.PhasePrint)
	press := e.createJob(order.ID, models.PhasePress)
	printer := e.fx.Worker(models.PhasePrint)

	res, err := e.reg.Jobs.AccessByScanToken(e.ctx, printer, printJob.ScanToken)
	require.NoError(t, err)
	assert.True(t, res.CanStart)
	assert.False(t, res.CanComplete)
	assert.Equal(t, printJob.ID, res.Job.ID)

	// A pending job reports can_start even while its predecessor is open; Start still refuses it
	res, err = e.reg.Jobs.AccessByScanToken(e.ctx, e.fx.Admin, press.ScanToken)
	require.NoError(t, err)
	assert.True(t, res.CanStart)
	_, err = e.reg.Jobs.Start(e.ctx, e.fx.Worker(models.PhasePress), press.ID)
	requireKind(t, err, KindPrecondition, "PREVIOUS_PHASE_INCOMPLETE")

	_, err = e.reg.Jobs.Start(e.ctx, printer, printJob.ID)
	require.NoError(t, err)
	res, err = e.reg.Jobs.AccessByScanToken(e.ctx, printer, printJob.ScanToken)
	require.NoError(t, err)
	assert.False(t, res.CanStart)
	assert.True(t, res.CanComplete)

	// Scanning never changes state
	var job models.Job
	require.NoError(t, e.db.First(&job, printJob.ID).Error)
	assert.Equal(t, models.JobStatusInProgress, job.Status)

	_, err = e.reg.Jobs.AccessByScanToken(e.ctx, e.fx.Worker(models.PhaseQC), printJob.ScanToken)
	requireKind(t, err, KindForbidden, "")

	_, err = e.reg.Jobs.AccessByScanToken(e.ctx, printer, strings.Repeat("0", 32))
	requireKind(t, err, KindNotFound, "JOB_NOT_FOUND")
}

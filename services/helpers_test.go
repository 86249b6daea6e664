package services

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/FaizGusion00/fazztrack-backend/models"
	"github.com/FaizGusion00/fazztrack-backend/testutil"
)

// recordingPublisher keeps every published event
type recordingPublisher struct {
	mu     sync.Mutex
	events []OrderEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

// transitions renders the published status changes as "from>to"
func (p *recordingPublisher) transitions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, fmt.Sprintf("%s>%s", e.From, e.To))
	}
	return out
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// testEnv is a registry over an in-memory database with the standard fixtures
type testEnv struct {
	t      *testing.T
	ctx    context.Context
	db     *gorm.DB
	fx     *testutil.Fixtures
	reg    *Registry
	events *recordingPublisher
	clock  *testClock
	files  *MemoryFileStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.OpenDB(t)
	gate, err := NewCasbinGate()
	require.NoError(t, err)

	e := &testEnv{
		t:      t,
		ctx:    context.Background(),
		db:     db,
		fx:     testutil.Seed(t, db),
		events: &recordingPublisher{},
		clock:  &testClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)},
		files:  NewMemoryFileStore(),
	}
	e.reg = NewRegistry(Deps{
		DB:            db,
		Gate:          gate,
		Files:         e.files,
		Events:        e.events,
		Clock:         e.clock.Now,
		PublicBaseURL: "https://track.fazztrack.test/",
	})
	return e
}

func (e *testEnv) day(offset int) time.Time {
	y, m, d := e.clock.Now().AddDate(0, 0, offset).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// orderInput is a valid self-collect order: 10 x 45.00 with a 100.00 design deposit
func (e *testEnv) orderInput() CreateOrderInput {
	return CreateOrderInput{
		ClientID:              e.fx.Client.ID,
		JobName:               "Team jerseys",
		DeliveryMethod:        models.DeliverySelfCollect,
		DueDateDesign:         e.day(2),
		DueDateProduction:     e.day(9),
		EstimatedDeliveryDate: e.day(12),
		Items: []ItemInput{
			{ProductID: e.fx.Product.ID, Quantity: 10, Price: decimal.RequireFromString("45.00")},
		},
		Payments: []PaymentInput{
			{
				Type:          models.PaymentDepositDesign,
				PaymentMethod: models.PaymentMethodBankTransfer,
				Amount:        decimal.RequireFromString("100.00"),
				PaymentDate:   e.day(0),
			},
		},
	}
}

func (e *testEnv) createOrder(mutate ...func(*CreateOrderInput)) *models.Order {
	e.t.Helper()
	in := e.orderInput()
	for _, m := range mutate {
		m(&in)
	}
	order, err := e.reg.Orders.Create(e.ctx, e.fx.Sales, in)
	require.NoError(e.t, err)
	return order
}

// approvedOrder creates an order and approves its design deposit
func (e *testEnv) approvedOrder(mutate ...func(*CreateOrderInput)) *models.Order {
	e.t.Helper()
	order := e.createOrder(mutate...)
	_, err := e.reg.Payments.Approve(e.ctx, e.fx.Admin, order.Payments[0].ID)
	require.NoError(e.t, err)
	return order
}

func (e *testEnv) createJob(orderID uint, phase models.Phase) *models.Job {
	e.t.Helper()
	job, err := e.reg.Jobs.Create(e.ctx, e.fx.Admin, JobInput{
		OrderID:    orderID,
		Phase:      phase,
		AssignedTo: e.fx.Worker(phase).ID,
	})
	require.NoError(e.t, err)
	return job
}

// runJob creates, starts and completes the job for phase
func (e *testEnv) runJob(orderID uint, phase models.Phase) *models.Job {
	e.t.Helper()
	job := e.createJob(orderID, phase)
	worker := e.fx.Worker(phase)
	_, err := e.reg.Jobs.Start(e.ctx, worker, job.ID)
	require.NoError(e.t, err)
	e.clock.Advance(30 * time.Minute)
	done, err := e.reg.Jobs.Complete(e.ctx, worker, job.ID)
	require.NoError(e.t, err)
	return done
}

func (e *testEnv) orderStatus(id uint) models.OrderStatus {
	e.t.Helper()
	var order models.Order
	require.NoError(e.t, e.db.First(&order, id).Error)
	return order.Status
}

// fileHeader builds a multipart file header as gin would hand it over
func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(body, writer.Boundary()).ReadForm(int64(len(content)) + 1024)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["file"][0]
}

func requireKind(t *testing.T, err error, kind ErrorKind, code string) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, KindOf(err), "unexpected error: %v", err)
	if code != "" {
		var se *Error
		require.ErrorAs(t, err, &se)
		require.Equal(t, code, se.Code)
	}
}

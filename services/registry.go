package services

import (
	"time"

	"gorm.io/gorm"
)

// Deps are the collaborators shared by every service
type Deps struct {
	DB            *gorm.DB
	Gate          AuthorizationGate
	Files         FileStore
	Events        EventPublisher
	Clock         func() time.Time
	PublicBaseURL string
}

// Registry groups the domain services the HTTP layer talks to
type Registry struct {
	Orders      *OrderService
	Payments    *PaymentLedger
	Designs     *DesignWorkflow
	Jobs        *JobScheduler
	Attachments *AttachmentService
	Lifecycle   *OrderLifecycle
}

var registryInstance *Registry

// NewRegistry wires the services together. Missing optional deps get safe defaults.
func NewRegistry(deps Deps) *Registry {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Events == nil {
		deps.Events = NopPublisher{}
	}
	if deps.Files == nil {
		deps.Files = NewMemoryFileStore()
	}
	if deps.Gate == nil {
		deps.Gate = AllowAll{}
	}

	lifecycle := NewOrderLifecycle(deps.Clock)
	c := core{
		db:        deps.DB,
		gate:      deps.Gate,
		events:    deps.Events,
		lifecycle: lifecycle,
		now:       deps.Clock,
	}

	attachments := &AttachmentService{core: c, files: deps.Files}
	return &Registry{
		Orders:      &OrderService{core: c, files: deps.Files},
		Payments:    &PaymentLedger{core: c},
		Designs:     &DesignWorkflow{core: c, attachments: attachments},
		Jobs:        &JobScheduler{core: c, publicBaseURL: deps.PublicBaseURL},
		Attachments: attachments,
		Lifecycle:   lifecycle,
	}
}

// InitRegistry builds the registry and makes it available through GetRegistry
func InitRegistry(deps Deps) *Registry {
	registryInstance = NewRegistry(deps)
	return registryInstance
}

// GetRegistry returns the registry built by InitRegistry
func GetRegistry() *Registry {
	return registryInstance
}

// SetRegistry replaces the registry (primarily for testing)
func SetRegistry(r *Registry) {
	registryInstance = r
}

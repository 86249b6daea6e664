package services

import (
	_ "embed"
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	stringadapter "github.com/casbin/casbin/v2/persist/string-adapter"

	"github.com/FaizGusion00/fazztrack-backend/models"
)

//go:embed rbac_model.conf
var rbacModel string

//go:embed rbac_policy.csv
var rbacPolicy string

// Resource is a protected area of the API
type Resource string

const (
	ResourceOrders   Resource = "orders"
	ResourcePayments Resource = "payments"
	ResourceDesigns  Resource = "designs"
	ResourceJobs     Resource = "jobs"
	ResourceFiles    Resource = "files"
)

// Action is something an actor does to a resource
type Action string

const (
	ActionView         Action = "view"
	ActionCreate       Action = "create"
	ActionUpdate       Action = "update"
	ActionUpdateStatus Action = "update_status"
	ActionApprove      Action = "approve"
	ActionReject       Action = "reject"
	ActionDelete       Action = "delete"
	ActionUpload       Action = "upload"
	ActionFinalize     Action = "finalize"
	ActionStart        Action = "start"
	ActionComplete     Action = "complete"
	ActionScan         Action = "scan"
)

// Target carries the ownership facts of the entity being acted on.
// Zero IDs mean the fact does not apply.
type Target struct {
	OrderCreatorID uint
	DesignerID     uint
	AssigneeID     uint
}

// AuthorizationGate decides whether an actor may perform an action
type AuthorizationGate interface {
	Allow(actor *models.User, resource Resource, action Action, target *Target) bool
}

// CasbinGate checks department permissions against a casbin RBAC table and
// then applies ownership rules for the departments that only act on their own work.
type CasbinGate struct {
	enforcer *casbin.SyncedEnforcer
}

// NewCasbinGate loads the embedded RBAC model and policy
func NewCasbinGate() (*CasbinGate, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RBAC model: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m, stringadapter.NewAdapter(rbacPolicy))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize RBAC enforcer: %w", err)
	}

	return &CasbinGate{enforcer: enforcer}, nil
}

// Allow implements AuthorizationGate
func (g *CasbinGate) Allow(actor *models.User, resource Resource, action Action, target *Target) bool {
	if actor == nil {
		return false
	}
	if actor.IsSuperAdmin() {
		return true
	}

	allowed, err := g.enforcer.Enforce(actor.Department, string(resource), string(action))
	if err != nil || !allowed {
		return false
	}
	if target == nil {
		return true
	}
	return ownsTarget(actor, resource, action, target)
}

// ownsTarget applies the per-department ownership rules
func ownsTarget(actor *models.User, resource Resource, action Action, target *Target) bool {
	switch actor.Department {
	case models.DepartmentSales:
		if resource == ResourceOrders && (action == ActionUpdate || action == ActionUpdateStatus || action == ActionDelete) {
			return target.OrderCreatorID == actor.ID
		}
	case models.DepartmentDesigner, models.DepartmentProductionStaff:
		switch resource {
		case ResourceJobs:
			if action == ActionStart || action == ActionComplete || action == ActionScan {
				return target.AssigneeID == actor.ID
			}
		case ResourceDesigns:
			if action == ActionUpdate || action == ActionUpload || action == ActionFinalize {
				return target.DesignerID == actor.ID
			}
		}
	}
	return true
}

// AllowAll is a gate that permits everything. Used by internal callers such as the CLI.
type AllowAll struct{}

// Allow implements AuthorizationGate
func (AllowAll) Allow(*models.User, Resource, Action, *Target) bool {
	return true
}

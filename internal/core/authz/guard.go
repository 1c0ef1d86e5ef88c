// Package authz decides whether an actor may perform an operation on a
// resource. Role-level rules live in a casbin policy; ownership is passed in
// as the request scope so the decision stays a pure function of its inputs.
package authz

import (
	"fmt"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/supportdesk/support-system/internal/core/domain"
)

type Resource string

const (
	ResourceClient      Resource = "client"
	ResourceTicket      Resource = "ticket"
	ResourcePortabilite Resource = "portabilite"
	ResourceEchange     Resource = "echange"
	ResourcePrincipal   Resource = "principal"
)

type Operation string

const (
	OpRead      Operation = "read"
	OpCreate    Operation = "create"
	OpUpdate    Operation = "update"
	OpDelete    Operation = "delete"
	OpAssign    Operation = "assign"
	OpSetStatus Operation = "set_status"
	OpComment   Operation = "comment"
)

const (
	scopeAny   = "any"
	scopeOwn   = "own"
	scopeOther = "other"
)

const policyModel = `
[request_definition]
r = sub, obj, act, scope

[policy_definition]
p = sub, obj, act, scope

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act && (p.scope == "any" || p.scope == r.scope)
`

type rule struct {
	role  domain.Role
	res   Resource
	ops   []Operation
	scope string
}

var defaultRules = []rule{
	{domain.RoleAgent, ResourceClient, []Operation{OpRead, OpCreate, OpUpdate, OpDelete}, scopeAny},
	{domain.RoleAgent, ResourceTicket, []Operation{OpRead, OpCreate, OpUpdate, OpAssign, OpSetStatus, OpComment}, scopeAny},
	{domain.RoleAgent, ResourcePortabilite, []Operation{OpRead, OpCreate, OpUpdate, OpSetStatus, OpDelete, OpComment}, scopeAny},
	{domain.RoleAgent, ResourceEchange, []Operation{OpDelete}, scopeAny},
	{domain.RoleAgent, ResourcePrincipal, []Operation{OpRead, OpCreate}, scopeAny},

	{domain.RoleDemandeur, ResourceClient, []Operation{OpRead}, scopeAny},
	{domain.RoleDemandeur, ResourceTicket, []Operation{OpRead, OpCreate, OpUpdate, OpComment}, scopeOwn},
	{domain.RoleDemandeur, ResourcePortabilite, []Operation{OpRead, OpCreate, OpUpdate, OpComment}, scopeOwn},
	{domain.RoleDemandeur, ResourcePrincipal, []Operation{OpRead}, scopeOwn},
}

// Guard wraps a casbin enforcer loaded with the built-in policy.
type Guard struct {
	mu       sync.RWMutex
	enforcer *casbin.Enforcer
}

func NewGuard() (*Guard, error) {
	m, err := model.NewModelFromString(policyModel)
	if err != nil {
		return nil, fmt.Errorf("load authorization model: %w", err)
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create enforcer: %w", err)
	}
	for _, r := range defaultRules {
		for _, op := range r.ops {
			if _, err := enforcer.AddPolicy(string(r.role), string(r.res), string(op), r.scope); err != nil {
				return nil, fmt.Errorf("add policy %s/%s/%s: %w", r.role, r.res, op, err)
			}
		}
	}
	return &Guard{enforcer: enforcer}, nil
}

// MustNewGuard panics if the built-in policy cannot be loaded.
func MustNewGuard() *Guard {
	g, err := NewGuard()
	if err != nil {
		panic(err)
	}
	return g
}

// CanAccess reports whether actor may perform op on res. ownerID is the
// demandeur owning the target entity, or the would-be owner on create; pass ""
// for unowned resources.
func (g *Guard) CanAccess(actor domain.Actor, op Operation, res Resource, ownerID string) bool {
	if actor.ID == "" || !actor.Role.Valid() {
		return false
	}
	scope := scopeOther
	if ownerID != "" && ownerID == actor.ID {
		scope = scopeOwn
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	ok, err := g.enforcer.Enforce(string(actor.Role), string(res), string(op), scope)
	return err == nil && ok
}

// Authorize is CanAccess returning domain.ErrForbidden on denial.
func (g *Guard) Authorize(actor domain.Actor, op Operation, res Resource, ownerID string) error {
	if !g.CanAccess(actor, op, res, ownerID) {
		return domain.ErrForbidden
	}
	return nil
}

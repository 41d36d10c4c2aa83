// Package permission decides what a user may do with an entity. A casbin
// matrix grants actions per group and object type; "own" grants are then
// narrowed by the user's association with the entity.
package permission

import (
	_ "embed"
	"fmt"

	"portfee/internal/logger"
	"portfee/internal/model"

	"github.com/casbin/casbin/v2"
	casbinmodel "github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

// NewEnforcer builds an enforcer over the built-in role matrix.
func NewEnforcer() (*casbin.SyncedEnforcer, error) {
	m, err := casbinmodel.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse permission model: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create enforcer: %w", err)
	}
	if _, err := enforcer.AddPolicies(defaultPolicies()); err != nil {
		return nil, fmt.Errorf("failed to load policies: %w", err)
	}
	return enforcer, nil
}

// NewStoredEnforcer keeps the matrix in the casbin_rule table, seeding it with
// the default grants when the table is empty.
func NewStoredEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create policy adapter: %w", err)
	}
	m, err := casbinmodel.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse permission model: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("failed to create enforcer: %w", err)
	}
	enforcer.EnableAutoSave(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("failed to load policies: %w", err)
	}
	var stored int64
	if err := db.Model(&gormadapter.CasbinRule{}).Count(&stored).Error; err != nil {
		return nil, fmt.Errorf("failed to count policies: %w", err)
	}
	if stored == 0 {
		for _, rule := range defaultPolicies() {
			if _, err := enforcer.AddPolicy(rule); err != nil {
				return nil, fmt.Errorf("failed to seed policy %v: %w", rule, err)
			}
		}
	}
	return enforcer, nil
}

type Evaluator struct {
	enforcer *casbin.SyncedEnforcer
	log      *zap.Logger
}

func NewEvaluator(enforcer *casbin.SyncedEnforcer, log *zap.Logger) *Evaluator {
	return &Evaluator{enforcer: enforcer, log: logger.OrNop(log).Named("permission")}
}

// New is NewEvaluator over NewEnforcer.
func New(log *zap.Logger) (*Evaluator, error) {
	enforcer, err := NewEnforcer()
	if err != nil {
		return nil, err
	}
	return NewEvaluator(enforcer, log), nil
}

func (ev *Evaluator) allowed(user *model.User, object string, action Action, scope string) bool {
	ok, err := ev.enforcer.Enforce(string(user.Group), object, string(action), scope)
	if err != nil {
		ev.log.Error("permission check failed",
			zap.Error(err),
			zap.String("group", string(user.Group)),
			zap.String("object", object),
			zap.String("action", string(action)))
		return false
	}
	return ok
}

func active(user *model.User) bool {
	return user != nil && user.IsActive
}

// HasPermission reports whether the user may perform the action on the entity.
//
// With viaGroup set, a group-wide grant is enough. Without it, the user must
// also be associated with the entity. Inactive or missing users are always
// refused; superusers are always allowed. Invoiced forms cannot be deleted by
// anyone but a superuser.
func (ev *Evaluator) HasPermission(entity Entity, user *model.User, action Action, viaGroup bool) bool {
	if !active(user) {
		return false
	}
	if user.IsSuperuser {
		return true
	}
	resolved, ok := resolve(entity)
	if !ok {
		return false
	}
	if form, isForm := resolved.(model.HarborDuesForm); isForm && action == ActionDelete && form.Status.IsInvoiced() {
		return false
	}

	object := resolved.PermissionObject()
	if viaGroup && ev.allowed(user, object, action, ScopeAll) {
		return true
	}
	if !ev.allowed(user, object, action, ScopeOwn) {
		return false
	}
	return owns(resolved, user, action)
}

// CanAct reports whether the user may perform the action on at least some
// entities of the object type. Use it to gate creation and listing.
func (ev *Evaluator) CanAct(user *model.User, object string, action Action) bool {
	if !active(user) {
		return false
	}
	if user.IsSuperuser {
		return true
	}
	return ev.allowed(user, object, action, ScopeOwn)
}

// Grant is one row of the matrix.
type Grant struct {
	Group  model.Group `json:"group"`
	Object string      `json:"object"`
	Action Action      `json:"action"`
	Scope  string      `json:"scope"`
}

func (g Grant) rule() []string {
	return []string{string(g.Group), g.Object, string(g.Action), g.Scope}
}

// Grants lists the matrix in stored order.
func (ev *Evaluator) Grants() ([]Grant, error) {
	rules, err := ev.enforcer.GetPolicy()
	if err != nil {
		return nil, fmt.Errorf("failed to read policies: %w", err)
	}
	grants := make([]Grant, 0, len(rules))
	for _, r := range rules {
		if len(r) < 4 {
			continue
		}
		grants = append(grants, Grant{Group: model.Group(r[0]), Object: r[1], Action: Action(r[2]), Scope: r[3]})
	}
	return grants, nil
}

// AddGrant reports false when the grant already exists.
func (ev *Evaluator) AddGrant(g Grant) (bool, error) {
	return ev.enforcer.AddPolicy(g.rule())
}

// RemoveGrant reports false when there was no such grant.
func (ev *Evaluator) RemoveGrant(g Grant) (bool, error) {
	return ev.enforcer.RemovePolicy(g.rule())
}

// Filter keeps the items the user may perform the action on, in order.
func Filter[T Entity](ev *Evaluator, items []T, user *model.User, action Action) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if ev.HasPermission(item, user, action, true) {
			out = append(out, item)
		}
	}
	return out
}

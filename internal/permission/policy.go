package permission

import (
	"fmt"

	"portfee/internal/model"
)

// Action is something a user does to an entity.
type Action string

const (
	ActionView    Action = "view"
	ActionAdd     Action = "add"
	ActionChange  Action = "change"
	ActionDelete  Action = "delete"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionInvoice Action = "invoice"
	ActionPay     Action = "pay"
)

// Scopes: "all" grants the action on every entity of the object type, "own"
// only on entities the user is associated with.
const (
	ScopeAll = "all"
	ScopeOwn = "own"
)

func grant(group model.Group, object string, scope string, actions ...Action) [][]string {
	rules := make([][]string, 0, len(actions))
	for _, a := range actions {
		rules = append(rules, []string{string(group), object, string(a), scope})
	}
	return rules
}

var referenceData = []string{
	model.ObjectTaxRates,
	model.ObjectPortTaxRate,
	model.ObjectDisembarkmentTaxRate,
	model.ObjectDisembarkmentSite,
}

// defaultPolicies is the role matrix. Ownership for "own" rules is decided
// per entity by owns.
func defaultPolicies() [][]string {
	var p [][]string

	// Tax authority administers everything except the port authority workflow.
	p = append(p, grant(model.GroupTaxAuthority, "*", ScopeAll, ActionView, ActionAdd, ActionChange, ActionDelete)...)
	p = append(p, grant(model.GroupTaxAuthority, model.ObjectHarborDuesForm, ScopeAll, ActionPay)...)

	// Port authority
	p = append(p, grant(model.GroupPortAuthority, model.ObjectHarborDuesForm, ScopeOwn,
		ActionView, ActionChange, ActionApprove, ActionReject, ActionInvoice)...)
	p = append(p, grant(model.GroupPortAuthority, model.ObjectPort, ScopeOwn, ActionView)...)
	p = append(p, grant(model.GroupPortAuthority, model.ObjectPortAuthority, ScopeOwn, ActionView, ActionChange)...)
	p = append(p, grant(model.GroupPortAuthority, model.ObjectShippingAgent, ScopeAll, ActionView)...)
	for _, obj := range referenceData {
		p = append(p, grant(model.GroupPortAuthority, obj, ScopeAll, ActionView)...)
	}

	// Shipping agent
	p = append(p, grant(model.GroupShippingAgent, model.ObjectHarborDuesForm, ScopeOwn, ActionView, ActionChange)...)
	p = append(p, grant(model.GroupShippingAgent, model.ObjectHarborDuesForm, ScopeAll, ActionAdd, ActionDelete)...)
	p = append(p, grant(model.GroupShippingAgent, model.ObjectShippingAgent, ScopeOwn, ActionView, ActionChange)...)
	p = append(p, grant(model.GroupShippingAgent, model.ObjectPort, ScopeAll, ActionView)...)
	for _, obj := range referenceData {
		p = append(p, grant(model.GroupShippingAgent, obj, ScopeAll, ActionView)...)
	}

	// Ship (vessel self-service)
	p = append(p, grant(model.GroupShip, model.ObjectHarborDuesForm, ScopeOwn, ActionView, ActionChange)...)
	p = append(p, grant(model.GroupShip, model.ObjectHarborDuesForm, ScopeAll, ActionAdd)...)
	p = append(p, grant(model.GroupShip, model.ObjectPort, ScopeAll, ActionView)...)
	for _, obj := range referenceData {
		p = append(p, grant(model.GroupShip, obj, ScopeAll, ActionView)...)
	}

	return p
}

var knownActions = map[Action]bool{
	ActionView: true, ActionAdd: true, ActionChange: true, ActionDelete: true,
	ActionApprove: true, ActionReject: true, ActionInvoice: true, ActionPay: true,
}

var knownObjects = map[string]bool{
	"*":                              true,
	model.ObjectHarborDuesForm:       true,
	model.ObjectPort:                 true,
	model.ObjectPortAuthority:        true,
	model.ObjectShippingAgent:        true,
	model.ObjectDisembarkmentSite:    true,
	model.ObjectTaxRates:             true,
	model.ObjectPortTaxRate:          true,
	model.ObjectDisembarkmentTaxRate: true,
}

// Validate rejects grants naming an unknown group, object, action or scope.
func (g Grant) Validate() error {
	switch {
	case !g.Group.Valid():
		return fmt.Errorf("unknown group %q", g.Group)
	case !knownObjects[g.Object]:
		return fmt.Errorf("unknown object %q", g.Object)
	case !knownActions[g.Action]:
		return fmt.Errorf("unknown action %q", g.Action)
	case g.Scope != ScopeAll && g.Scope != ScopeOwn:
		return fmt.Errorf("scope must be %q or %q", ScopeAll, ScopeOwn)
	}
	return nil
}

package permission

import (
	"portfee/internal/model"

	"github.com/google/uuid"
)

// Entity is anything the evaluator can decide on. The set is closed: resolve
// rejects types it does not know.
type Entity interface {
	PermissionObject() string
}

// resolve dereferences the known pointer types. A nil pointer or an unknown
// type is reported as not ok.
func resolve(entity Entity) (Entity, bool) {
	switch e := entity.(type) {
	case *model.HarborDuesForm:
		if e == nil {
			return nil, false
		}
		return *e, true
	case *model.Port:
		if e == nil {
			return nil, false
		}
		return *e, true
	case *model.PortAuthority:
		if e == nil {
			return nil, false
		}
		return *e, true
	case *model.ShippingAgent:
		if e == nil {
			return nil, false
		}
		return *e, true
	case *model.DisembarkmentSite:
		if e == nil {
			return nil, false
		}
		return *e, true
	case *model.TaxRates:
		if e == nil {
			return nil, false
		}
		return *e, true
	case *model.PortTaxRate:
		if e == nil {
			return nil, false
		}
		return *e, true
	case *model.DisembarkmentTaxRate:
		if e == nil {
			return nil, false
		}
		return *e, true
	case model.HarborDuesForm, model.Port, model.PortAuthority, model.ShippingAgent,
		model.DisembarkmentSite, model.TaxRates, model.PortTaxRate, model.DisembarkmentTaxRate:
		return e, true
	}
	return nil, false
}

func sameID(a, b *uuid.UUID) bool {
	return a != nil && b != nil && *a == *b
}

// owns decides the "own" scope: whether the user is associated with the entity.
func owns(entity Entity, user *model.User, action Action) bool {
	if user.Group == model.GroupTaxAuthority {
		return true
	}
	switch e := entity.(type) {
	case model.HarborDuesForm:
		return ownsForm(&e, user, action)
	case model.Port:
		return user.Group == model.GroupPortAuthority && managesPort(user, &e)
	case model.PortAuthority:
		return user.Group == model.GroupPortAuthority && sameID(&e.ID, user.PortAuthorityID)
	case model.ShippingAgent:
		return user.Group == model.GroupShippingAgent && sameID(&e.ID, user.ShippingAgentID)
	}
	return false
}

func ownsForm(form *model.HarborDuesForm, user *model.User, action Action) bool {
	switch user.Group {
	case model.GroupPortAuthority:
		switch action {
		case ActionApprove, ActionReject, ActionInvoice:
			if form.Status != model.StatusNew {
				return false
			}
		}
		if form.PortOfCall == nil || !sameID(form.PortOfCallID, &form.PortOfCall.ID) {
			return false
		}
		return managesPort(user, form.PortOfCall)
	case model.GroupShippingAgent:
		return sameID(form.ShippingAgentID, user.ShippingAgentID)
	case model.GroupShip:
		return user.Username != "" && form.VesselIMO == user.Username
	}
	return false
}

// managesPort reports whether the port belongs to the user's port authority
// and, for a user narrowed to one port, is that port.
func managesPort(user *model.User, port *model.Port) bool {
	if !sameID(port.PortAuthorityID, user.PortAuthorityID) {
		return false
	}
	return user.PortID == nil || *user.PortID == port.ID
}

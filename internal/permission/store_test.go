package permission

import (
	"fmt"
	"strings"
	"testing"

	"portfee/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	return db
}

func TestStoredEnforcer_SeedsOnceAndPersistsChanges(t *testing.T) {
	db := openDB(t)

	enforcer, err := NewStoredEnforcer(db)
	require.NoError(t, err)
	ev := NewEvaluator(enforcer, nil)

	grants, err := ev.Grants()
	require.NoError(t, err)
	assert.Len(t, grants, len(defaultPolicies()))

	pay := Grant{Group: model.GroupTaxAuthority, Object: model.ObjectHarborDuesForm, Action: ActionPay, Scope: ScopeAll}
	removed, err := ev.RemoveGrant(pay)
	require.NoError(t, err)
	assert.True(t, removed)

	extra := Grant{Group: model.GroupShip, Object: model.ObjectShippingAgent, Action: ActionView, Scope: ScopeAll}
	added, err := ev.AddGrant(extra)
	require.NoError(t, err)
	assert.True(t, added)
	added, err = ev.AddGrant(extra)
	require.NoError(t, err)
	assert.False(t, added, "duplicate grant")

	// a second process sees the edited matrix, not a reseeded one
	reloaded, err := NewStoredEnforcer(db)
	require.NoError(t, err)
	ev2 := NewEvaluator(reloaded, nil)

	skat := &model.User{Username: "skat", Group: model.GroupTaxAuthority, IsActive: true}
	ship := &model.User{Username: "9074729", Group: model.GroupShip, IsActive: true}
	form := &model.HarborDuesForm{Status: model.StatusInvoiced}
	assert.False(t, ev2.HasPermission(form, skat, ActionPay, true))
	assert.True(t, ev2.CanAct(ship, model.ObjectShippingAgent, ActionView))

	grants, err = ev2.Grants()
	require.NoError(t, err)
	assert.Len(t, grants, len(defaultPolicies()))
}

func TestGrant_Validate(t *testing.T) {
	ok := Grant{Group: model.GroupShip, Object: model.ObjectPort, Action: ActionView, Scope: ScopeAll}
	assert.NoError(t, ok.Validate())

	tests := map[string]Grant{
		"group":  {Group: "pirates", Object: model.ObjectPort, Action: ActionView, Scope: ScopeAll},
		"object": {Group: model.GroupShip, Object: "lighthouse", Action: ActionView, Scope: ScopeAll},
		"action": {Group: model.GroupShip, Object: model.ObjectPort, Action: "sink", Scope: ScopeAll},
		"scope":  {Group: model.GroupShip, Object: model.ObjectPort, Action: ActionView, Scope: "some"},
	}
	for name, g := range tests {
		t.Run(name, func(t *testing.T) {
			assert.ErrorContains(t, g.Validate(), name)
		})
	}
}

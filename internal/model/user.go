package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Group is the role a user acts in.
type Group string

const (
	GroupPortAuthority Group = "PortAuthority"
	GroupShippingAgent Group = "ShippingAgent"
	GroupTaxAuthority  Group = "TaxAuthority"
	GroupShip          Group = "Ship"
)

func (g Group) Valid() bool {
	switch g {
	case GroupPortAuthority, GroupShippingAgent, GroupTaxAuthority, GroupShip:
		return true
	}
	return false
}

// User is an account acting in one group. For Ship accounts the username is
// the vessel's IMO number.
type User struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Username        string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	Email           string         `gorm:"type:varchar(255)" json:"email"`
	Password        string         `gorm:"type:varchar(255);not null" json:"-"` // bcrypt hash
	Group           Group          `gorm:"type:varchar(50)" json:"group"`
	IsSuperuser     bool           `gorm:"default:false" json:"is_superuser"`
	IsActive        bool           `gorm:"not null" json:"is_active"`
	PortAuthorityID *uuid.UUID     `gorm:"type:uuid;index" json:"port_authority_id"`
	PortAuthority   *PortAuthority `gorm:"foreignKey:PortAuthorityID" json:"-"`
	PortID          *uuid.UUID     `gorm:"type:uuid;index" json:"port_id"` // narrows a port authority user to one port
	ShippingAgentID *uuid.UUID     `gorm:"type:uuid;index" json:"shipping_agent_id"`
	ShippingAgent   *ShippingAgent `gorm:"foreignKey:ShippingAgentID" json:"-"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u *User) InGroup(g Group) bool {
	return u != nil && u.Group == g
}

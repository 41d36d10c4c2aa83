package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base carries the identity and timestamps shared by every persisted entity.
type Base struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a fresh id unless the caller already chose one.
func (b *Base) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Permission object names, shared by the role matrix and the entities themselves.
const (
	ObjectHarborDuesForm       = "harborduesform"
	ObjectPort                 = "port"
	ObjectPortAuthority        = "portauthority"
	ObjectShippingAgent        = "shippingagent"
	ObjectDisembarkmentSite    = "disembarkmentsite"
	ObjectTaxRates             = "taxrates"
	ObjectPortTaxRate          = "porttaxrate"
	ObjectDisembarkmentTaxRate = "disembarkmenttaxrate"
)

// sameID reports whether two optional references point at the same row.
// Two absent references are never equal.
func sameID(a, b *uuid.UUID) bool {
	return a != nil && b != nil && *a == *b
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionCreateTaxRates = "CREATE_TAX_RATES"
	ActionUpdateTaxRates = "UPDATE_TAX_RATES"
	ActionDeleteTaxRates = "DELETE_TAX_RATES"

	ActionCreateForm     = "CREATE_FORM"
	ActionUpdateForm     = "UPDATE_FORM"
	ActionDeleteForm     = "DELETE_FORM"
	ActionCalculateTaxes = "CALCULATE_TAXES"
	ActionFormTransition = "FORM_TRANSITION"

	ActionCreateReference = "CREATE_REFERENCE"
	ActionAddGrant        = "ADD_GRANT"
	ActionRemoveGrant     = "REMOVE_GRANT"
)

// AuditLog tracks who changed what and when.
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // nil for batch jobs
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string     `gorm:"type:text" json:"details"` // JSON payload
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

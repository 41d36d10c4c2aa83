package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type VesselType string

const (
	VesselTypeFreighter VesselType = "FREIGHTER"
	VesselTypeFisher    VesselType = "FISHER"
	VesselTypePassenger VesselType = "PASSENGER"
	VesselTypeCruise    VesselType = "CRUISE"
	VesselTypeOther     VesselType = "OTHER"
)

func (v VesselType) Valid() bool {
	switch v {
	case VesselTypeFreighter, VesselTypeFisher, VesselTypePassenger, VesselTypeCruise, VesselTypeOther:
		return true
	}
	return false
}

// HarborDuesForm is a vessel call record. Cruise calls additionally carry
// passenger counts and disembarkments. The three tax fields are filled in by
// the tax calculation; null means the tax does not apply.
type HarborDuesForm struct {
	Base
	Status              Status          `gorm:"type:varchar(20);not null;default:'DRAFT';index" json:"status"`
	PortOfCallID        *uuid.UUID      `gorm:"type:uuid;index" json:"port_of_call_id"`
	PortOfCall          *Port           `gorm:"foreignKey:PortOfCallID" json:"port_of_call,omitempty"`
	NoPortOfCall        bool            `gorm:"default:false" json:"no_port_of_call"`
	VesselName          string          `gorm:"type:varchar(255)" json:"vessel_name"`
	VesselIMO           string          `gorm:"type:varchar(20);index" json:"vessel_imo"`
	VesselOwner         string          `gorm:"type:varchar(255)" json:"vessel_owner"`
	VesselMaster        string          `gorm:"type:varchar(255)" json:"vessel_master"`
	ShippingAgentID     *uuid.UUID      `gorm:"type:uuid;index" json:"shipping_agent_id"`
	ShippingAgent       *ShippingAgent  `gorm:"foreignKey:ShippingAgentID" json:"shipping_agent,omitempty"`
	VesselType          VesselType      `gorm:"type:varchar(20);not null" json:"vessel_type"`
	GrossTonnage        *int            `json:"gross_tonnage"`
	DatetimeOfArrival   *time.Time      `json:"datetime_of_arrival"`
	DatetimeOfDeparture *time.Time      `json:"datetime_of_departure"`
	NumberOfPassengers  *int            `json:"number_of_passengers"`
	DateOfSubmission    *time.Time      `json:"date_of_submission"`
	ReasonText          string          `gorm:"type:text" json:"reason_text"`
	Disembarkments      []Disembarkment `gorm:"foreignKey:FormID;constraint:OnDelete:CASCADE" json:"disembarkments"`

	HarbourTax       decimal.NullDecimal `gorm:"type:decimal(14,2)" json:"harbour_tax"`
	PaxTax           decimal.NullDecimal `gorm:"type:decimal(14,2)" json:"pax_tax"`
	DisembarkmentTax decimal.NullDecimal `gorm:"type:decimal(14,2)" json:"disembarkment_tax"`
}

func (HarborDuesForm) PermissionObject() string { return ObjectHarborDuesForm }

// Disembarkment is one line item: passengers landed at a site.
type Disembarkment struct {
	Base
	FormID              uuid.UUID          `gorm:"type:uuid;not null;index" json:"form_id"`
	DisembarkmentSiteID uuid.UUID          `gorm:"type:uuid;not null" json:"disembarkment_site_id"`
	DisembarkmentSite   *DisembarkmentSite `gorm:"foreignKey:DisembarkmentSiteID" json:"disembarkment_site,omitempty"`
	NumberOfPassengers  int                `gorm:"not null" json:"number_of_passengers"`
	Position            int                `gorm:"not null;default:0" json:"-"` // insertion order within the form
}

func (f *HarborDuesForm) IsCruise() bool {
	return f.VesselType == VesselTypeCruise
}

func (f *HarborDuesForm) HasPortOfCall() bool {
	return f.PortOfCallID != nil && !f.NoPortOfCall
}

// Stay returns the arrival to departure interval, if both ends are known.
func (f *HarborDuesForm) Stay() (DateTimeRange, bool) {
	if f.DatetimeOfArrival == nil || f.DatetimeOfDeparture == nil {
		return DateTimeRange{}, false
	}
	return NewDateTimeRange(*f.DatetimeOfArrival, *f.DatetimeOfDeparture), true
}

// TaxReferenceDate is the instant passenger and disembarkment tax rates are
// looked up at: the arrival, or the submission date when there is no arrival.
func (f *HarborDuesForm) TaxReferenceDate() *time.Time {
	if f.DatetimeOfArrival != nil {
		return f.DatetimeOfArrival
	}
	return f.DateOfSubmission
}

// Field requirement predicates. Drafts require nothing.

func (f *HarborDuesForm) RequiresPortOfCall() bool {
	return f.Status != StatusDraft && !(f.IsCruise() && f.NoPortOfCall)
}

func (f *HarborDuesForm) RequiresGrossTonnage() bool {
	return f.RequiresPortOfCall()
}

func (f *HarborDuesForm) RequiresStayDates() bool {
	return f.RequiresPortOfCall()
}

func (f *HarborDuesForm) RequiresNumberOfPassengers() bool {
	return f.Status != StatusDraft && f.IsCruise() && !f.NoPortOfCall
}

func (f *HarborDuesForm) RequiresDisembarkments() bool {
	return f.Status != StatusDraft && f.IsCruise() && f.NoPortOfCall
}

// ValidationError lists the fields a form is missing or has wrong.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid harbour dues form: " + strings.Join(e.Fields, ", ")
}

// Validate applies the requirement predicates for the form's current status.
func (f *HarborDuesForm) Validate() error {
	var fields []string
	if !f.VesselType.Valid() {
		fields = append(fields, "vessel_type")
	}
	if !f.Status.Valid() {
		fields = append(fields, "status")
	}
	if f.RequiresPortOfCall() && f.PortOfCallID == nil {
		fields = append(fields, "port_of_call")
	}
	if f.RequiresGrossTonnage() && f.GrossTonnage == nil {
		fields = append(fields, "gross_tonnage")
	}
	if f.GrossTonnage != nil && *f.GrossTonnage < 0 {
		fields = append(fields, fmt.Sprintf("gross_tonnage (%d < 0)", *f.GrossTonnage))
	}
	if f.RequiresStayDates() {
		if f.DatetimeOfArrival == nil {
			fields = append(fields, "datetime_of_arrival")
		}
		if f.DatetimeOfDeparture == nil {
			fields = append(fields, "datetime_of_departure")
		}
	}
	if stay, ok := f.Stay(); ok && stay.End.Before(stay.Start) {
		fields = append(fields, "datetime_of_departure (before arrival)")
	}
	if f.RequiresNumberOfPassengers() && f.NumberOfPassengers == nil {
		fields = append(fields, "number_of_passengers")
	}
	if f.NumberOfPassengers != nil && *f.NumberOfPassengers < 0 {
		fields = append(fields, "number_of_passengers (negative)")
	}
	if f.RequiresDisembarkments() && len(f.Disembarkments) == 0 {
		fields = append(fields, "disembarkments")
	}
	for i, d := range f.Disembarkments {
		if d.NumberOfPassengers < 0 {
			fields = append(fields, fmt.Sprintf("disembarkments[%d].number_of_passengers", i))
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

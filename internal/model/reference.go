package model

import (
	"github.com/google/uuid"
)

// Municipality enumerates the Greenlandic municipalities by their official code.
type Municipality int

const (
	MunicipalityKujalleq     Municipality = 955
	MunicipalitySermersooq   Municipality = 956
	MunicipalityQeqqata      Municipality = 957
	MunicipalityQeqertalik   Municipality = 959
	MunicipalityAvannaata    Municipality = 960
	MunicipalityNationalPark Municipality = 961
)

var municipalityNames = map[Municipality]string{
	MunicipalityKujalleq:     "Kommune Kujalleq",
	MunicipalitySermersooq:   "Kommuneqarfik Sermersooq",
	MunicipalityQeqqata:      "Qeqqata Kommunia",
	MunicipalityQeqertalik:   "Kommune Qeqertalik",
	MunicipalityAvannaata:    "Avannaata Kommunia",
	MunicipalityNationalPark: "Nationalparken",
}

func (m Municipality) Valid() bool {
	_, ok := municipalityNames[m]
	return ok
}

func (m Municipality) String() string {
	if name, ok := municipalityNames[m]; ok {
		return name
	}
	return "unknown municipality"
}

// PortAuthority manages one or more ports.
type PortAuthority struct {
	Base
	Name  string `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Email string `gorm:"type:varchar(255)" json:"email"`
	Ports []Port `gorm:"foreignKey:PortAuthorityID" json:"ports,omitempty"`
}

func (PortAuthority) PermissionObject() string { return ObjectPortAuthority }

type Port struct {
	Base
	Name            string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	PortAuthorityID *uuid.UUID     `gorm:"type:uuid;index" json:"portauthority_id"`
	PortAuthority   *PortAuthority `gorm:"foreignKey:PortAuthorityID" json:"portauthority,omitempty"`
}

func (Port) PermissionObject() string { return ObjectPort }

type ShippingAgent struct {
	Base
	Name  string `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Email string `gorm:"type:varchar(255)" json:"email"`
}

func (ShippingAgent) PermissionObject() string { return ObjectShippingAgent }

// DisembarkmentSite is a landing place for cruise passengers outside a port call.
type DisembarkmentSite struct {
	Base
	Name                    string       `gorm:"type:varchar(255);not null" json:"name"`
	Municipality            Municipality `gorm:"not null;index" json:"municipality"`
	IsOutsidePopulatedAreas bool         `gorm:"default:false" json:"is_outside_populated_areas"`
}

func (DisembarkmentSite) PermissionObject() string { return ObjectDisembarkmentSite }

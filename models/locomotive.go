package models

import (
	"strings"
	"time"
)

type LocomotiveStatus string

const (
	LocomotiveActive     LocomotiveStatus = "active"
	LocomotiveRepair     LocomotiveStatus = "repair"
	LocomotiveReserve    LocomotiveStatus = "reserve"
	LocomotiveWrittenOff LocomotiveStatus = "written_off"
)

func (s LocomotiveStatus) Valid() bool {
	switch s {
	case LocomotiveActive, LocomotiveRepair, LocomotiveReserve, LocomotiveWrittenOff:
		return true
	}
	return false
}

// Locomotive представляет локомотив, закрепленный за депо.
type Locomotive struct {
	ID               int64            `json:"id" db:"id"`
	Number           string           `json:"number" db:"number"`
	Model            string           `json:"model" db:"model"`
	Series           string           `json:"series" db:"series"`
	OrganizationID   int64            `json:"organizationId" db:"organization_id"`
	OrganizationName string           `json:"organizationName" db:"organization_name"`
	Status           LocomotiveStatus `json:"status" db:"status"`
	CommissionedOn   *string          `json:"commissionedOn,omitempty" db:"commissioned_on"`
	MileageKm        int64            `json:"mileageKm" db:"mileage_km"`
	CreatedAt        time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time        `json:"updatedAt" db:"updated_at"`
}

type LocomotiveInput struct {
	Number         string           `json:"number"`
	Model          string           `json:"model"`
	Series         string           `json:"series"`
	OrganizationID int64            `json:"organizationId"`
	Status         LocomotiveStatus `json:"status"`
	CommissionedOn *string          `json:"commissionedOn"`
	MileageKm      int64            `json:"mileageKm"`
}

func (in *LocomotiveInput) Validate(FormMode) error {
	v := &ValidationError{}
	in.Number = strings.TrimSpace(in.Number)
	requireText(v, "number", in.Number)
	requireText(v, "model", in.Model)
	if in.OrganizationID <= 0 {
		v.Add("organizationId", msgRequired)
	}
	if in.Status == "" {
		in.Status = LocomotiveActive
	} else if !in.Status.Valid() {
		v.Add("status", msgInvalidValue)
	}
	in.CommissionedOn = NormalizeOptional(in.CommissionedOn)
	optionalDate(v, "commissionedOn", in.CommissionedOn)
	if in.MileageKm < 0 {
		v.Add("mileageKm", msgNonNegative)
	}
	return v.Err()
}

// LocomotiveRef - общая часть записей, привязанных к локомотиву.
type LocomotiveRef struct {
	LocomotiveID     int64  `json:"locomotiveId" db:"locomotive_id"`
	LocomotiveNumber string `json:"locomotiveNumber" db:"locomotive_number"`
}

func requireLocomotive(v *ValidationError, id int64) {
	if id <= 0 {
		v.Add("locomotiveId", msgRequired)
	}
}

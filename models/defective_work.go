package models

import "time"

type DefectStatus string

const (
	DefectOpen  DefectStatus = "open"
	DefectFixed DefectStatus = "fixed"
)

// DefectiveWorkEntry - выявленная неисправность и ход ее устранения.
type DefectiveWorkEntry struct {
	ID int64 `json:"id" db:"id"`
	LocomotiveRef
	Component   string       `json:"component" db:"component"`
	Description string       `json:"description" db:"description"`
	DetectedOn  string       `json:"detectedOn" db:"detected_on"`
	FixedOn     *string      `json:"fixedOn,omitempty" db:"fixed_on"`
	Status      DefectStatus `json:"status" db:"status"`
	CreatedAt   time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time    `json:"updatedAt" db:"updated_at"`
}

type DefectiveWorkInput struct {
	LocomotiveID int64        `json:"locomotiveId"`
	Component    string       `json:"component"`
	Description  string       `json:"description"`
	DetectedOn   string       `json:"detectedOn"`
	FixedOn      *string      `json:"fixedOn"`
	Status       DefectStatus `json:"status"`
}

// Validate также выравнивает статус: наличие даты устранения означает "fixed".
func (in *DefectiveWorkInput) Validate(FormMode) error {
	v := &ValidationError{}
	requireLocomotive(v, in.LocomotiveID)
	requireText(v, "component", in.Component)
	requireText(v, "description", in.Description)
	requireDate(v, "detectedOn", &in.DetectedOn)
	in.FixedOn = NormalizeOptional(in.FixedOn)
	optionalDate(v, "fixedOn", in.FixedOn)
	if in.FixedOn != nil && in.DetectedOn != "" && *in.FixedOn < in.DetectedOn {
		v.Add("fixedOn", msgInvalidValue)
	}
	switch in.Status {
	case "":
		in.Status = DefectOpen
	case DefectOpen, DefectFixed:
	default:
		v.Add("status", msgInvalidValue)
	}
	if in.FixedOn != nil {
		in.Status = DefectFixed
	}
	return v.Err()
}

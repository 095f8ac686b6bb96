package models

import "time"

// Inspection - плановая или внеплановая проверка локомотива с отслеживанием интервала.
// NextDueOn хранится в БД, RemainingDays вычисляется при чтении.
type Inspection struct {
	ID int64 `json:"id" db:"id"`
	LocomotiveRef
	Kind            string    `json:"kind" db:"kind"`
	IntervalDays    int       `json:"intervalDays" db:"interval_days"`
	LastInspectedOn string    `json:"lastInspectedOn" db:"last_inspected_on"`
	NextDueOn       string    `json:"nextDueOn" db:"next_due_on"`
	RemainingDays   int       `json:"remainingDays" db:"-"`
	Notes           string    `json:"notes" db:"notes"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

// Derive заполняет вычисляемые поля.
func (i *Inspection) Derive(today time.Time) {
	i.RemainingDays = DaysUntil(i.NextDueOn, today)
}

type InspectionInput struct {
	LocomotiveID    int64  `json:"locomotiveId"`
	Kind            string `json:"kind"`
	IntervalDays    int    `json:"intervalDays"`
	LastInspectedOn string `json:"lastInspectedOn"`
	Notes           string `json:"notes"`
}

func (in *InspectionInput) Validate(FormMode) error {
	v := &ValidationError{}
	requireLocomotive(v, in.LocomotiveID)
	requireText(v, "kind", in.Kind)
	if in.IntervalDays <= 0 {
		v.Add("intervalDays", msgPositive)
	}
	requireDate(v, "lastInspectedOn", &in.LastInspectedOn)
	return v.Err()
}

func (in *InspectionInput) NextDueOn() string {
	return DueDate(in.LastInspectedOn, in.IntervalDays)
}

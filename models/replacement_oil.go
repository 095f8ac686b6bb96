package models

import "time"

// ReplacementOil - график замены масла по секциям локомотива.
type ReplacementOil struct {
	ID int64 `json:"id" db:"id"`
	LocomotiveRef
	OilType        string    `json:"oilType" db:"oil_type"`
	Section        string    `json:"section" db:"section"`
	IntervalDays   int       `json:"intervalDays" db:"interval_days"`
	LastReplacedOn string    `json:"lastReplacedOn" db:"last_replaced_on"`
	NextDueOn      string    `json:"nextDueOn" db:"next_due_on"`
	RemainingDays  int       `json:"remainingDays" db:"-"`
	QuantityLiters float64   `json:"quantityLiters" db:"quantity_liters"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}

func (r *ReplacementOil) Derive(today time.Time) {
	r.RemainingDays = DaysUntil(r.NextDueOn, today)
}

type ReplacementOilInput struct {
	LocomotiveID   int64   `json:"locomotiveId"`
	OilType        string  `json:"oilType"`
	Section        string  `json:"section"`
	IntervalDays   int     `json:"intervalDays"`
	LastReplacedOn string  `json:"lastReplacedOn"`
	QuantityLiters float64 `json:"quantityLiters"`
}

func (in *ReplacementOilInput) Validate(FormMode) error {
	v := &ValidationError{}
	requireLocomotive(v, in.LocomotiveID)
	requireText(v, "oilType", in.OilType)
	if in.IntervalDays <= 0 {
		v.Add("intervalDays", msgPositive)
	}
	requireDate(v, "lastReplacedOn", &in.LastReplacedOn)
	if in.QuantityLiters < 0 {
		v.Add("quantityLiters", msgNonNegative)
	}
	return v.Err()
}

func (in *ReplacementOilInput) NextDueOn() string {
	return DueDate(in.LastReplacedOn, in.IntervalDays)
}

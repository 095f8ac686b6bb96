package models

import "time"

// DelayEntry - запись о задержке поезда по вине локомотива.
type DelayEntry struct {
	ID int64 `json:"id" db:"id"`
	LocomotiveRef
	TrainNumber  string    `json:"trainNumber" db:"train_number"`
	Station      string    `json:"station" db:"station"`
	Reason       string    `json:"reason" db:"reason"`
	DelayMinutes int       `json:"delayMinutes" db:"delay_minutes"`
	OccurredOn   string    `json:"occurredOn" db:"occurred_on"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

type DelayEntryInput struct {
	LocomotiveID int64  `json:"locomotiveId"`
	TrainNumber  string `json:"trainNumber"`
	Station      string `json:"station"`
	Reason       string `json:"reason"`
	DelayMinutes int    `json:"delayMinutes"`
	OccurredOn   string `json:"occurredOn"`
}

func (in *DelayEntryInput) Validate(FormMode) error {
	v := &ValidationError{}
	requireLocomotive(v, in.LocomotiveID)
	requireText(v, "trainNumber", in.TrainNumber)
	requireText(v, "station", in.Station)
	requireText(v, "reason", in.Reason)
	if in.DelayMinutes <= 0 {
		v.Add("delayMinutes", msgPositive)
	}
	requireDate(v, "occurredOn", &in.OccurredOn)
	return v.Err()
}

package models

import "time"

// Organization - депо или другое подразделение, которому принадлежат локомотивы.
type Organization struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Code      string    `json:"code" db:"code"`
	Address   string    `json:"address" db:"address"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type OrganizationInput struct {
	Name    string `json:"name"`
	Code    string `json:"code"`
	Address string `json:"address"`
}

func (in *OrganizationInput) Validate(FormMode) error {
	v := &ValidationError{}
	requireText(v, "name", in.Name)
	requireText(v, "code", in.Code)
	return v.Err()
}

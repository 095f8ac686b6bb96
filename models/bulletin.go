package models

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ColumnType - тип столбца бюллетеня.
type ColumnType string

const (
	ColumnText          ColumnType = "text"
	ColumnNumber        ColumnType = "number"
	ColumnDate          ColumnType = "date"
	ColumnClassificator ColumnType = "classificator"
)

func (t ColumnType) Valid() bool {
	switch t {
	case ColumnText, ColumnNumber, ColumnDate, ColumnClassificator:
		return true
	}
	return false
}

// BulletinColumn - именованный типизированный столбец пользовательской формы отчета.
type BulletinColumn struct {
	Key             string     `json:"key"`
	Name            string     `json:"name"`
	Type            ColumnType `json:"type"`
	ClassificatorID *int64     `json:"classificatorId,omitempty"`
	Required        bool       `json:"required"`
}

// Bulletin - пользовательская форма отчета. OrganizationID == nil означает общий бюллетень.
type Bulletin struct {
	ID             int64            `json:"id" db:"id"`
	Name           string           `json:"name" db:"name"`
	Description    string           `json:"description" db:"description"`
	OrganizationID *int64           `json:"organizationId" db:"organization_id"`
	ColumnsJson    string           `json:"-" db:"columns_json"`
	Columns        []BulletinColumn `json:"columns" db:"-"`
	RowCount       int              `json:"rowCount" db:"row_count"`
	CreatedAt      time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time        `json:"updatedAt" db:"updated_at"`
}

func (b *Bulletin) UpdateJsonProperties() error {
	if b.Columns == nil {
		b.Columns = []BulletinColumn{}
	}
	raw, err := json.Marshal(b.Columns)
	if err != nil {
		return err
	}
	b.ColumnsJson = string(raw)
	return nil
}

// LoadJsonProperties восстанавливает Columns; отсутствие столбцов дает пустой список, а не nil.
func (b *Bulletin) LoadJsonProperties() {
	b.Columns = []BulletinColumn{}
	if b.ColumnsJson == "" {
		return
	}
	if err := json.Unmarshal([]byte(b.ColumnsJson), &b.Columns); err != nil || b.Columns == nil {
		b.Columns = []BulletinColumn{}
	}
}

// ClassificatorIDs возвращает ID классификаторов, на которые ссылаются столбцы.
func (b *Bulletin) ClassificatorIDs() []int64 {
	var ids []int64
	for _, c := range b.Columns {
		if c.Type == ColumnClassificator && c.ClassificatorID != nil {
			ids = append(ids, *c.ClassificatorID)
		}
	}
	return ids
}

type BulletinInput struct {
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	OrganizationID *int64           `json:"organizationId"`
	Columns        []BulletinColumn `json:"columns"`
}

func (in *BulletinInput) Validate(FormMode) error {
	v := &ValidationError{}
	requireText(v, "name", in.Name)
	seen := make(map[string]struct{}, len(in.Columns))
	for i := range in.Columns {
		c := &in.Columns[i]
		c.Key = strings.TrimSpace(c.Key)
		if c.Key == "" || strings.TrimSpace(c.Name) == "" {
			v.Add("columns", msgRequired)
			continue
		}
		if _, dup := seen[c.Key]; dup {
			v.Add("columns", msgDuplicate)
		}
		seen[c.Key] = struct{}{}
		if !c.Type.Valid() {
			v.Add("columns", msgInvalidValue)
		}
		if c.Type == ColumnClassificator && c.ClassificatorID == nil {
			v.Add("columns", msgRequired)
		}
		if c.Type != ColumnClassificator {
			c.ClassificatorID = nil
		}
	}
	return v.Err()
}

// BulletinRow - запись бюллетеня: значения по ключам столбцов.
type BulletinRow struct {
	ID         int64             `json:"id" db:"id"`
	BulletinID int64             `json:"bulletinId" db:"bulletin_id"`
	ValuesJson string            `json:"-" db:"values_json"`
	ValuesText string            `json:"-" db:"values_text"`
	Values     map[string]string `json:"values" db:"-"`
	CreatedAt  time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time         `json:"updatedAt" db:"updated_at"`
}

func (r *BulletinRow) UpdateJsonProperties() error {
	if r.Values == nil {
		r.Values = map[string]string{}
	}
	raw, err := json.Marshal(r.Values)
	if err != nil {
		return err
	}
	r.ValuesJson = string(raw)
	r.ValuesText = valuesText(r.Values)
	return nil
}

// valuesText склеивает значения строки (без ключей) для поиска подстроки.
func valuesText(values map[string]string) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, values[k])
	}
	return strings.Join(parts, "\n")
}

func (r *BulletinRow) LoadJsonProperties() {
	r.Values = map[string]string{}
	if r.ValuesJson == "" {
		return
	}
	if err := json.Unmarshal([]byte(r.ValuesJson), &r.Values); err != nil || r.Values == nil {
		r.Values = map[string]string{}
	}
}

type BulletinRowInput struct {
	Values map[string]string `json:"values"`
}

// Validate проверяет только форму запроса; проверка по столбцам - ValidateAgainst.
func (in *BulletinRowInput) Validate(FormMode) error {
	if in.Values == nil {
		in.Values = map[string]string{}
	}
	return nil
}

// ValidateAgainst проверяет значения по столбцам бюллетеня.
// classificators содержит классификаторы, на которые ссылаются столбцы.
func (in *BulletinRowInput) ValidateAgainst(b *Bulletin, classificators map[int64]*Classificator) error {
	v := &ValidationError{}
	known := make(map[string]BulletinColumn, len(b.Columns))
	for _, c := range b.Columns {
		known[c.Key] = c
	}
	for key := range in.Values {
		if _, ok := known[key]; !ok {
			v.Add(key, msgUnknownColumn)
		}
	}
	for _, c := range b.Columns {
		value := strings.TrimSpace(in.Values[c.Key])
		if value == "" {
			if c.Required {
				v.Add(c.Key, msgRequired)
			}
			delete(in.Values, c.Key)
			continue
		}
		in.Values[c.Key] = value
		switch c.Type {
		case ColumnNumber:
			if _, err := strconv.ParseFloat(value, 64); err != nil {
				v.Add(c.Key, msgInvalidValue)
			}
		case ColumnDate:
			if _, err := ParseDate(value); err != nil {
				v.Add(c.Key, msgInvalidDate)
			}
		case ColumnClassificator:
			if c.ClassificatorID == nil {
				v.Add(c.Key, msgInvalidValue)
				continue
			}
			cl, ok := classificators[*c.ClassificatorID]
			if !ok || !cl.HasElement(value) {
				v.Add(c.Key, msgInvalidValue)
			}
		}
	}
	return v.Err()
}

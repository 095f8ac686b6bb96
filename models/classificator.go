package models

import (
	"encoding/json"
	"strings"
	"time"
)

// ClassificatorElement - элемент перечисления. ID задается пользователем и уникален в пределах классификатора.
type ClassificatorElement struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Classificator - именованный список элементов, на который ссылаются столбцы бюллетеней.
type Classificator struct {
	ID           int64                  `json:"id" db:"id"`
	Name         string                 `json:"name" db:"name"`
	Description  string                 `json:"description" db:"description"`
	ElementsJson string                 `json:"-" db:"elements_json"`
	Elements     []ClassificatorElement `json:"elements" db:"-"`
	CreatedAt    time.Time              `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time              `json:"updatedAt" db:"updated_at"`
}

// UpdateJsonProperties сериализует Elements в ElementsJson.
func (c *Classificator) UpdateJsonProperties() error {
	if c.Elements == nil {
		c.Elements = []ClassificatorElement{}
	}
	b, err := json.Marshal(c.Elements)
	if err != nil {
		return err
	}
	c.ElementsJson = string(b)
	return nil
}

// LoadJsonProperties десериализует ElementsJson. Битый JSON дает пустой список.
func (c *Classificator) LoadJsonProperties() {
	c.Elements = []ClassificatorElement{}
	if c.ElementsJson == "" {
		return
	}
	if err := json.Unmarshal([]byte(c.ElementsJson), &c.Elements); err != nil || c.Elements == nil {
		c.Elements = []ClassificatorElement{}
	}
}

// HasElement проверяет наличие элемента с данным ID.
func (c *Classificator) HasElement(id string) bool {
	for _, e := range c.Elements {
		if e.ID == id {
			return true
		}
	}
	return false
}

// WithoutElements возвращает копию списка элементов без указанных ID.
func (c *Classificator) WithoutElements(ids []string) []ClassificatorElement {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := make([]ClassificatorElement, 0, len(c.Elements))
	for _, e := range c.Elements {
		if _, ok := drop[e.ID]; !ok {
			kept = append(kept, e)
		}
	}
	return kept
}

type ClassificatorInput struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Elements    []ClassificatorElement `json:"elements"`
}

func (in *ClassificatorInput) Validate(FormMode) error {
	v := &ValidationError{}
	requireText(v, "name", in.Name)
	seen := make(map[string]struct{}, len(in.Elements))
	for i := range in.Elements {
		e := &in.Elements[i]
		e.ID = strings.TrimSpace(e.ID)
		if e.ID == "" || strings.TrimSpace(e.Name) == "" {
			v.Add("elements", msgRequired)
			continue
		}
		if _, dup := seen[e.ID]; dup {
			v.Add("elements", msgDuplicate)
		}
		seen[e.ID] = struct{}{}
	}
	return v.Err()
}

package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Префиксы унаследованных ключей замеров. Смысл ключей не интерпретируется,
// они хранятся и возвращаются как есть.
var MeasurementPrefixes = []string{"koren_", "shatun_"}

// ComponentRegistryEntry - запись реестра узлов, установленных на локомотив.
type ComponentRegistryEntry struct {
	ID int64 `json:"id" db:"id"`
	LocomotiveRef
	ComponentName    string            `json:"componentName" db:"component_name"`
	SerialNumber     string            `json:"serialNumber" db:"serial_number"`
	InstalledOn      *string           `json:"installedOn,omitempty" db:"installed_on"`
	MeasurementsJson string            `json:"-" db:"measurements_json"`
	Measurements     map[string]string `json:"measurements" db:"-"`
	CreatedAt        time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time         `json:"updatedAt" db:"updated_at"`
}

func (c *ComponentRegistryEntry) LoadJsonProperties() {
	c.Measurements = map[string]string{}
	if c.MeasurementsJson == "" {
		return
	}
	if err := json.Unmarshal([]byte(c.MeasurementsJson), &c.Measurements); err != nil || c.Measurements == nil {
		c.Measurements = map[string]string{}
	}
}

type ComponentInput struct {
	LocomotiveID  int64             `json:"locomotiveId"`
	ComponentName string            `json:"componentName"`
	SerialNumber  string            `json:"serialNumber"`
	InstalledOn   *string           `json:"installedOn"`
	Measurements  map[string]string `json:"measurements"`
}

func (in *ComponentInput) Validate(FormMode) error {
	v := &ValidationError{}
	requireLocomotive(v, in.LocomotiveID)
	requireText(v, "componentName", in.ComponentName)
	requireText(v, "serialNumber", in.SerialNumber)
	in.InstalledOn = NormalizeOptional(in.InstalledOn)
	optionalDate(v, "installedOn", in.InstalledOn)
	for key := range in.Measurements {
		if !IsMeasurementKey(key) {
			v.Add("measurements", msgInvalidValue)
		}
	}
	return v.Err()
}

// MeasurementsJSON сериализует замеры (nil превращается в пустой объект).
func (in *ComponentInput) MeasurementsJSON() (string, error) {
	m := in.Measurements
	if m == nil {
		m = map[string]string{}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// IsMeasurementKey проверяет, что ключ начинается с одного из унаследованных префиксов.
func IsMeasurementKey(key string) bool {
	for _, p := range MeasurementPrefixes {
		if strings.HasPrefix(key, p) && len(key) > len(p) {
			return true
		}
	}
	return false
}

package models

import (
	"errors"
	"strings"
	"time"
)

// FormMode определяет режим формы: создание или редактирование.
type FormMode string

const (
	ModeCreate FormMode = "create"
	ModeEdit   FormMode = "edit"
)

// DateLayout - формат дат (ISO, без времени), в котором API принимает и отдает даты.
const DateLayout = "2006-01-02"

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrReferenced         = errors.New("referenced by other records")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveUser       = errors.New("inactive user")
)

// Тексты ошибок валидации, которые показываются под полями формы.
const (
	msgRequired      = "Majburiy maydon"
	msgInvalidDate   = "Sana formati noto'g'ri (YYYY-MM-DD)"
	msgPositive      = "Musbat son bo'lishi kerak"
	msgNonNegative   = "Manfiy bo'lishi mumkin emas"
	msgInvalidValue  = "Noto'g'ri qiymat"
	msgDuplicate     = "Takrorlanuvchi qiymat"
	msgTooShort      = "Kamida 6 ta belgi bo'lishi kerak"
	msgUnknownColumn = "Noma'lum ustun"
	msgUnavailable   = "Tanlangan yozuv topilmadi yoki ruxsat yo'q"
)

// ValidationError собирает ошибки по полям формы.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	return "validation failed: " + strings.Join(keys, ", ")
}

// Add запоминает первую ошибку для поля.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = msg
	}
}

// Err возвращает nil, если ошибок нет.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// FieldError - короткий путь для одиночной ошибки поля.
func FieldError(field, msg string) error {
	v := &ValidationError{}
	v.Add(field, msg)
	return v
}

// Unavailable - ошибка поля, ссылающегося на запись вне области видимости или несуществующую.
func Unavailable(field string) error {
	return FieldError(field, msgUnavailable)
}

// Validator реализуется всеми входными DTO форм.
type Validator interface {
	Validate(mode FormMode) error
}

// Scope ограничивает выборку организацией (депо). nil - без ограничений.
type Scope struct {
	OrganizationID *int64
}

// Unrestricted сообщает, что ограничения по организации нет.
func (s Scope) Unrestricted() bool {
	return s.OrganizationID == nil
}

func requireText(v *ValidationError, field, value string) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, msgRequired)
	}
}

// requireDate проверяет обязательную дату и сохраняет ее без пробелов по краям.
func requireDate(v *ValidationError, field string, value *string) {
	*value = strings.TrimSpace(*value)
	if *value == "" {
		v.Add(field, msgRequired)
		return
	}
	if _, err := ParseDate(*value); err != nil {
		v.Add(field, msgInvalidDate)
	}
}

func optionalDate(v *ValidationError, field string, value *string) {
	if value == nil || *value == "" {
		return
	}
	if _, err := ParseDate(*value); err != nil {
		v.Add(field, msgInvalidDate)
	}
}

// ParseDate разбирает дату формата YYYY-MM-DD.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// NormalizeOptional превращает пустую строку в nil, чтобы в БД писался NULL.
func NormalizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// DueDate вычисляет дату следующего срока по дате последнего выполнения и интервалу.
func DueDate(last string, intervalDays int) string {
	t, err := ParseDate(last)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, intervalDays).Format(DateLayout)
}

// DaysUntil - количество дней от today до due (отрицательное, если срок прошел).
func DaysUntil(due string, today time.Time) int {
	t, err := ParseDate(due)
	if err != nil {
		return 0
	}
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(day).Hours() / 24)
}

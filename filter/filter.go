// Пакет filter переводит параметры строки запроса в параметры листинга и обратно.
// Одни и те же описания фильтров служат и серверу, и панели фильтров клиента.
package filter

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Стандартные ключи строки запроса.
const (
	KeySearch       = "q"
	KeyPage         = "page"
	KeyPageSize     = "pageSize"
	KeyOrganization = "organization"
	KeyLocomotive   = "locomotive"
	KeyStatus       = "status"
	KeyTab          = "tab"
	KeyRole         = "role"
	KeyFrom         = "from"
	KeyTo           = "to"
)

// Значения фильтра tab для графиков осмотров и замен.
const (
	TabAll      = "all"
	TabOverdue  = "overdue"
	TabUpcoming = "upcoming"

	// UpcomingDays - горизонт вкладки "upcoming".
	UpcomingDays = 30
)

// TabOptions - варианты вкладок для описания фильтра.
var TabOptions = []Option{
	{Value: TabAll, Label: "Barchasi"},
	{Value: TabOverdue, Label: "Muddati o'tgan"},
	{Value: TabUpcoming, Label: "Yaqinlashayotgan"},
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	dateLayout      = "2006-01-02"
)

// Option - вариант значения для select-фильтра.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Descriptor описывает один фильтр панели.
type Descriptor struct {
	Name        string   `json:"name"`
	Label       string   `json:"label"`
	IsSelect    bool     `json:"isSelect"`
	IsDate      bool     `json:"isDate,omitempty"`
	Options     []Option `json:"options,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
	Searchable  bool     `json:"searchable,omitempty"`
}

func (d Descriptor) allows(value string) bool {
	if !d.IsSelect || len(d.Options) == 0 {
		return true
	}
	for _, o := range d.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// Params - разобранное состояние фильтров и пагинации.
type Params struct {
	Search   string
	Page     int
	PageSize int
	Values   map[string]string
}

// Parse читает q, page, pageSize и значения описанных фильтров.
// Некорректные page/pageSize заменяются значениями по умолчанию,
// некорректная дата - ошибка.
func Parse(values url.Values, descs []Descriptor) (Params, error) {
	p := Params{
		Search:   strings.TrimSpace(values.Get(KeySearch)),
		Page:     1,
		PageSize: DefaultPageSize,
		Values:   make(map[string]string),
	}
	if n, err := strconv.Atoi(values.Get(KeyPage)); err == nil && n > 0 {
		p.Page = n
	}
	if n, err := strconv.Atoi(values.Get(KeyPageSize)); err == nil && n > 0 && n <= MaxPageSize {
		p.PageSize = n
	}
	for _, d := range descs {
		v := strings.TrimSpace(values.Get(d.Name))
		if v == "" || d.Name == KeySearch {
			continue
		}
		if d.IsDate {
			if _, err := time.Parse(dateLayout, v); err != nil {
				return Params{}, fmt.Errorf("filter %s: invalid date %q", d.Name, v)
			}
		}
		if !d.allows(v) {
			continue
		}
		p.Values[d.Name] = v
	}
	return p, nil
}

// Get возвращает значение фильтра ("" если не задан).
func (p Params) Get(name string) string {
	return p.Values[name]
}

// Int возвращает числовое значение фильтра; ok=false если фильтр не задан или не число.
func (p Params) Int(name string) (int64, bool) {
	v, exists := p.Values[name]
	if !exists {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Offset - смещение первой записи страницы.
func (p Params) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// With возвращает копию с новым значением фильтра; пустое значение удаляет фильтр.
// Смена фильтра возвращает на первую страницу.
func (p Params) With(name, value string) Params {
	out := p.clone()
	value = strings.TrimSpace(value)
	switch name {
	case KeySearch:
		out.Search = value
	case KeyPage:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			n = 1
		}
		out.Page = n
		return out
	case KeyPageSize:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > MaxPageSize {
			n = DefaultPageSize
		}
		out.PageSize = n
	default:
		if value == "" {
			delete(out.Values, name)
		} else {
			out.Values[name] = value
		}
	}
	out.Page = 1
	return out
}

// WithPage возвращает копию с другой страницей.
func (p Params) WithPage(page int) Params {
	return p.With(KeyPage, strconv.Itoa(page))
}

// Query записывает состояние обратно в url.Values. Значения по умолчанию опускаются.
func (p Params) Query() url.Values {
	q := url.Values{}
	if p.Search != "" {
		q.Set(KeySearch, p.Search)
	}
	if p.Page > 1 {
		q.Set(KeyPage, strconv.Itoa(p.Page))
	}
	if p.PageSize != 0 && p.PageSize != DefaultPageSize {
		q.Set(KeyPageSize, strconv.Itoa(p.PageSize))
	}
	for k, v := range p.Values {
		q.Set(k, v)
	}
	return q
}

// Encode - каноническая (отсортированная) строка запроса; используется и как ключ кэша.
func (p Params) Encode() string {
	return p.Query().Encode()
}

func (p Params) clone() Params {
	out := p
	out.Values = make(map[string]string, len(p.Values))
	for k, v := range p.Values {
		out.Values[k] = v
	}
	return out
}

// All возвращает параметры для выгрузки: первая страница заданного размера без ограничения MaxPageSize.
func (p Params) All(limit int) Params {
	out := p.clone()
	out.Page = 1
	out.PageSize = limit
	return out
}

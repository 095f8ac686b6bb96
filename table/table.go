// Пакет table строит постраничный ответ листинга, общий для всех ресурсов.
package table

// Column описывает колонку таблицы и выгрузки.
type Column[T any] struct {
	Key      string
	Header   string
	Accessor func(T) string
}

// RowActions - разрешенные действия над строкой.
type RowActions struct {
	Edit   bool `json:"edit"`
	Delete bool `json:"delete"`
}

// EmptyState - текст пустой таблицы.
type EmptyState struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Page - ответ листинга.
type Page[T any] struct {
	Items      []T          `json:"items"`
	TotalItems int          `json:"totalItems"`
	TotalPages int          `json:"totalPages"`
	Page       int          `json:"page"`
	PageSize   int          `json:"pageSize"`
	Actions    []RowActions `json:"actions"`
	Empty      *EmptyState  `json:"empty,omitempty"`
}

// RowGuard решает, какие действия доступны для строки.
type RowGuard[T any] func(item T) RowActions

// NewPage собирает страницу. items никогда не сериализуется как null.
func NewPage[T any](items []T, total, page, pageSize int, guard RowGuard[T], empty EmptyState) Page[T] {
	if items == nil {
		items = []T{}
	}
	if page < 1 {
		page = 1
	}
	p := Page[T]{
		Items:      items,
		TotalItems: total,
		TotalPages: TotalPages(total, pageSize),
		Page:       page,
		PageSize:   pageSize,
		Actions:    make([]RowActions, len(items)),
	}
	if guard != nil {
		for i, item := range items {
			p.Actions[i] = guard(item)
		}
	}
	if total == 0 {
		e := empty
		p.Empty = &e
	}
	return p
}

// TotalPages = ceil(total/pageSize).
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// Matrix возвращает заголовки и строки значений для выгрузки.
func Matrix[T any](cols []Column[T], items []T) (headers []string, rows [][]string) {
	headers = make([]string, len(cols))
	for i, c := range cols {
		headers[i] = c.Header
	}
	rows = make([][]string, 0, len(items))
	for _, item := range items {
		row := make([]string, len(cols))
		for i, c := range cols {
			if c.Accessor != nil {
				row[i] = c.Accessor(item)
			}
		}
		rows = append(rows, row)
	}
	return headers, rows
}

package filter

import (
	"net/url"
	"strings"
	"sync"
	"time"
)

// DefaultDebounce - задержка публикации свободного текста поиска.
const DefaultDebounce = 400 * time.Millisecond

// Bar - состояние панели фильтров поверх строки запроса.
// Select- и date-фильтры публикуются сразу, текст поиска - с задержкой.
type Bar struct {
	mu       sync.Mutex
	descs    map[string]Descriptor
	values   url.Values
	delay    time.Duration
	timer    *time.Timer
	gen      uint64
	pending  *string
	onChange func(query string)
}

// NewBar создает панель с начальным состоянием initial (обычно текущий URL).
// onChange получает новую строку запроса.
func NewBar(descs []Descriptor, initial url.Values, onChange func(query string)) *Bar {
	b := &Bar{
		descs:    make(map[string]Descriptor, len(descs)),
		values:   url.Values{},
		delay:    DefaultDebounce,
		onChange: onChange,
	}
	for _, d := range descs {
		b.descs[d.Name] = d
	}
	for k, vs := range initial {
		if len(vs) > 0 {
			b.values.Set(k, vs[0])
		}
	}
	return b
}

// SetDelay меняет задержку поиска.
func (b *Bar) SetDelay(d time.Duration) {
	b.mu.Lock()
	b.delay = d
	b.mu.Unlock()
}

// Value - текущее значение ключа.
func (b *Bar) Value(name string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.values.Get(name)
}

// Query - текущая строка запроса.
func (b *Bar) Query() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.values.Encode()
}

// Set применяет значение select/date фильтра и сразу публикует результат.
func (b *Bar) Set(name, value string) {
	b.mu.Lock()
	b.apply(name, value)
	q := b.values.Encode()
	b.mu.Unlock()
	b.publish(q)
}

// SetPage переключает страницу, не сбрасывая остальные фильтры.
func (b *Bar) SetPage(page string) {
	b.mu.Lock()
	if page == "" || page == "1" {
		b.values.Del(KeyPage)
	} else {
		b.values.Set(KeyPage, page)
	}
	q := b.values.Encode()
	b.mu.Unlock()
	b.publish(q)
}

// Search запоминает текст и публикует его после паузы; каждый новый вызов перезапускает таймер.
func (b *Bar) Search(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = &text
	b.gen++
	gen := b.gen
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.delay, func() { b.fire(gen) })
}

// Flush публикует отложенный поиск немедленно (например, по Enter).
func (b *Bar) Flush() {
	b.mu.Lock()
	if b.pending == nil {
		b.mu.Unlock()
		return
	}
	b.gen++
	if b.timer != nil {
		b.timer.Stop()
	}
	q := b.commitPending()
	b.mu.Unlock()
	b.publish(q)
}

// Stop отменяет отложенный поиск без публикации.
func (b *Bar) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gen++
	b.pending = nil
	if b.timer != nil {
		b.timer.Stop()
	}
}

func (b *Bar) fire(gen uint64) {
	b.mu.Lock()
	if gen != b.gen || b.pending == nil {
		b.mu.Unlock()
		return
	}
	q := b.commitPending()
	b.mu.Unlock()
	b.publish(q)
}

func (b *Bar) commitPending() string {
	b.apply(KeySearch, *b.pending)
	b.pending = nil
	return b.values.Encode()
}

func (b *Bar) apply(name, value string) {
	value = strings.TrimSpace(value)
	if d, ok := b.descs[name]; ok && value != "" && !d.allows(value) {
		return
	}
	if value == "" {
		b.values.Del(name)
	} else {
		b.values.Set(name, value)
	}
	if name != KeyPage {
		b.values.Del(KeyPage)
	}
}

func (b *Bar) publish(q string) {
	if b.onChange != nil {
		b.onChange(q)
	}
}

// Пакет cache хранит ответы листингов в Badger в памяти, чтобы повторное
// чтение той же отфильтрованной страницы не обращалось к БД.
package cache

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"lokomotiv_server_go/logging"
	"lokomotiv_server_go/models"
)

// Имена ресурсов, используемые как префиксы ключей.
const (
	Organizations   = "organizations"
	Users           = "users"
	Classificators  = "classificators"
	Bulletins       = "bulletins"
	BulletinRows    = "bulletin_rows"
	Locomotives     = "locomotives"
	Inspections     = "inspections"
	Delays          = "delays"
	DefectiveWorks  = "defective_works"
	ReplacementOils = "replacement_oils"
	Components      = "components"
)

const DefaultTTL = 30 * time.Second

// dependents - какие листинги устаревают при изменении ресурса
// (в них показываются связанные поля: номер локомотива, название депо, число строк).
var dependents = map[string][]string{
	Organizations:  {Users, Bulletins, BulletinRows, Locomotives, Inspections, Delays, DefectiveWorks, ReplacementOils, Components},
	Locomotives:    {Inspections, Delays, DefectiveWorks, ReplacementOils, Components},
	Bulletins:      {BulletinRows},
	BulletinRows:   {Bulletins},
	Classificators: {BulletinRows},
}

// Cache - кэш листингов. Нулевой (nil) кэш ничего не хранит.
// Каждая инвалидация увеличивает поколение ресурса; Set с устаревшим
// поколением ничего не пишет.
type Cache struct {
	db  *badger.DB
	ttl time.Duration
	log logging.Logger

	mu   sync.Mutex
	gens map[string]uint64
}

// Open создает кэш в памяти.
func Open(ttl time.Duration, log logging.Logger) (*Cache, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Cache{db: db, ttl: ttl, log: log, gens: make(map[string]uint64)}, nil
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.db.Close()
}

func prefix(resource string) []byte {
	return []byte(resource + "|")
}

// Key строит ключ: ресурс, область видимости и каноническая строка запроса.
func Key(resource string, scope models.Scope, query string) []byte {
	org := "all"
	if scope.OrganizationID != nil {
		org = strconv.FormatInt(*scope.OrganizationID, 10)
	}
	return []byte(resource + "|" + org + "|" + query)
}

// Get возвращает сохраненный ответ. Ошибки Badger считаются промахом.
func (c *Cache) Get(ctx context.Context, resource string, scope models.Scope, query string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	var val []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(Key(resource, scope, query))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false
	}
	if err != nil {
		c.log.Warn(ctx, "cache get failed", "resource", resource, "error", err)
		return nil, false
	}
	return val, true
}

// Generation возвращает текущее поколение ресурса. Читается до запроса в БД
// и передается в Set.
func (c *Cache) Generation(resource string) uint64 {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[resource]
}

// Set сохраняет ответ на время TTL, если с момента Generation ресурс не инвалидировался.
func (c *Cache) Set(ctx context.Context, resource string, scope models.Scope, query string, gen uint64, val []byte) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[resource] != gen {
		return
	}
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(Key(resource, scope, query), val).WithTTL(c.ttl))
	})
	if err != nil {
		c.log.Warn(ctx, "cache set failed", "resource", resource, "error", err)
	}
}

// Invalidate удаляет листинги ресурсов и зависящих от них ресурсов.
func (c *Cache) Invalidate(ctx context.Context, resources ...string) {
	if c == nil {
		return
	}
	affected := Affected(resources...)
	prefixes := make([][]byte, 0, len(affected))
	c.mu.Lock()
	for _, r := range affected {
		c.gens[r]++
		prefixes = append(prefixes, prefix(r))
	}
	c.mu.Unlock()
	if err := c.db.DropPrefix(prefixes...); err != nil {
		c.log.Error(ctx, "cache invalidate failed", "resources", affected, "error", err)
	}
}

// Affected раскрывает список ресурсов вместе с зависимыми, без повторов.
func Affected(resources ...string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(r string) {
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	for _, r := range resources {
		add(r)
		for _, d := range dependents[r] {
			add(d)
		}
	}
	return out
}

// Пакет config собирает настройки сервера: значения по умолчанию,
// JSON-файл, переменные окружения и флаги командной строки.
package config

import "time"

// Config содержит настройки сервера.
//
// Поля:
//   - HTTPAddr: адрес REST API.
//   - DatabaseDriver: "sqlite3", "sqlite" или "pgx".
//   - DatabaseDSN: DSN для выбранного драйвера.
//   - SecretKey: секрет HMAC для подписи JWT (HS256). В проде значение по умолчанию не использовать.
//   - TokenValidity: срок действия выдаваемых токенов.
//   - CacheTTL: время жизни кэша листингов; 0 отключает кэш.
//   - RequestTimeout: таймаут обработки запроса в роутере.
//   - LogLevel: debug, info, warn или error.
type Config struct {
	HTTPAddr       string
	DatabaseDriver string
	DatabaseDSN    string
	SecretKey      string
	TokenValidity  time.Duration
	CacheTTL       time.Duration
	RequestTimeout time.Duration
	LogLevel       string
}

// LoadDefaults заполняет Config значениями для разработки.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8080"
	c.DatabaseDriver = "sqlite3"
	c.DatabaseDSN = "lokomotiv.db"
	c.SecretKey = "dev-insecure-secret-change-me"
	c.TokenValidity = 12 * time.Hour
	c.CacheTTL = 30 * time.Second
	c.RequestTimeout = 30 * time.Second
	c.LogLevel = "info"
}

// LoadConfig строит Config: значения по умолчанию, затем JSON-файл (если есть),
// переменные окружения и в конце флаги командной строки.
func LoadConfig(args []string, getenv func(string) string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, getenv); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

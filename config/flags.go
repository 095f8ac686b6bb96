package config

import (
	"flag"
	"io"

	"lokomotiv_server_go/flagx"
)

// parseFlags заполняет поля Config из флагов командной строки.
//
// Поддерживаемые флаги:
//
//	-a string           адрес HTTP (например ":8080")
//	-driver string      драйвер БД: sqlite3, sqlite или pgx
//	-d string           DSN базы данных
//	-s string           секретный ключ HMAC для JWT
//	-t duration         срок действия токена (например "12h")
//	-cache-ttl duration TTL кэша листингов, 0 отключает кэш
//	-log-level string   debug, info, warn, error
//
// Остальные аргументы (подкоманды, -c/-config) заранее отбрасываются flagx.FilterArgs.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-driver", "-d", "-s", "-t", "-cache-ttl", "-log-level"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDriver, "driver", config.DatabaseDriver, "database driver (sqlite3|pgx)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.DurationVar(&config.TokenValidity, "t", config.TokenValidity, "access token validity")
	fs.DurationVar(&config.CacheTTL, "cache-ttl", config.CacheTTL, "listing cache TTL")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")

	return fs.Parse(args)
}

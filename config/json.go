package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"lokomotiv_server_go/flagx"
)

// Duration принимает в JSON как строку вида "30s", так и число наносекунд.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
	return nil
}

// JsonConfig - формат файла конфигурации. Отсутствующие поля
// не меняют уже заданные значения Config.
type JsonConfig struct {
	HTTPAddr       *string   `json:"http_addr"`
	DatabaseDriver *string   `json:"database_driver"`
	DatabaseDSN    *string   `json:"database_dsn"`
	SecretKey      *string   `json:"secret_key"`
	TokenValidity  *Duration `json:"token_validity"`
	CacheTTL       *Duration `json:"cache_ttl"`
	RequestTimeout *Duration `json:"request_timeout"`
	LogLevel       *string   `json:"log_level"`
}

// parseJson читает файл из -c/-config, если он указан.
func parseJson(config *Config, args []string) error {
	path := flagx.JsonConfigFlag(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.DatabaseDriver, c.DatabaseDriver)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.LogLevel, c.LogLevel)
	setDuration(&config.TokenValidity, c.TokenValidity)
	setDuration(&config.CacheTTL, c.CacheTTL)
	setDuration(&config.RequestTimeout, c.RequestTimeout)
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *Duration) {
	if v != nil {
		*dst = v.Duration
	}
}

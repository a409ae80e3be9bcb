package backend

import (
	"errors"
	"fmt"
	"strings"

	"ledgerbot/internal/config"
)

// requirement names the setting a backend type cannot run without.
type requirement struct {
	setting string
	value   func(Config) string
}

var requirements = map[BackendType]requirement{
	SQLiteBackend: {"SQLITE_DB_PATH", func(c Config) string { return c.SQLiteDBPath }},
	RedisBackend:  {"REDIS_URL", func(c Config) string { return c.RedisURL }},
	CSVBackend:    {"CSV_DATA_DIR", func(c Config) string { return c.CSVDataDir }},
}

// ParseBackendType maps a DATA_BACKEND value onto a known type.
func ParseBackendType(s string) (BackendType, error) {
	bt := BackendType(strings.ToLower(strings.TrimSpace(s)))
	if !bt.IsValid() {
		return "", fmt.Errorf("%w: %q (want one of %s)", ErrUnknownBackend, s, strings.Join(TypeNames(), ", "))
	}
	return bt, nil
}

// FromAppConfig picks the storage settings out of the application config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}
	bt, err := ParseBackendType(appConfig.DataBackend)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Type:         bt,
		SQLiteDBPath: appConfig.SQLiteDBPath,
		RedisURL:     appConfig.RedisURL,
		CSVDataDir:   appConfig.CSVDataDir,
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,
	}, nil
}

// Validate checks that the selected type has the setting it needs.
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Type)
	}
	if req, ok := requirements[c.Type]; ok && strings.TrimSpace(req.value(c)) == "" {
		return fmt.Errorf("%s backend requires %s", c.Type, req.setting)
	}
	return nil
}

// FanOut reports whether committed transactions are published to a broker.
func (c Config) FanOut() bool {
	return c.AMQPURL != ""
}

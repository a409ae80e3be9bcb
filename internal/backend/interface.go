// Package backend assembles a ledger service on top of the configured
// storage and the optional broker fan-out.
package backend

import (
	"context"
	"errors"

	"ledgerbot/internal/services"
)

var ErrUnknownBackend = errors.New("unknown backend type")

// CleanupFunc releases what a backend holds open.
type CleanupFunc func() error

// ReadyFunc reports whether the backend can serve requests.
type ReadyFunc func(ctx context.Context) error

// BackendResult is a ready-to-use ledger service with its probes.
type BackendResult struct {
	Service *services.LedgerService
	Ready   ReadyFunc
	Cleanup CleanupFunc
}

type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config selects and configures one storage backend.
type Config struct {
	Type BackendType

	SQLiteDBPath string
	RedisURL     string
	CSVDataDir   string

	// Broker fan-out, disabled when AMQPURL is empty.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

type BackendType string

const (
	MemoryBackend BackendType = "memory"
	SQLiteBackend BackendType = "sqlite"
	RedisBackend  BackendType = "redis"
	CSVBackend    BackendType = "csv"
)

var backendTypes = []BackendType{MemoryBackend, SQLiteBackend, RedisBackend, CSVBackend}

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	for _, t := range backendTypes {
		if bt == t {
			return true
		}
	}
	return false
}

// TypeNames lists the accepted DATA_BACKEND values.
func TypeNames() []string {
	out := make([]string, len(backendTypes))
	for i, t := range backendTypes {
		out[i] = t.String()
	}
	return out
}

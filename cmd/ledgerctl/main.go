// Command ledgerctl inspects and maintains a user's ledger on a durable
// backend without going through the chat.
package main

import (
	"context"
	"os"
	"time"
	"unicode"

	"github.com/pterm/pterm"

	"ledgerbot/internal/cli"
	"ledgerbot/internal/config"
	"ledgerbot/internal/log"
)

func main() {
	cli.LoadEnvFile()

	pterm.Error.Prefix = pterm.Prefix{
		Text:  " ERROR ",
		Style: pterm.NewStyle(pterm.BgLightRed, pterm.FgBlack),
	}

	a := &app{
		open: openBackend,
		now:  time.Now,
	}
	err := newRootCmd(a).Execute()
	if cerr := a.close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		pterm.Error.Println(capitalize(err.Error()))
		os.Exit(1)
	}
}

// openBackend opens the configured backend with fan-out disabled, since
// the CLI never commits.
func openBackend(ctx context.Context, backendName string) (ledgerAPI, *time.Location, func() error, error) {
	if backendName != "" {
		os.Setenv("DATA_BACKEND", backendName)
	}
	cfg, err := cli.LoadConfig((*config.Config).ValidateStorage)
	if err != nil {
		return nil, nil, nil, err
	}
	cfg.AMQPURL = ""

	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Component: log.ComponentCLI,
		Output:    os.Stderr,
	})
	result, err := cli.OpenBackend(ctx, logger, cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	return result.Service, cfg.Location(), result.Cleanup, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

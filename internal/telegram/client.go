// Package telegram connects the bot core to the Telegram Bot API. It turns
// updates into bot events and bot replies into API calls.
package telegram

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/net/proxy"

	"ledgerbot/internal/log"
)

// ProxyConfig describes an optional SOCKS5 proxy. An empty Server means a
// direct connection.
type ProxyConfig struct {
	Server   string
	User     string
	Password string
}

// Options configures NewBot.
type Options struct {
	Token    string
	Endpoint string // defaults to tgbotapi.APIEndpoint
	Proxy    ProxyConfig
	Debug    bool
}

// NewHTTPClient returns the HTTP client used for API calls, dialing through
// the SOCKS5 proxy when one is configured.
func NewHTTPClient(p ProxyConfig) (*http.Client, error) {
	transport := &http.Transport{
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	if p.Server != "" {
		var auth *proxy.Auth
		if p.User != "" {
			auth = &proxy.Auth{User: p.User, Password: p.Password}
		}
		dialer, err := proxy.SOCKS5("tcp", p.Server, auth, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("create socks5 dialer for %s: %w", p.Server, err)
		}
		transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			if cd, ok := dialer.(proxy.ContextDialer); ok {
				return cd.DialContext(ctx, network, addr)
			}
			return dialer.Dial(network, addr)
		}
	}
	// long polling holds requests open, so no client-wide timeout
	return &http.Client{Transport: transport}, nil
}

// NewBot authenticates against the Bot API.
func NewBot(opts Options, logger *log.Logger) (*tgbotapi.BotAPI, error) {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentBot)

	client, err := NewHTTPClient(opts.Proxy)
	if err != nil {
		return nil, err
	}
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	if opts.Proxy.Server != "" {
		logger.Info("Using SOCKS5 proxy for Telegram", "proxy", opts.Proxy.Server)
	}

	api, err := tgbotapi.NewBotAPIWithClient(opts.Token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}
	api.Debug = opts.Debug
	logger.Info("Authorized on Telegram", "username", api.Self.UserName)
	return api, nil
}

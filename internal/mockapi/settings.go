package mockapi

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/kingrea/engadmin/internal/config"
)

const (
	// DefaultTokenTTL is the lifetime of minted admin tokens.
	DefaultTokenTTL = 12 * time.Hour
	// DefaultReadTimeout guards hung clients.
	DefaultReadTimeout = 15 * time.Second
	// DefaultWriteTimeout bounds handler writes.
	DefaultWriteTimeout = 15 * time.Second
	// DefaultIdleTimeout bounds keep-alive connections.
	DefaultIdleTimeout = 60 * time.Second
)

// Settings captures runtime configuration for the mock backend.
type Settings struct {
	Host         string
	Port         int
	OTP          string
	Secret       string
	TokenTTL     time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// SettingsFromConfig builds Settings from the mock section of config.yaml
// (environment overrides are already applied by config.Load).
func SettingsFromConfig(cfg *config.Config) Settings {
	settings := Settings{
		Host: config.DefaultMockHost,
		Port: config.DefaultMockPort,
		OTP:  config.DefaultMockOTP,
	}
	if cfg != nil {
		raw := cfg.File.Mock
		if host := strings.TrimSpace(raw.Host); host != "" {
			settings.Host = host
		}
		if isValidPort(raw.Port) {
			settings.Port = raw.Port
		}
		if otp := strings.TrimSpace(raw.OTP); otp != "" {
			settings.OTP = otp
		}
		settings.Secret = strings.TrimSpace(raw.Secret)
	}
	settings.normalize()
	return settings
}

func (s *Settings) normalize() {
	s.Host = strings.TrimSpace(s.Host)
	if s.Host == "" {
		s.Host = config.DefaultMockHost
	}
	// Port 0 asks the kernel for a free port.
	if s.Port < 0 || s.Port > 65535 {
		s.Port = config.DefaultMockPort
	}
	if strings.TrimSpace(s.OTP) == "" {
		s.OTP = config.DefaultMockOTP
	}
	if s.TokenTTL <= 0 {
		s.TokenTTL = DefaultTokenTTL
	}
	if s.ReadTimeout <= 0 {
		s.ReadTimeout = DefaultReadTimeout
	}
	if s.WriteTimeout <= 0 {
		s.WriteTimeout = DefaultWriteTimeout
	}
	if s.IdleTimeout <= 0 {
		s.IdleTimeout = DefaultIdleTimeout
	}
}

// Address returns the TCP bind address in host:port form.
func (s Settings) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// URL returns the HTTP base URL for the server.
func (s Settings) URL() string {
	return "http://" + s.Address()
}

func isValidPort(port int) bool {
	return port > 0 && port <= 65535
}

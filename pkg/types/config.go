package types

import "time"

// ServerConfig holds settings for the conversion server.
type ServerConfig struct {
	// Listen is the TCP address the server binds, e.g. "127.0.0.1:65432".
	Listen string `json:"listen" yaml:"listen"`

	// ReadTimeout bounds how long the server waits for a complete request
	// frame on an accepted connection (default 2m).
	ReadTimeout time.Duration `json:"read_timeout" yaml:"read_timeout"`

	// WriteTimeout bounds writing the response frame (default 5m).
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`

	// MaxPayload caps the total request payload in bytes (default 512 MiB).
	// Oversized requests fail with a bad-request error.
	MaxPayload int64 `json:"max_payload" yaml:"max_payload"`

	// TempDir is the base directory for per-request workspaces. Empty
	// means the system temp directory.
	TempDir string `json:"temp_dir,omitempty" yaml:"temp_dir,omitempty"`

	// HistoryDB is the path of the SQLite request-history database.
	// Empty disables history.
	HistoryDB string `json:"history_db,omitempty" yaml:"history_db,omitempty"`

	// Token is the optional shared secret clients must present.
	Token string `json:"token,omitempty" yaml:"token,omitempty"`
}

// ClientConfig holds settings for the conversion client.
type ClientConfig struct {
	// Addr is the server address, e.g. "127.0.0.1:65432".
	Addr string `json:"addr" yaml:"addr"`

	// Timeout bounds one complete request/response exchange (default 10m;
	// conversions can be slow).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// MaxRetries is the number of additional dial attempts after a refused
	// or failed connection (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// Token is the optional shared secret sent with every request.
	Token string `json:"token,omitempty" yaml:"token,omitempty"`
}

// DefaultListen is the address used when none is configured. Matches the
// client default so a bare `serve` and a bare client find each other.
const DefaultListen = "127.0.0.1:65432"

// DefaultServerConfig returns a ServerConfig with all defaults applied.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Listen:       DefaultListen,
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 5 * time.Minute,
		MaxPayload:   512 << 20,
	}
}

// DefaultClientConfig returns a ClientConfig with all defaults applied.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Addr:       DefaultListen,
		Timeout:    10 * time.Minute,
		MaxRetries: 3,
	}
}

// Normalize fills zero fields with defaults.
func (c *ServerConfig) Normalize() {
	d := DefaultServerConfig()
	if c.Listen == "" {
		c.Listen = d.Listen
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.MaxPayload <= 0 {
		c.MaxPayload = d.MaxPayload
	}
}

// Normalize fills zero fields with defaults.
func (c *ClientConfig) Normalize() {
	d := DefaultClientConfig()
	if c.Addr == "" {
		c.Addr = d.Addr
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = d.MaxRetries
	}
}

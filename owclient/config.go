package owclient

import (
	"errors"
	"strings"
	"time"

	"github.com/arloliu/go-ownet/logger"
	"github.com/arloliu/go-ownet/ownet"
)

// DefaultPort is the port owserver listens on by default.
const DefaultPort = 4304

// ErrConfigNil indicates that a nil Config was provided.
var ErrConfigNil = errors.New("config is nil")

// Config represents the configuration of an owserver session.
//
// A Config is read-only once created and may be shared by many sessions.
type Config struct {
	// host specifies the host of the owserver.
	host string

	// port specifies the TCP port of the owserver.
	port int

	// defaultFlags are added to every request.
	// Defaults to ownet.FlagPersistence.
	defaultFlags ownet.Flag

	// dialTimeout defines the timeout for establishing a connection. It should be between 1ms and 60 seconds.
	// Defaults to 3 seconds.
	dialTimeout time.Duration

	// readTimeout bounds every single receive. Zero disables the deadline.
	// Defaults to 10 seconds.
	readTimeout time.Duration

	// writeTimeout bounds every single send. Zero disables the deadline.
	// Defaults to 5 seconds.
	writeTimeout time.Duration

	// maxKeepalives bounds the number of continuation headers accepted while waiting for a payload.
	// Defaults to 100.
	maxKeepalives int

	// maxPayloadSize is the largest payload accepted from the server.
	// Defaults to 1 MiB.
	maxPayloadSize int

	// transport opens connections. Defaults to TCPTransport.
	transport Transport

	// errTable is an externally supplied error table. When nil, Client fetches it from the server.
	errTable *ownet.ErrorTable

	metrics *Metrics

	logger logger.Logger
}

// NewConfig creates a configuration for the owserver at host:port with the given options applied.
//
// Returns the initialized Config and an error if any option is invalid.
func NewConfig(host string, port int, opts ...Option) (*Config, error) {
	cfg := &Config{
		defaultFlags:   ownet.FlagPersistence,
		dialTimeout:    3 * time.Second,
		readTimeout:    10 * time.Second,
		writeTimeout:   5 * time.Second,
		maxKeepalives:  100,
		maxPayloadSize: 1 << 20,
		metrics:        &Metrics{},
		logger:         logger.GetLogger(),
	}

	if err := withHost(host).apply(cfg); err != nil {
		return cfg, err
	}

	if err := withPort(port).apply(cfg); err != nil {
		return cfg, err
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return cfg, err
		}
	}

	if cfg.transport == nil {
		cfg.transport = &TCPTransport{
			DialTimeout:  cfg.dialTimeout,
			ReadTimeout:  cfg.readTimeout,
			WriteTimeout: cfg.writeTimeout,
		}
	}

	cfg.logger = cfg.logger.With("owserver", cfg.Address())

	return cfg, nil
}

// Host returns the owserver host.
func (cfg *Config) Host() string { return cfg.host }

// Port returns the owserver port.
func (cfg *Config) Port() int { return cfg.port }

// Address returns host:port.
func (cfg *Config) Address() string { return joinHostPort(cfg.host, cfg.port) }

// DefaultFlags returns the flags added to every request.
func (cfg *Config) DefaultFlags() ownet.Flag { return cfg.defaultFlags }

// MaxKeepalives returns the continuation header limit.
func (cfg *Config) MaxKeepalives() int { return cfg.maxKeepalives }

// Metrics returns the counters shared by every session created from cfg.
func (cfg *Config) Metrics() *Metrics { return cfg.metrics }

// Option represents a functional option for configuring a Config.
type Option interface {
	apply(*Config) error
}

type optFunc struct {
	name      string
	applyFunc func(*Config) error
}

func (o *optFunc) apply(cfg *Config) error {
	if cfg == nil {
		return ErrConfigNil
	}

	return o.applyFunc(cfg)
}

func newOptFunc(name string, f func(*Config) error) *optFunc {
	return &optFunc{name: name, applyFunc: f}
}

func withHost(host string) Option {
	return newOptFunc("withHost", func(cfg *Config) error {
		host = strings.TrimSpace(host)
		if host == "" || strings.ContainsAny(host, " \t/") {
			return errors.New("invalid host")
		}
		cfg.host = host

		return nil
	})
}

func withPort(port int) Option {
	return newOptFunc("withPort", func(cfg *Config) error {
		if port < 1 || port > 65535 {
			return errors.New("port is out of range [1, 65535]")
		}
		cfg.port = port

		return nil
	})
}

// WithDefaultFlags sets the flags added to every request, replacing the default ownet.FlagPersistence.
func WithDefaultFlags(flags ...ownet.Flag) Option {
	return newOptFunc("WithDefaultFlags", func(cfg *Config) error {
		cfg.defaultFlags = ownet.FlagsFrom(0, flags...)
		return nil
	})
}

// WithDialTimeout sets the connection timeout.
func WithDialTimeout(d time.Duration) Option {
	return newOptFunc("WithDialTimeout", func(cfg *Config) error {
		if d < time.Millisecond || d > 60*time.Second {
			return errors.New("dial timeout out of range [1ms, 60s]")
		}
		cfg.dialTimeout = d

		return nil
	})
}

// WithReadTimeout sets the deadline of every receive. Zero disables it.
func WithReadTimeout(d time.Duration) Option {
	return newOptFunc("WithReadTimeout", func(cfg *Config) error {
		if d < 0 {
			return errors.New("read timeout must not be negative")
		}
		cfg.readTimeout = d

		return nil
	})
}

// WithWriteTimeout sets the deadline of every send. Zero disables it.
func WithWriteTimeout(d time.Duration) Option {
	return newOptFunc("WithWriteTimeout", func(cfg *Config) error {
		if d < 0 {
			return errors.New("write timeout must not be negative")
		}
		cfg.writeTimeout = d

		return nil
	})
}

// WithMaxKeepalives sets how many continuation headers a command accepts before giving up.
func WithMaxKeepalives(n int) Option {
	return newOptFunc("WithMaxKeepalives", func(cfg *Config) error {
		if n < 1 {
			return errors.New("max keepalives must be positive")
		}
		cfg.maxKeepalives = n

		return nil
	})
}

// WithMaxPayloadSize sets the largest payload accepted from the server.
func WithMaxPayloadSize(n int) Option {
	return newOptFunc("WithMaxPayloadSize", func(cfg *Config) error {
		if n < ownet.DefaultReadSize {
			return errors.New("max payload size must be at least 65536")
		}
		cfg.maxPayloadSize = n

		return nil
	})
}

// WithTransport replaces the TCP transport, e.g. with an in-memory one in tests.
// The dial, read and write timeouts are not applied to a custom transport.
func WithTransport(t Transport) Option {
	return newOptFunc("WithTransport", func(cfg *Config) error {
		if t == nil {
			return errors.New("transport is nil")
		}
		cfg.transport = t

		return nil
	})
}

// WithErrorTable supplies the error table instead of fetching it from the server.
func WithErrorTable(t *ownet.ErrorTable) Option {
	return newOptFunc("WithErrorTable", func(cfg *Config) error {
		cfg.errTable = t
		return nil
	})
}

// WithLogger sets the logger. Defaults to logger.GetLogger().
func WithLogger(l logger.Logger) Option {
	return newOptFunc("WithLogger", func(cfg *Config) error {
		if l == nil {
			return errors.New("logger is nil")
		}
		cfg.logger = l

		return nil
	})
}

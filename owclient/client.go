package owclient

import (
	"context"
	"strings"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/arloliu/go-ownet/ownet"
)

// errTables caches the error tables fetched from servers, keyed by address.
// A table is immutable once built, so clients of the same server share it.
var errTables = xsync.NewMapOf[string, *ownet.ErrorTable]()

// Client is a goroutine-safe owserver client.
//
// It serializes commands over a single Session and resolves protocol error codes to text.
// The error table is fetched from the server once, on the first protocol error or on an
// explicit LoadErrorTable call; if it can't be fetched, codes resolve to "Unknown error N".
type Client struct {
	mu          sync.Mutex
	cfg         *Config
	session     Session
	table       *ownet.ErrorTable
	tableLoaded bool
}

// NewClient creates a client for the owserver described by cfg. No connection is opened.
func NewClient(cfg *Config) *Client {
	c := &Client{
		cfg:     cfg,
		session: NewSession(cfg),
	}

	if cfg.errTable != nil {
		c.table = cfg.errTable
		c.tableLoaded = true
	}

	return c
}

// Dial creates a client for host:port and checks the link with a ping.
func Dial(ctx context.Context, host string, port int, opts ...Option) (*Client, error) {
	cfg, err := NewConfig(host, port, opts...)
	if err != nil {
		return nil, err
	}

	c := NewClient(cfg)
	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}

	return c, nil
}

// Metrics returns the client counters.
func (c *Client) Metrics() *Metrics {
	return c.cfg.metrics
}

// Ping checks that the server answers.
func (c *Client) Ping(ctx context.Context, flags ...ownet.Flag) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	c.session, err = c.session.Ping(ctx, ownet.FlagsFrom(0, flags...))

	return c.resolve(ctx, err)
}

// Present reports whether path exists on the bus.
func (c *Client) Present(ctx context.Context, path string, flags ...ownet.Flag) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var (
		ok  bool
		err error
	)
	c.session, ok, err = c.session.Present(ctx, path, ownet.FlagsFrom(0, flags...))

	return ok, err
}

// Dir lists the entries below path.
func (c *Client) Dir(ctx context.Context, path string, flags ...ownet.Flag) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var (
		entries []string
		err     error
	)
	c.session, entries, err = c.session.Dir(ctx, path, ownet.FlagsFrom(0, flags...))

	return entries, c.resolve(ctx, err)
}

// Read returns the raw value of path.
func (c *Client) Read(ctx context.Context, path string, flags ...ownet.Flag) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var (
		data []byte
		err  error
	)
	c.session, data, err = c.session.Read(ctx, path, ownet.FlagsFrom(0, flags...))

	return data, c.resolve(ctx, err)
}

// ReadString returns the value of path as a string with the padding spaces owserver adds to
// numeric values removed.
func (c *Client) ReadString(ctx context.Context, path string, flags ...ownet.Flag) (string, error) {
	data, err := c.Read(ctx, path, flags...)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(strings.TrimRight(string(data), "\x00")), nil
}

// Write writes value to path; see Session.Write for the accepted value types.
func (c *Client) Write(ctx context.Context, path string, value any, flags ...ownet.Flag) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	c.session, err = c.session.Write(ctx, path, value, ownet.FlagsFrom(0, flags...))

	return c.resolve(ctx, err)
}

// ErrorText returns the text of a protocol error code.
func (c *Client) ErrorText(ctx context.Context, code int32) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.errorTable(ctx).Lookup(code)
}

// LoadErrorTable fetches the error table from the server unless it is already loaded.
func (c *Client) LoadErrorTable(ctx context.Context) *ownet.ErrorTable {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.errorTable(ctx)
}

// Close closes the connection. The client reconnects on the next command.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	c.session, err = c.session.Close()

	return err
}

// resolve fills in the text of protocol errors. c.mu must be held.
func (c *Client) resolve(ctx context.Context, err error) error {
	if !isProtocolError(err) {
		return err
	}

	return c.errorTable(ctx).Resolve(err)
}

// errorTable returns the error table, fetching it on first use. c.mu must be held.
func (c *Client) errorTable(ctx context.Context) *ownet.ErrorTable {
	if c.tableLoaded {
		return c.table
	}
	c.tableLoaded = true

	addr := c.cfg.Address()
	if table, ok := errTables.Load(addr); ok {
		c.table = table
		return table
	}

	var (
		catalog []byte
		err     error
	)
	c.session, catalog, err = c.session.Read(ctx, ownet.ReturnCodesPath, 0)
	if err != nil {
		c.cfg.logger.Warn("failed to fetch error table, codes will not be resolved", "error", err)
		c.table = &ownet.ErrorTable{}

		return c.table
	}

	c.table, _ = errTables.LoadOrStore(addr, ownet.BuildErrorTable(catalog))
	c.cfg.logger.Debug("error table loaded", "codes", c.table.Len())

	return c.table
}

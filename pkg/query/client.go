// Package query is a small table client with a chained query builder and an
// auth sub-surface, modelled on hosted database SDKs.
//
// Reads apply every Eq filter first, then ordering, then the limit, whatever
// order the builder calls were made in. Writes follow the configured
// WriteMode.
package query

import (
	"context"
	"errors"
	"time"

	"servimarket/pkg/logger"
	"servimarket/pkg/model"
	"servimarket/pkg/tick"

	"github.com/google/uuid"
)

var (
	ErrMissingFilter = errors.New("query: update and delete require at least one eq filter")
	// ErrDuplicate reports a write rejected by a unique index of the backend.
	ErrDuplicate = errors.New("query: duplicate key")
)

type WriteMode string

const (
	// WriteEcho returns the input of insert and update without storing it.
	WriteEcho WriteMode = "echo"
	// WritePersist stores inserts, merges updates into matching rows and
	// removes deleted rows.
	WritePersist WriteMode = "persist"
)

type OpKind string

const (
	OpSelect     OpKind = "select"
	OpSingle     OpKind = "single"
	OpInsert     OpKind = "insert"
	OpUpdate     OpKind = "update"
	OpDelete     OpKind = "delete"
	OpGetSession OpKind = "auth.get_session"
	OpSignUp     OpKind = "auth.sign_up"
	OpSignIn     OpKind = "auth.sign_in"
	OpSignOut    OpKind = "auth.sign_out"
)

// Operation describes a call about to run. Table is empty for auth calls.
type Operation struct {
	Kind    OpKind
	Table   string
	Filters []Filter
}

// Hook runs before every operation. A non-nil error aborts the operation and
// is returned as the result error.
type Hook func(ctx context.Context, op Operation) error

// TokenIssuer signs access tokens for sessions handed out by Auth.
type TokenIssuer interface {
	Issue(userID, email string) (token string, expiresAt time.Time, err error)
}

type Client struct {
	backend   Backend
	mode      WriteMode
	hooks     []Hook
	scheduler tick.Scheduler
	tokens    TokenIssuer
	identity  model.Identity
	now       func() time.Time
	newID     func() string
	log       *logger.Logger

	auth *Auth
}

type Option func(*Client)

func WithBackend(b Backend) Option {
	return func(c *Client) { c.backend = b }
}

func WithWriteMode(m WriteMode) Option {
	return func(c *Client) { c.mode = m }
}

// WithHook adds a hook. Hooks run in the order they were added and the first
// error wins.
func WithHook(h Hook) Option {
	return func(c *Client) {
		if h != nil {
			c.hooks = append(c.hooks, h)
		}
	}
}

// WithScheduler sets where auth-change callbacks are delivered.
func WithScheduler(s tick.Scheduler) Option {
	return func(c *Client) { c.scheduler = s }
}

func WithTokenIssuer(t TokenIssuer) Option {
	return func(c *Client) { c.tokens = t }
}

// WithIdentity sets the single account every auth call resolves to.
func WithIdentity(id, email string) Option {
	return func(c *Client) { c.identity = model.Identity{ID: id, Email: email} }
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(c *Client) { c.newID = gen }
}

func WithLogger(log *logger.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New builds a client. Without options it serves the fixture dataset from
// memory in WriteEcho mode and signs in as the default mock identity.
func New(opts ...Option) *Client {
	c := &Client{
		mode:     WriteEcho,
		identity: model.Identity{ID: DefaultIdentityID, Email: DefaultIdentityEmail},
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.backend == nil {
		c.backend = NewMemoryBackend(Fixtures(c.identity.ID))
	}
	if c.scheduler == nil {
		c.scheduler = goScheduler{}
	}
	if c.log == nil {
		c.log = logger.Discard()
	}
	c.log = c.log.Component("query")
	c.auth = newAuth(c)
	return c
}

func (c *Client) Mode() WriteMode {
	return c.mode
}

func (c *Client) Auth() *Auth {
	return c.auth
}

// From returns a handle on the named table. Unknown names read as empty and
// never store writes.
func (c *Client) From(table string) *Table {
	return &Table{client: c, name: table, known: IsKnownTable(table)}
}

func (c *Client) runHooks(ctx context.Context, op Operation) error {
	for _, h := range c.hooks {
		if err := h(ctx, op); err != nil {
			c.log.Debug("Operation rejected by hook",
				"kind", op.Kind,
				"table", op.Table,
				"error", err,
			)
			return err
		}
	}
	return nil
}

// goScheduler defers each task onto its own goroutine. It is only used when
// no queue is configured and gives no ordering between tasks.
type goScheduler struct{}

func (goScheduler) Defer(task func()) bool {
	if task == nil {
		return false
	}
	go task()
	return true
}

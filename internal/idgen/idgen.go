// Package idgen produces prefixed, creation-ordered record identifiers of the
// form <prefix>_<unix millis>_<token>.
package idgen

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const tokenLen = 8

// Generator builds identifiers from a clock and a random token source.
type Generator struct {
	now   func() time.Time
	token func() string
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// WithTokenSource overrides the random token source.
func WithTokenSource(token func() string) Option {
	return func(g *Generator) {
		if token != nil {
			g.token = token
		}
	}
}

// New constructs a generator using the wall clock and random UUIDs.
func New(opts ...Option) *Generator {
	g := &Generator{now: time.Now, token: uuidToken}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns a fresh identifier for prefix. Ids minted within the same
// millisecond are unique but not ordered.
func (g *Generator) Generate(prefix string) string {
	var b strings.Builder
	b.Grow(len(prefix) + 24)
	b.WriteString(prefix)
	b.WriteByte('_')
	b.WriteString(strconv.FormatInt(g.now().UnixMilli(), 10))
	b.WriteByte('_')
	b.WriteString(g.token())
	return b.String()
}

func uuidToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:tokenLen]
}

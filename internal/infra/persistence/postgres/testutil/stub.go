// Package testutil provides a fake database/sql driver for postgres medium
// tests. It models the state table as a bucket to payload map and accepts
// only the statements the medium issues.
package testutil

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
)

// Statement shapes understood by the fake.
const (
	StmtCreate   = "create"
	StmtSelect   = "select"
	StmtUpsert   = "upsert"
	StmtDelete   = "delete"
	StmtTruncate = "truncate"
)

// ErrUnsupported is returned for statements the medium never sends.
var ErrUnsupported = errors.New("stub: unsupported statement")

var driverSeq atomic.Uint64

// StateConn is the single connection behind a stub database. Buckets holds
// the state table; Statements records the shape of each executed statement.
type StateConn struct {
	mu         sync.Mutex
	Buckets    map[string]string
	Statements []string
	FailPing   bool
	FailWrites bool
	FailReads  bool
}

// NewStubDB registers a fresh driver and opens a database over it.
func NewStubDB() (*sql.DB, *StateConn) {
	conn := &StateConn{Buckets: make(map[string]string)}
	name := fmt.Sprintf("bookingstub%d", driverSeq.Add(1))
	sql.Register(name, stateDriver{conn: conn})
	db, err := sql.Open(name, "")
	if err != nil {
		panic(err)
	}
	return db, conn
}

// Payload returns the stored payload of bucket.
func (c *StateConn) Payload(bucket string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.Buckets[bucket]
	return p, ok
}

type stateDriver struct{ conn *StateConn }

func (d stateDriver) Open(string) (driver.Conn, error) { return d.conn, nil }

// classify maps a statement to its shape.
func classify(query string) (string, error) {
	q := strings.ToUpper(strings.Join(strings.Fields(query), " "))
	switch {
	case strings.HasPrefix(q, "CREATE TABLE IF NOT EXISTS STATE"):
		return StmtCreate, nil
	case strings.HasPrefix(q, "SELECT PAYLOAD FROM STATE WHERE BUCKET = $1"):
		return StmtSelect, nil
	case strings.HasPrefix(q, "INSERT INTO STATE (BUCKET, PAYLOAD)") && strings.Contains(q, "ON CONFLICT (BUCKET)"):
		return StmtUpsert, nil
	case strings.HasPrefix(q, "DELETE FROM STATE WHERE BUCKET = $1"):
		return StmtDelete, nil
	case q == "TRUNCATE TABLE STATE":
		return StmtTruncate, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupported, query)
}

// Prepare implements driver.Conn.
func (c *StateConn) Prepare(query string) (driver.Stmt, error) {
	return nil, fmt.Errorf("%w: prepare %s", ErrUnsupported, query)
}

// Close implements driver.Conn.
func (c *StateConn) Close() error { return nil }

// Begin implements driver.Conn.
func (c *StateConn) Begin() (driver.Tx, error) {
	return nil, fmt.Errorf("%w: transactions", ErrUnsupported)
}

// Ping implements driver.Pinger.
func (c *StateConn) Ping(context.Context) error {
	if c.FailPing {
		return errors.New("stub: ping refused")
	}
	return nil
}

// ExecContext implements driver.ExecerContext.
func (c *StateConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	shape, err := classify(query)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Statements = append(c.Statements, shape)
	if c.FailWrites && shape != StmtCreate {
		return nil, fmt.Errorf("stub: %s refused", shape)
	}
	switch shape {
	case StmtUpsert:
		bucket, payload, err := bucketArgs(args, 2)
		if err != nil {
			return nil, err
		}
		c.Buckets[bucket] = payload
	case StmtDelete:
		bucket, _, err := bucketArgs(args, 1)
		if err != nil {
			return nil, err
		}
		delete(c.Buckets, bucket)
	case StmtTruncate:
		clear(c.Buckets)
	case StmtSelect:
		return nil, fmt.Errorf("%w: select through exec", ErrUnsupported)
	}
	return driver.RowsAffected(1), nil
}

// QueryContext implements driver.QueryerContext.
func (c *StateConn) QueryContext(_ context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	shape, err := classify(query)
	if err != nil {
		return nil, err
	}
	if shape != StmtSelect {
		return nil, fmt.Errorf("%w: %s through query", ErrUnsupported, shape)
	}
	bucket, _, err := bucketArgs(args, 1)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Statements = append(c.Statements, shape)
	if c.FailReads {
		return nil, errors.New("stub: select refused")
	}
	rows := &payloadRows{}
	if p, ok := c.Buckets[bucket]; ok {
		rows.payloads = []string{p}
	}
	return rows, nil
}

func bucketArgs(args []driver.NamedValue, want int) (string, string, error) {
	if len(args) != want {
		return "", "", fmt.Errorf("stub: expected %d args, got %d", want, len(args))
	}
	bucket, ok := args[0].Value.(string)
	if !ok {
		return "", "", fmt.Errorf("stub: bucket must be text, got %T", args[0].Value)
	}
	if want == 1 {
		return bucket, "", nil
	}
	payload, ok := args[1].Value.(string)
	if !ok {
		return "", "", fmt.Errorf("stub: payload must be text, got %T", args[1].Value)
	}
	return bucket, payload, nil
}

type payloadRows struct {
	payloads []string
	next     int
}

func (r *payloadRows) Columns() []string { return []string{"payload"} }
func (r *payloadRows) Close() error      { return nil }

func (r *payloadRows) Next(dest []driver.Value) error {
	if r.next >= len(r.payloads) {
		return io.EOF
	}
	dest[0] = r.payloads[r.next]
	r.next++
	return nil
}

// Package object provides a storage medium on top of a blob store. Each
// medium key is one JSON object named <prefix><key>.json.
package object

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"bookingcore/internal/blob"
	"bookingcore/pkg/domain"
)

const (
	contentType   = "application/json"
	objectSuffix  = ".json"
	defaultPrefix = "bookingcore/"
)

var _ domain.Medium = (*Store)(nil)

// Store adapts a blob.Store to domain.Medium.
type Store struct {
	blobs  blob.Store
	prefix string
}

// NewStore wraps blobs. An empty prefix uses "bookingcore/".
func NewStore(blobs blob.Store, prefix string) (*Store, error) {
	if blobs == nil {
		return nil, errors.New("object store requires a blob store")
	}
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Store{blobs: blobs, prefix: prefix}, nil
}

// Prefix returns the object key prefix.
func (s *Store) Prefix() string { return s.prefix }

func (s *Store) objectKey(key string) string {
	return s.prefix + key + objectSuffix
}

// Get implements domain.Medium.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	_, rc, err := s.blobs.Get(ctx, s.objectKey(key))
	if errors.Is(err, blob.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("object get %s: %w", key, err)
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, false, fmt.Errorf("object read %s: %w", key, err)
	}
	return data, true, nil
}

// Set implements domain.Medium.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.blobs.Put(ctx, s.objectKey(key), bytes.NewReader(value), blob.PutOptions{ContentType: contentType}); err != nil {
		return fmt.Errorf("object put %s: %w", key, err)
	}
	return nil
}

// Remove implements domain.Medium.
func (s *Store) Remove(ctx context.Context, key string) error {
	if _, err := s.blobs.Delete(ctx, s.objectKey(key)); err != nil {
		return fmt.Errorf("object delete %s: %w", key, err)
	}
	return nil
}

// Clear implements domain.Medium. Only objects under the prefix are removed.
func (s *Store) Clear(ctx context.Context) error {
	infos, err := s.blobs.List(ctx, s.prefix)
	if err != nil {
		return fmt.Errorf("object list: %w", err)
	}
	var errs []error
	for _, info := range infos {
		if !strings.HasSuffix(info.Key, objectSuffix) {
			continue
		}
		if _, err := s.blobs.Delete(ctx, info.Key); err != nil {
			errs = append(errs, fmt.Errorf("object delete %s: %w", info.Key, err))
		}
	}
	return errors.Join(errs...)
}

// Close implements domain.Medium. Blob stores hold no connections.
func (s *Store) Close() error { return nil }

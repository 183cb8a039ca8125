// Package store is the path-addressed object store that every identity's
// data lives in. Addresses are full pubky:// URLs.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

type Store interface {
	// List returns the address of every object whose address starts with
	// prefix, in lexical order.
	List(ctx context.Context, prefix string) ([]string, error)
	Get(ctx context.Context, url string) ([]byte, error)
	Put(ctx context.Context, url string, data []byte) error
	Delete(ctx context.Context, url string) error
}

// stopper for stores holding connections
type Closer interface {
	Close() error
}

var ErrNotFound = errors.New("object not found")

// ensure that we are satisfying the interface
var (
	_ = []Store{
		&MemoryStore{},
		&SqliteStore{},
		&FSStore{},
		&HomeserverStore{},
	}
)

func GetJSON(ctx context.Context, s Store, url string, v any) error {
	data, err := s.Get(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", url, err)
	}
	return nil
}

func PutJSON(ctx context.Context, s Store, url string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", url, err)
	}
	return s.Put(ctx, url, data)
}

func GetBytes(ctx context.Context, s Store, url string) ([]byte, error) {
	return s.Get(ctx, url)
}

func PutBytes(ctx context.Context, s Store, url string, data []byte) error {
	return s.Put(ctx, url, data)
}

func filterPrefix(keys []string, prefix string) []string {
	out := make([]string, 0)
	for _, k := range keys {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

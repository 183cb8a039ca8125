package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"geostories.app/core/pubky"
	securejoin "github.com/cyphar/filepath-securejoin"
)

// FSStore maps pubky://{key}/{path} onto {root}/{key}/{path}.
type FSStore struct {
	root string
}

func NewFSStore(root string) (*FSStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating store root: %w", err)
	}
	return &FSStore{root: root}, nil
}

func (f *FSStore) resolve(url string) (string, error) {
	key, path, err := pubky.SplitURL(url)
	if err != nil {
		return "", err
	}
	rel, err := securejoin.SecureJoin(string(key), path)
	if err != nil {
		return "", err
	}
	return securejoin.SecureJoin(f.root, rel)
}

func (f *FSStore) List(ctx context.Context, prefix string) ([]string, error) {
	key, _, err := pubky.SplitURL(prefix)
	if err != nil {
		return nil, err
	}
	base, err := securejoin.SecureJoin(f.root, string(key))
	if err != nil {
		return nil, err
	}

	var urls []string
	err = filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(base, p)
		if err != nil {
			return err
		}
		urls = append(urls, key.URL(filepath.ToSlash(rel)))
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}

	return filterPrefix(urls, prefix), nil
}

func (f *FSStore) Get(ctx context.Context, url string) ([]byte, error) {
	p, err := f.resolve(url)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

func (f *FSStore) Put(ctx context.Context, url string, data []byte) error {
	if strings.HasSuffix(url, "/") {
		return fmt.Errorf("cannot write a directory: %s", url)
	}
	p, err := f.resolve(url)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), ".put-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), p)
}

func (f *FSStore) Delete(ctx context.Context, url string) error {
	p, err := f.resolve(url)
	if err != nil {
		return err
	}
	err = os.Remove(p)
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	return err
}

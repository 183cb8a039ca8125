package session

import (
	"context"
	"errors"
	"fmt"

	"geostories.app/core/pubky"
	"geostories.app/core/rbac"
	"geostories.app/core/store"
)

var ErrCapability = errors.New("capability not granted")

// Session is bound to one identity. Its Storage reads anywhere and writes
// only where the session's capabilities allow.
type Session struct {
	Identity     pubky.Key
	Capabilities []rbac.Capability
	Storage      store.Store
}

// New grants caps to identity on e and returns a session whose storage is
// gated by e.
func New(identity pubky.Key, caps string, backend store.Store, e *rbac.Enforcer) (*Session, error) {
	parsed, err := rbac.ParseCapabilities(caps)
	if err != nil {
		return nil, err
	}
	if err := e.Grant(identity, parsed); err != nil {
		return nil, fmt.Errorf("failed to grant capabilities: %w", err)
	}
	// a persistent acl database may already hold earlier grants
	held, err := e.Capabilities(identity)
	if err != nil {
		return nil, fmt.Errorf("failed to read capabilities: %w", err)
	}

	return &Session{
		Identity:     identity,
		Capabilities: held,
		Storage:      &scopedStore{identity, backend, e},
	}, nil
}

type scopedStore struct {
	identity pubky.Key
	backend  store.Store
	enforcer *rbac.Enforcer
}

var _ store.Store = &scopedStore{}

func (s *scopedStore) checkWrite(url string) error {
	key, path, err := pubky.SplitURL(url)
	if err != nil {
		return err
	}
	if key != s.identity {
		return fmt.Errorf("%w: %s is outside %s", ErrCapability, url, s.identity.Short())
	}
	ok, err := s.enforcer.IsWriteAllowed(s.identity, path)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: write %s", ErrCapability, path)
	}
	return nil
}

func (s *scopedStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.backend.List(ctx, prefix)
}

func (s *scopedStore) Get(ctx context.Context, url string) ([]byte, error) {
	return s.backend.Get(ctx, url)
}

func (s *scopedStore) Put(ctx context.Context, url string, data []byte) error {
	if err := s.checkWrite(url); err != nil {
		return err
	}
	return s.backend.Put(ctx, url, data)
}

func (s *scopedStore) Delete(ctx context.Context, url string) error {
	if err := s.checkWrite(url); err != nil {
		return err
	}
	return s.backend.Delete(ctx, url)
}

// Package mocks provides hand-rolled fakes for the pipeline
// dependencies. Function fields allow per-test overrides; call counters
// back the no-wasted-work assertions.
package mocks

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/justicantus/mediagate/common/ipfs"
)

// Oracle is a fake capability oracle.
type Oracle struct {
	ReleaseKeyFunc func(ctx context.Context) ([]byte, error)
	AuthorizeFunc  func(ctx context.Context, account common.Address) (bool, error)

	mu              sync.Mutex
	ReleaseKeyCalls int
	AuthorizeCalls  int
}

// NewOracle returns an oracle that releases key and authorizes
// everyone. Like the real client, the defaults honor context
// cancellation.
func NewOracle(key []byte) *Oracle {
	return &Oracle{
		ReleaseKeyFunc: func(ctx context.Context) ([]byte, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return key, nil
		},
		AuthorizeFunc: func(ctx context.Context, _ common.Address) (bool, error) {
			if err := ctx.Err(); err != nil {
				return false, err
			}
			return true, nil
		},
	}
}

func (o *Oracle) ReleaseKey(ctx context.Context) ([]byte, error) {
	o.mu.Lock()
	o.ReleaseKeyCalls++
	o.mu.Unlock()
	return o.ReleaseKeyFunc(ctx)
}

func (o *Oracle) Authorize(ctx context.Context, account common.Address) (bool, error) {
	o.mu.Lock()
	o.AuthorizeCalls++
	o.mu.Unlock()
	return o.AuthorizeFunc(ctx, account)
}

// Store is an in-memory content-addressed store.
type Store struct {
	PublishFunc func(ctx context.Context, r io.Reader) (string, error)
	FetchFunc   func(ctx context.Context, cid string) (string, func(), error)

	mu           sync.Mutex
	Objects      map[string][]byte
	PublishOrder []string
	PublishCalls int
	FetchCalls   int
	Cleanups     int
}

// NewStore returns a store that mints sequential mock CIDs on publish
// and serves fetches from memory via scratch files. The defaults honor
// context cancellation the way the HTTP client does.
func NewStore() *Store {
	s := &Store{Objects: map[string][]byte{}}

	s.PublishFunc = func(ctx context.Context, r io.Reader) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return "", err
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		cid := fmt.Sprintf("QmMock%d", len(s.PublishOrder)+1)
		s.Objects[cid] = data
		s.PublishOrder = append(s.PublishOrder, cid)
		return cid, nil
	}

	s.FetchFunc = func(ctx context.Context, cid string) (string, func(), error) {
		if err := ctx.Err(); err != nil {
			return "", nil, err
		}
		s.mu.Lock()
		data, ok := s.Objects[cid]
		s.mu.Unlock()
		if !ok {
			return "", nil, fmt.Errorf("%w: status 404", ipfs.ErrStoreRejected)
		}

		scratch := filepath.Join(os.TempDir(), uuid.NewString()+".enc")
		if err := os.WriteFile(scratch, data, 0o600); err != nil {
			return "", nil, err
		}
		cleanup := func() {
			s.mu.Lock()
			s.Cleanups++
			s.mu.Unlock()
			os.Remove(scratch)
		}
		return scratch, cleanup, nil
	}

	return s
}

// Put seeds an object under a caller-chosen CID.
func (s *Store) Put(cid string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Objects[cid] = bytes.Clone(data)
}

func (s *Store) Publish(ctx context.Context, r io.Reader) (string, error) {
	s.mu.Lock()
	s.PublishCalls++
	s.mu.Unlock()
	return s.PublishFunc(ctx, r)
}

func (s *Store) Fetch(ctx context.Context, cid string) (string, func(), error) {
	s.mu.Lock()
	s.FetchCalls++
	s.mu.Unlock()
	return s.FetchFunc(ctx, cid)
}

// asyncserver - Single-Connection Async Request/Response Server Framework
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/asyncserver

package supervisor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/asyncserver/internal/logging"
)

type stubService struct {
	ran  chan struct{}
	name string
}

func newStubService(name string) *stubService {
	return &stubService{ran: make(chan struct{}, 1), name: name}
}

func (s *stubService) Serve(ctx context.Context) error {
	select {
	case s.ran <- struct{}{}:
	default:
	}
	<-ctx.Done()
	return nil
}

func (s *stubService) String() string { return s.name }

func TestTreeServesAddedService(t *testing.T) {
	tree := NewTree(logging.NewSlogLogger(), DefaultTreeConfig())
	svc := newStubService("stub")
	tree.Add(svc)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tree.Serve(ctx) }()

	select {
	case <-svc.ran:
	case <-time.After(2 * time.Second):
		t.Fatal("service was never started by the tree")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("tree never stopped after cancel")
	}
}

func TestNewTreeAppliesDefaultsOnZeroConfig(t *testing.T) {
	tree := NewTree(logging.NewSlogLogger(), TreeConfig{})
	require.NotNil(t, tree)
}

// asyncserver - Single-Connection Async Request/Response Server Framework
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/asyncserver

package supervisor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/asyncserver/internal/server"
)

type fakeRunner struct {
	err error
}

func (f fakeRunner) Serve(context.Context) error { return f.err }

var _ suture.Service = (*Service)(nil)

func TestServiceServeDelegatesToRunner(t *testing.T) {
	wantErr := errors.New("boom")
	svc := NewService(fakeRunner{err: wantErr}, "server")
	assert.ErrorIs(t, svc.Serve(context.Background()), wantErr)
}

func TestServiceStringReturnsName(t *testing.T) {
	svc := NewService(fakeRunner{}, "server")
	assert.Equal(t, "server", svc.String())
}

func TestServiceServeMapsCleanCompletionToDoNotRestart(t *testing.T) {
	svc := NewService(fakeRunner{}, "server")
	assert.ErrorIs(t, svc.Serve(context.Background()), suture.ErrDoNotRestart)
}

func TestServiceServeMapsShuttingDownToDoNotRestart(t *testing.T) {
	svc := NewService(fakeRunner{err: server.ErrShuttingDown}, "server")
	assert.ErrorIs(t, svc.Serve(context.Background()), suture.ErrDoNotRestart)
}

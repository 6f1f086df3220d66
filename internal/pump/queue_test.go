// asyncserver - Single-Connection Async Request/Response Server Framework
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/asyncserver

package pump

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseQueueFIFO(t *testing.T) {
	var q responseQueue[int]
	q.PushBack(1)
	q.PushBack(2)
	q.PushBack(3)

	require.Equal(t, 3, q.Len())
	assert.Equal(t, 1, q.PopFront())
	assert.Equal(t, 2, q.PopFront())
	assert.Equal(t, 3, q.PopFront())
	assert.True(t, q.Empty())
}

func TestResponseQueuePushFrontPreservesOrder(t *testing.T) {
	var q responseQueue[string]
	q.PushBack("b")
	q.PushBack("c")
	q.PushFront("a")

	assert.Equal(t, "a", q.PopFront())
	assert.Equal(t, "b", q.PopFront())
	assert.Equal(t, "c", q.PopFront())
}

func TestResponseQueuePopFrontPanicsWhenEmpty(t *testing.T) {
	var q responseQueue[int]
	assert.Panics(t, func() { q.PopFront() })
}

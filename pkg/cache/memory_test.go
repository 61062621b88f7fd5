package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMemoryStoreCleanupLoop(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s := NewMemoryStore("", 5*time.Millisecond)
	require.NoError(t, s.SetJSON(context.Background(), "k", "v", time.Millisecond))

	assert.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 5*time.Millisecond)

	s.Close()
	s.Close()
}

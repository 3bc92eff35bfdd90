// SPDX-License-Identifier: MIT

package logq_test

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/veilfs/veilfs/internal/logq"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPullNonBlocking(t *testing.T) {
	queue := logq.New(0)

	_, ok := queue.Pull(false)
	assert.False(t, ok)

	queue.Push("first")
	queue.Push("second")

	msg, ok := queue.Pull(false)
	require.True(t, ok)
	assert.Equal(t, "first", msg)

	msg, ok = queue.Pull(false)
	require.True(t, ok)
	assert.Equal(t, "second", msg)

	_, ok = queue.Pull(false)
	assert.False(t, ok)
}

func TestPullBlocking(t *testing.T) {
	queue := logq.New(0)

	result := make(chan string, 1)

	go func() {
		msg, _ := queue.Pull(true)
		result <- msg
	}()

	// Reader must still be waiting, nothing was pushed yet.
	select {
	case <-result:
		t.Fatal("pull returned before push")
	case <-time.After(20 * time.Millisecond):
	}

	queue.Push("wake up")

	select {
	case msg := <-result:
		assert.Equal(t, "wake up", msg)
	case <-time.After(time.Second):
		t.Fatal("pull did not return after push")
	}
}

func TestCloseWakesBlockedReaders(t *testing.T) {
	queue := logq.New(0)

	done := make(chan bool, 2)

	for i := 0; i < 2; i++ {
		go func() {
			_, ok := queue.Pull(true)
			done <- ok
		}()
	}

	time.Sleep(20 * time.Millisecond)
	queue.Close()

	for i := 0; i < 2; i++ {
		select {
		case ok := <-done:
			assert.False(t, ok)
		case <-time.After(time.Second):
			t.Fatal("blocked reader was not woken by close")
		}
	}
}

func TestLimitDropsOldest(t *testing.T) {
	queue := logq.New(2)

	queue.Push("a")
	queue.Push("b")
	queue.Push("c")

	assert.Equal(t, 2, queue.Len())

	msg, ok := queue.Pull(false)
	require.True(t, ok)
	assert.Equal(t, "b", msg)
}

func TestPushAfterClose(t *testing.T) {
	queue := logq.New(0)
	queue.Close()
	queue.Push("dropped")

	assert.Equal(t, 0, queue.Len())
}

func TestHook(t *testing.T) {
	queue := logq.New(0)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.DebugLevel)
	logger.AddHook(logq.NewHook(queue))

	logger.Debugf("link %s -> %s", "/virtual", "/real")

	msg, ok := queue.Pull(false)
	require.True(t, ok)
	assert.Contains(t, msg, "link /virtual -> /real")
	assert.Contains(t, msg, "debug")
}

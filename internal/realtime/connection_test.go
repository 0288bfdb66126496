package realtime

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSocket struct {
	mu       sync.Mutex
	messages [][]byte
	writeErr error
	closed   bool
}

func (s *fakeSocket) WriteMessage(_ int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.messages = append(s.messages, append([]byte(nil), data...))
	return nil
}

func (s *fakeSocket) WriteControl(int, []byte, time.Time) error { return nil }
func (s *fakeSocket) SetWriteDeadline(time.Time) error          { return nil }

func (s *fakeSocket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSocket) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *fakeSocket) messageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

func TestConnectionDeliversQueuedFrames(t *testing.T) {
	sock := &fakeSocket{}
	conn := newConnection(sock)
	conn.Start()

	require.NoError(t, conn.Send([]byte("hello")))
	require.Eventually(t, func() bool {
		return sock.messageCount() == 1
	}, time.Second, 5*time.Millisecond)

	conn.Close(1000, "done")
	assert.True(t, sock.isClosed())
}

func TestConnectionWriteFailureClosesSocket(t *testing.T) {
	sock := &fakeSocket{writeErr: errors.New("broken pipe")}
	conn := newConnection(sock)

	require.NoError(t, conn.Send([]byte("hello")))

	// Runs synchronously; the loop exits after the failed write closed the
	// connection.
	conn.writeLoop()

	assert.True(t, sock.isClosed())

	err := conn.Send([]byte("again"))
	require.Error(t, err)
	assert.EqualError(t, err, "connection closed")
}

func TestConnectionSendAfterCloseFails(t *testing.T) {
	sock := &fakeSocket{}
	conn := newConnection(sock)
	conn.Close(1000, "done")

	err := conn.Send([]byte("late"))
	require.Error(t, err)
}

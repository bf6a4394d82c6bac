package lib

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ThreadSafeWebSocket wraps a websocket.Conn and allows many readers and writers to
// read/write the conn from goroutines without having to track safe access.
// This comes with the caveat that all writes block eachother, and similarly for reads.
// See https://pkg.go.dev/github.com/gorilla/websocket?utm_source=godoc#hdr-Concurrency.
type ThreadSafeWebSocket struct {
	c       *websocket.Conn
	writeMu *sync.Mutex
	readMu  *sync.Mutex
	// WriteTimeout bounds every write; zero means no deadline.
	WriteTimeout time.Duration
}

func NewThreadSafeWebSocket(c *websocket.Conn) ThreadSafeWebSocket {
	return ThreadSafeWebSocket{c: c, writeMu: &sync.Mutex{}, readMu: &sync.Mutex{}}
}

func (s ThreadSafeWebSocket) ReadMessage() (int, []byte, error) {
	s.readMu.Lock()
	defer s.readMu.Unlock()
	return s.c.ReadMessage()
}

func (s ThreadSafeWebSocket) deadline() {
	if s.WriteTimeout > 0 {
		_ = s.c.SetWriteDeadline(time.Now().Add(s.WriteTimeout))
	}
}

func (s ThreadSafeWebSocket) WriteMessage(messageType int, data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.deadline()
	return s.c.WriteMessage(messageType, data)
}

// WriteJSON writes v as one text message.
func (s ThreadSafeWebSocket) WriteJSON(v interface{}) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.deadline()
	return s.c.WriteJSON(v)
}

// Close sends a normal closure frame and closes the connection.
func (s ThreadSafeWebSocket) Close(reason string) error {
	s.writeMu.Lock()
	_ = s.c.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason),
		time.Now().Add(time.Second))
	s.writeMu.Unlock()
	return s.c.Close()
}

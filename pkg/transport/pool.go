package transport

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const defaultPingTimeout = 5 * time.Second

// ConnPool tracks live websocket connections by connection ID and answers
// liveness queries with a control-frame ping. It implements
// LivenessChecker, so it can be passed to ValidateReady as the transport
// handle.
type ConnPool struct {
	mu          sync.RWMutex
	conns       map[string]*websocket.Conn
	pingTimeout time.Duration
}

// NewConnPool creates a pool. Non-positive pingTimeout falls back to the
// default.
func NewConnPool(pingTimeout time.Duration) *ConnPool {
	if pingTimeout <= 0 {
		pingTimeout = defaultPingTimeout
	}
	return &ConnPool{
		conns:       make(map[string]*websocket.Conn),
		pingTimeout: pingTimeout,
	}
}

// Register associates conn with connectionID, replacing any previous
// connection under the same ID.
func (p *ConnPool) Register(connectionID string, conn *websocket.Conn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.conns[connectionID] = conn
}

// Unregister removes the connection for connectionID, if any.
func (p *ConnPool) Unregister(connectionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.conns, connectionID)
}

// Len returns the number of registered connections.
func (p *ConnPool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.conns)
}

// IsAlive reports whether connectionID is registered and its connection
// accepts a ping control frame within the pool's timeout. WriteControl is
// safe to call concurrently with the connection's writer.
func (p *ConnPool) IsAlive(connectionID string) bool {
	p.mu.RLock()
	conn, ok := p.conns[connectionID]
	p.mu.RUnlock()
	if !ok {
		return false
	}
	deadline := time.Now().Add(p.pingTimeout)
	return conn.WriteControl(websocket.PingMessage, nil, deadline) == nil
}

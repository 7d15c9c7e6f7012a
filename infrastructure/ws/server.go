// Package ws is the WebSocket transport of the relay: one persistent
// bidirectional connection per client, JSON frames in both directions.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"chat-relay/observability"
	"chat-relay/protocol"
	"chat-relay/session"
	"chat-relay/sink"
)

type Server struct {
	log        *slog.Logger
	manager    *session.Manager
	monitor    *observability.Monitor
	bufferSize int
}

func NewServer(log *slog.Logger, manager *session.Manager,
	monitor *observability.Monitor, connectionBufferSize int) *Server {
	return &Server{
		log:        log,
		manager:    manager,
		monitor:    monitor,
		bufferSize: connectionBufferSize,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleConnection)
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/stats", s.handleStats)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  "OK",
		"message": "chat-relay server is running",
	})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.monitor.Snapshot())
}

// handleConnection owns one connection end to end: it opens a session,
// starts the write pump draining the connection's sink, and runs the read
// loop until the client goes away. Cleanup is deferred so an abrupt
// termination is treated exactly like an orderly disconnect.
func (s *Server) handleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// Origins are enforced upstream; any client may connect directly.
		InsecureSkipVerify: true,
	})
	if err != nil {
		s.log.Error("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	s.monitor.ConnOpened()
	defer s.monitor.ConnClosed()

	connectionID := uuid.NewString()
	connSink := sink.NewConnSink(s.log, s.bufferSize)
	sess := s.manager.Open(connectionID, connSink)
	s.log.Info("client connected", "connection_id", connectionID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	// The disconnect announcement must go out even though the request
	// context is already tearing down.
	defer sess.Close(context.WithoutCancel(r.Context()))

	go s.writePump(ctx, cancel, conn, connSink)

	for {
		var frame protocol.ClientFrame
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			s.log.Info("client disconnected", "connection_id", connectionID)
			return
		}
		sess.Handle(ctx, frame)
	}
}

// writePump pushes every queued frame onto the wire in arrival order. A write
// failure cancels the connection context, which unblocks the read loop.
func (s *Server) writePump(ctx context.Context, cancel context.CancelFunc,
	conn *websocket.Conn, connSink *sink.ConnSink) {
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case frame := <-connSink.Frames:
			if err := wsjson.Write(ctx, conn, frame); err != nil {
				s.log.Warn("failed to push frame to connection", "event", frame.Event, "error", err)
				return
			}
			s.monitor.FrameWritten()
		}
	}
}

package jsonrpc

import (
	"context"
	"strconv"
	"sync/atomic"

	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/rs/zerolog"
	"github.com/stylelintls/stylelint-ls/internal/logs"
)

const (
	JSON_RPC_SERVER_LOG_SRC = "json-rpc"
)

type MethodInfo struct {
	Name       string
	NewRequest func() interface{}
	Handler    func(ctx context.Context, req interface{}) (interface{}, error)
}

// Server dispatches the messages of its sessions to the registered methods. Methods should all be
// registered before the first session starts.
type Server struct {
	sessions  cmap.ConcurrentMap[string, *Session]
	nextId    atomic.Int64
	methods   map[string]MethodInfo
	onSession SessionCreationCallbackFn
	logger    zerolog.Logger
}

// Called before starting each new JSON RPC session, returning an error prevents the session from starting.
type SessionCreationCallbackFn func(*Session) error

func NewServer(onSession SessionCreationCallbackFn) *Server {
	if onSession == nil {
		onSession = func(s *Session) error { return nil }
	}

	s := &Server{
		sessions:  cmap.New[*Session](),
		methods:   make(map[string]MethodInfo),
		onSession: onSession,
		logger:    logs.NewChildLogger(JSON_RPC_SERVER_LOG_SRC),
	}

	s.RegisterMethod(CancelRequest())
	return s
}

func (s *Server) RegisterMethod(m MethodInfo) {
	s.methods[m.Name] = m
}

// ConnComeIn starts a session reading Content-Length framed messages from conn, it returns when the session ends.
func (s *Server) ConnComeIn(conn ReaderWriter) {
	s.MsgConnComeIn(NewStreamConn(conn))
}

// MsgConnComeIn starts a session on a message-oriented connection (e.g. a websocket), it returns when the session ends.
func (s *Server) MsgConnComeIn(conn MessageReaderWriter) {
	id := int(s.nextId.Add(1) - 1)
	session := newSession(id, s, conn)
	s.sessions.Set(strconv.Itoa(id), session)

	if err := s.onSession(session); err != nil {
		s.logger.Debug().Err(err).Int("session", id).Msg("session refused")
		session.Close()
		return
	}
	session.Start()
}

func (s *Server) SessionCount() int {
	return s.sessions.Count()
}

func (s *Server) removeSession(id int) {
	s.sessions.Remove(strconv.Itoa(id))
}

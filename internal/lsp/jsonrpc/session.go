package jsonrpc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
)

type sessionKeyType struct{}

var (
	sessionKey = sessionKeyType{}

	ErrSessionClosed = errors.New("session is closed")
)

type runningHandler struct {
	id     interface{}
	cancel context.CancelFunc
}

// pendingRequest is a request sent by the server that has not been answered yet.
type pendingRequest struct {
	method   string
	response chan incomingMessage
}

type Session struct {
	id     int
	server *Server
	logger zerolog.Logger

	msgConn MessageReaderWriter

	running     map[string]*runningHandler
	runningLock sync.Mutex
	writeLock   sync.Mutex

	pendingRequests map[string]*pendingRequest
	pendingLock     sync.Mutex

	closed atomic.Bool
	done   chan struct{}
}

func newSession(id int, server *Server, conn MessageReaderWriter) *Session {
	return &Session{
		id:              id,
		server:          server,
		msgConn:         conn,
		logger:          server.logger.With().Int("session", id).Logger(),
		running:         make(map[string]*runningHandler),
		pendingRequests: make(map[string]*pendingRequest),
		done:            make(chan struct{}),
	}
}

func (s *Session) Id() int {
	return s.id
}

// Client returns a short description of the session, it is used in log messages.
func (s *Session) Client() string {
	return "session-" + strconv.Itoa(s.id)
}

func (s *Session) Closed() bool {
	return s.closed.Load()
}

// Done returns a channel that is closed when the session ends.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) Start() {
	for !s.closed.Load() {
		s.handle()
	}
}

func (s *Session) handle() {
	msg, err := s.readMessage()
	if err != nil {
		var respErr ResponseError
		if errors.As(err, &respErr) {
			err := s.respond(nil, nil, err)
			if err != nil {
				s.onWriteError(err)
			}
			return
		}

		//the transport is broken or closed
		if !errors.Is(err, io.EOF) && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			s.logger.Debug().Err(err).Msg("failed to read message")
		}
		s.Close()
		return
	}

	if msg.isResponse() {
		s.handleResponse(msg)
		return
	}

	if msg.Method == "" {
		if err := s.respond(nil, nil, InvalidRequest); err != nil {
			s.onWriteError(err)
		}
		return
	}

	req := RequestMessage{
		BaseMessage: msg.BaseMessage,
		ID:          msg.ID,
		Method:      msg.Method,
		Params:      msg.Params,
	}

	s.logger.Debug().Msgf("Request: [%v] [%s], content: [%v]", req.ID, req.Method, string(req.Params))
	err = s.dispatch(req)
	if err != nil {
		err := s.respond(req.ID, nil, err)
		if err != nil {
			s.onWriteError(err)
		}
		return
	}
}

func (s *Session) trackRequest(handler *runningHandler) {
	s.runningLock.Lock()
	defer s.runningLock.Unlock()
	s.running[requestKey(handler.id)] = handler
}

func (s *Session) untrackRequest(handler *runningHandler) {
	s.runningLock.Lock()
	defer s.runningLock.Unlock()
	delete(s.running, requestKey(handler.id))
}

func (s *Session) readMessage() (incomingMessage, error) {
	var contentBytes []byte

	//empty messages are skipped
	for len(contentBytes) == 0 {
		msg, err := s.msgConn.ReadMessage()
		if err != nil {
			return incomingMessage{}, err
		}
		contentBytes = msg
	}

	msg := incomingMessage{}
	err := jsoniter.Unmarshal(contentBytes, &msg)
	if err != nil {
		e := ParseError
		e.Data = err.Error()
		return incomingMessage{}, e
	}
	return msg, nil
}

func GetSession(ctx context.Context) *Session {
	val := ctx.Value(sessionKey)
	if isNil(val) {
		return nil
	}
	return val.(*Session)
}

// WithSession returns a copy of ctx carrying session, handlers retrieve it with GetSession.
func WithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

func (s *Session) runningRequest(id interface{}) *runningHandler {
	if isNil(id) {
		return nil
	}
	s.runningLock.Lock()
	defer s.runningLock.Unlock()
	handler, ok := s.running[requestKey(id)]
	if !ok {
		return nil
	}
	return handler
}

func (s *Session) cancelRequest(id interface{}) {
	handler := s.runningRequest(id)
	if handler == nil {
		return
	}
	handler.cancel()
	s.untrackRequest(handler)
}

// execute runs the handler in a new goroutine so that a slow handler never blocks the reading of the next messages.
func (s *Session) execute(mtdInfo MethodInfo, req RequestMessage, args interface{}) {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = WithSession(ctx, s)
	running := &runningHandler{
		id:     req.ID,
		cancel: cancel,
	}
	if req.ID != nil {
		s.trackRequest(running)
	}
	go func() {
		defer cancel()
		defer s.untrackRequest(running)
		defer func() {
			if e := recover(); e != nil {
				s.logger.Error().Msgf("panic in handler of %s: %v", req.Method, e)
				if req.ID != nil {
					s.respond(req.ID, nil, InternalError)
				}
			}
		}()

		go func() {
			select {
			case <-s.done:
				cancel()
			case <-ctx.Done():
			}
		}()

		resp, err := mtdInfo.Handler(ctx, args)
		select {
		case <-ctx.Done():
			//cancelled by $/cancelRequest or by the end of the session
			if req.ID != nil && !s.closed.Load() {
				s.respond(req.ID, nil, RequestCancelled)
			}
			return
		default:
		}
		if isNil(resp) && isNil(err) && isNil(req.ID) {
			return
		}
		if isNil(req.ID) {
			if err != nil {
				s.logger.Debug().Err(err).Str("method", req.Method).Msg("notification handler failed")
			}
			return
		}
		err = s.respond(req.ID, resp, err)
		if err != nil {
			s.onWriteError(err)
		}
	}()
}

func (s *Session) dispatch(req RequestMessage) error {
	mtd := req.Method
	mtdInfo, ok := s.server.methods[mtd]

	if !ok {
		if req.ID == nil {
			//notifications without handlers are ignored
			s.logger.Debug().Str("method", mtd).Msg("no handler for notification")
			return nil
		}
		return MethodNotFound
	}
	reqArgs := mtdInfo.NewRequest()
	if len(req.Params) > 0 {
		err := jsoniter.Unmarshal(req.Params, reqArgs)
		if err != nil {
			return InvalidParams
		}
	}
	s.execute(mtdInfo, req, reqArgs)
	return nil
}

func (s *Session) handleResponse(msg incomingMessage) {
	key := requestKey(msg.ID)

	s.pendingLock.Lock()
	pending, ok := s.pendingRequests[key]
	delete(s.pendingRequests, key)
	s.pendingLock.Unlock()

	if !ok {
		s.logger.Debug().Str("id", key).Msg("response to an unknown request")
		return
	}
	pending.response <- msg
}

// SendRequest sends a request to the client and waits for the response. If result is not nil
// and the response carries a non-null result the result is decoded into it. A response error
// is returned as a ResponseError.
func (s *Session) SendRequest(ctx context.Context, method string, params interface{}, result interface{}) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}

	paramsBytes, err := jsoniter.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to marshal params of %s: %w", method, err)
	}

	id := uuid.NewString()
	pending := &pendingRequest{
		method:   method,
		response: make(chan incomingMessage, 1),
	}

	s.pendingLock.Lock()
	s.pendingRequests[id] = pending
	s.pendingLock.Unlock()

	defer func() {
		s.pendingLock.Lock()
		delete(s.pendingRequests, id)
		s.pendingLock.Unlock()
	}()

	err = s.writeMessage(RequestMessage{
		BaseMessage: BaseMessage{Jsonrpc: JSONRPC_VERSION},
		ID:          id,
		Method:      method,
		Params:      paramsBytes,
	})
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return ErrSessionClosed
	case resp := <-pending.response:
		if resp.Error != nil {
			return *resp.Error
		}
		if result == nil || len(resp.Result) == 0 || string(resp.Result) == "null" {
			return nil
		}
		if err := jsoniter.Unmarshal(resp.Result, result); err != nil {
			return fmt.Errorf("invalid result for %s: %w", method, err)
		}
		return nil
	}
}

func (s *Session) write(resp ResponseMessage) error {
	resp.BaseMessage = BaseMessage{Jsonrpc: JSONRPC_VERSION}
	return s.writeMessage(resp)
}

func (s *Session) Notify(notif NotificationMessage) error {
	notif.BaseMessage = BaseMessage{Jsonrpc: JSONRPC_VERSION}
	return s.writeMessage(notif)
}

func (s *Session) writeMessage(msg interface{}) error {
	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	res, err := jsoniter.Marshal(msg)
	if err != nil {
		return err
	}

	s.logger.Debug().Msgf("Write: [%v]", string(res))

	return s.msgConn.WriteMessage(res)
}

func (s *Session) respond(id interface{}, result interface{}, err error) error {
	resp := ResponseMessage{ID: id}
	if err != nil {
		if errors.Is(err, io.EOF) {
			return err
		}
		var respErr ResponseError
		if errors.As(err, &respErr) {
			resp.Error = &respErr
		} else {
			resp.Error = &ResponseError{
				Code:    InternalErrorCode,
				Message: err.Error(),
			}
		}
	} else {
		resp.Result = result
	}
	return s.write(resp)
}

func (s *Session) onWriteError(err error) {
	isEof := errors.Is(err, io.EOF)
	isWebsocketUnexpectedClose := websocket.IsUnexpectedCloseError(err)

	if isEof || isWebsocketUnexpectedClose {
		// conn done, close conn and remove session
		s.Close()
		return
	}
	s.logger.Debug().Err(err).Send()
}

// Close closes the connection, cancels the running handlers and fails the pending requests.
func (s *Session) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}

	if err := s.msgConn.Close(); err != nil {
		s.logger.Debug().Err(err).Msg("close error")
	}

	func() {
		s.runningLock.Lock()
		defer s.runningLock.Unlock()
		for _, v := range s.running {
			if v != nil {
				v.cancel()
			}
		}
	}()

	close(s.done)
	s.server.removeSession(s.id)
}

func requestKey(id interface{}) string {
	switch v := id.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func isNil(i interface{}) bool {
	if i == nil {
		return true
	}
	v := reflect.ValueOf(i)
	if v.Kind() == reflect.Ptr && v.IsNil() {
		return true
	}
	return false
}

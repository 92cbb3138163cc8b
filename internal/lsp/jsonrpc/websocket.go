package jsonrpc

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	WEBSOCKET_CLOSE_TIMEOUT = time.Second
)

var (
	_ MessageReaderWriter = (*JsonRpcWebsocket)(nil)
)

// JsonRpcWebsocket is a MessageReaderWriter that sends each JSON-RPC message in its own text frame,
// non-text frames are ignored.
type JsonRpcWebsocket struct {
	conn   *websocket.Conn
	lock   sync.Mutex
	logger zerolog.Logger
}

func NewJsonRpcWebsocket(conn *websocket.Conn, logger zerolog.Logger) *JsonRpcWebsocket {
	conn.SetReadLimit(MAX_CONTENT_LENGTH)
	return &JsonRpcWebsocket{conn: conn, logger: logger}
}

func (s *JsonRpcWebsocket) ReadMessage() ([]byte, error) {
	msgType, msg, err := s.conn.ReadMessage()
	if err != nil {
		return nil, err
	}

	if msgType != websocket.TextMessage {
		s.logger.Debug().Int("type", msgType).Msg("a non text message was received")
		return nil, nil
	}

	return msg, nil
}

func (s *JsonRpcWebsocket) WriteMessage(msg []byte) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.conn.WriteMessage(websocket.TextMessage, msg)
}

// Close sends a close frame to the peer and closes the connection.
func (s *JsonRpcWebsocket) Close() error {
	s.lock.Lock()
	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	err := s.conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(WEBSOCKET_CLOSE_TIMEOUT))
	s.lock.Unlock()

	if err != nil && err != websocket.ErrCloseSent {
		s.logger.Debug().Err(err).Msg("failed to send close message")
	}

	return s.conn.Close()
}

func (s *JsonRpcWebsocket) RemoteAddr() string {
	return s.conn.RemoteAddr().String()
}

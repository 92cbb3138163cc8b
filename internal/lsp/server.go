package lsp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"reflect"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stylelintls/stylelint-ls/internal/logs"
	"github.com/stylelintls/stylelint-ls/internal/lsp/jsonrpc"
)

const (
	LSP_LOG_SRC            = "lsp"
	DEFAULT_ADDRESS        = "127.0.0.1:7998"
	WEBSOCKET_READ_TIMEOUT = 10 * time.Second
)

var (
	ErrUnknownNetwork = errors.New("unknown network")
)

type Server struct {
	Methods
	rpcServer *jsonrpc.Server
	logger    zerolog.Logger
}

func NewServer(opt *Config) *Server {
	s := &Server{}
	s.Opt = *opt
	s.rpcServer = jsonrpc.NewServer(opt.OnSession)
	s.logger = logs.NewChildLogger(LSP_LOG_SRC)
	return s
}

// Run registers the handlers and serves until ctx is done or, in stdio mode, until the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	mtds := s.GetMethods()
	for _, m := range mtds {
		if m != nil {
			s.rpcServer.RegisterMethod(*m)
		}
	}

	return s.run(ctx)
}

func (s *Server) run(ctx context.Context) error {
	addr := s.Opt.Address
	if addr == "" {
		addr = DEFAULT_ADDRESS
	}

	switch s.Opt.Network {
	case "":
		if s.Opt.MessageReaderWriter != nil {
			s.logger.Debug().Msg("use message reader-writer mode")
			s.rpcServer.MsgConnComeIn(s.Opt.MessageReaderWriter)
			return nil
		}
		s.logger.Debug().Msg("use stdio mode")
		s.rpcServer.ConnComeIn(NewStdio(s.Opt.StdioInput, s.Opt.StdioOutput))
		return nil
	case NETWORK_TCP:
		return s.serveTCP(ctx, addr)
	case NETWORK_WEBSOCKET:
		return s.serveWebsocket(ctx, addr)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownNetwork, s.Opt.Network)
	}
}

func (s *Server) serveTCP(ctx context.Context, addr string) error {
	s.logger.Info().Str("addr", addr).Msg("use socket mode")

	listener, err := net.Listen(NETWORK_TCP, addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		go s.rpcServer.ConnComeIn(conn)
	}
}

func (s *Server) serveWebsocket(ctx context.Context, addr string) error {
	s.logger.Info().Str("addr", addr).Msg("use websocket mode")

	upgrader := websocket.Upgrader{
		HandshakeTimeout: WEBSOCKET_READ_TIMEOUT,
	}

	httpServer := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: WEBSOCKET_READ_TIMEOUT,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			conn, err := upgrader.Upgrade(w, r, nil)
			if err != nil {
				s.logger.Debug().Err(err).Send()
				return
			}

			socket := jsonrpc.NewJsonRpcWebsocket(conn, s.logger)
			s.logger.Debug().Str("remote", socket.RemoteAddr()).Msg("new websocket connection")
			s.rpcServer.MsgConnComeIn(socket)
		}),
	}

	go func() {
		<-ctx.Done()
		httpServer.Close()
	}()

	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func wrapErrorToRespError(err interface{}, code int) error {
	if isNil(err) {
		return nil
	}
	if e, ok := err.(error); ok {
		return e
	}
	return jsonrpc.ResponseError{
		Code:    code,
		Message: fmt.Sprintf("%v", err),
		Data:    err,
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

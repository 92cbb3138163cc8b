package langserver

import (
	"context"
	"errors"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/rs/zerolog"
	"github.com/stylelintls/stylelint-ls/internal/config"
	"github.com/stylelintls/stylelint-ls/internal/documents"
	"github.com/stylelintls/stylelint-ls/internal/logs"
	"github.com/stylelintls/stylelint-ls/internal/lsp"
	"github.com/stylelintls/stylelint-ls/internal/lsp/defines"
	"github.com/stylelintls/stylelint-ls/internal/lsp/jsonrpc"
	"github.com/stylelintls/stylelint-ls/internal/packages"
	"github.com/stylelintls/stylelint-ls/internal/stylelint"
	"github.com/stylelintls/stylelint-ls/internal/workspace"
)

const (
	LANGSERVER_LOG_SRC = "langserver"
	SERVER_NAME        = config.APP_NAME
)

var (
	ErrNoSessionData = errors.New("no data for the current session")
)

type ServerParams struct {
	Options config.Options
	FS      billy.Filesystem //defaults to the OS filesystem
	Modules []ModuleFactory
	Version string
	Logger  *zerolog.Logger //optional
}

// Server hosts the modules, each JSON-RPC session gets its own Context and module instances.
type Server struct {
	options config.Options
	fls     billy.Filesystem
	modules []ModuleFactory
	version string
	logger  zerolog.Logger

	sessions     map[*jsonrpc.Session]*sessionData
	sessionsLock sync.Mutex
}

type sessionData struct {
	context   *Context
	documents *documents.Tracker
	folders   *workspace.Folders
	modules   []Module
}

func NewServer(params ServerParams) *Server {
	logger := logs.NewChildLogger(LANGSERVER_LOG_SRC)
	if params.Logger != nil {
		logger = *params.Logger
	}

	fls := params.FS
	if fls == nil {
		fls = osfs.New("/")
	}

	return &Server{
		options:  params.Options.Clone(),
		fls:      fls,
		modules:  params.Modules,
		version:  params.Version,
		logger:   logger,
		sessions: make(map[*jsonrpc.Session]*sessionData),
	}
}

// Serve registers the LSP handlers and serves until ctx is done or, in stdio mode, until the client disconnects.
func (s *Server) Serve(ctx context.Context, opt lsp.Config) error {
	opt.OnSession = s.onSession
	if opt.ServerName == "" {
		opt.ServerName = SERVER_NAME
	}
	if opt.ServerVersion == "" {
		opt.ServerVersion = s.version
	}
	opt.TextDocumentSync = defines.TextDocumentSyncKindNone

	server := lsp.NewServer(&opt)
	s.registerHandlers(server)

	return server.Run(ctx)
}

func (s *Server) SessionCount() int {
	s.sessionsLock.Lock()
	defer s.sessionsLock.Unlock()
	return len(s.sessions)
}

func (s *Server) onSession(session *jsonrpc.Session) error {
	logger := s.logger.With().Int("session", session.Id()).Logger()

	folders := workspace.NewFolders()
	tracker := documents.NewTracker()

	langCtx := &Context{
		Window:    sessionWindow{session: session},
		Documents: tracker,
		Workspace: folders,
		Packages:  packages.NewResolver(s.fls),
		FS:        s.fls,
	}
	langCtx.SetOptions(s.options)
	langCtx.Stylelint = stylelint.NewResolver(stylelint.ResolverParams{
		FS:        s.fls,
		Workspace: folders,
		Options:   langCtx.Options,
		Logger:    &logger,
	})

	data := &sessionData{
		context:   langCtx,
		documents: tracker,
		folders:   folders,
	}

	for _, factory := range s.modules {
		module := factory(ModuleParams{Context: langCtx, Logger: &logger})
		data.modules = append(data.modules, module)
		logger.Debug().Str("module", module.Id()).Msg("module created")
	}

	for _, module := range data.modules {
		if hook, ok := module.(HandlersRegisteredHook); ok {
			hook.OnDidRegisterHandlers()
		}
	}

	s.sessionsLock.Lock()
	s.sessions[session] = data
	count := len(s.sessions)
	s.sessionsLock.Unlock()

	logs.Println("new session: "+session.Client()+", current session count:", count)

	go func() {
		<-session.Done()
		s.sessionsLock.Lock()
		delete(s.sessions, session)
		s.sessionsLock.Unlock()
		logs.Println("remove one session that has just finished: " + session.Client())
	}()

	return nil
}

func (s *Server) getSessionData(ctx context.Context) (*sessionData, error) {
	session := jsonrpc.GetSession(ctx)
	if session == nil {
		return nil, ErrNoSessionData
	}

	s.sessionsLock.Lock()
	defer s.sessionsLock.Unlock()

	data, ok := s.sessions[session]
	if !ok {
		return nil, ErrNoSessionData
	}
	return data, nil
}

func (s *Server) registerHandlers(server *lsp.Server) {
	server.OnInitialize(func(ctx context.Context, req *defines.InitializeParams) (*defines.InitializeResult, *defines.InitializeError) {
		data, err := s.getSessionData(ctx)
		if err != nil {
			s.logger.Error().Err(err).Msg("initialize")
			return nil, &defines.InitializeError{}
		}

		data.folders.Init(req)

		for _, module := range data.modules {
			if hook, ok := module.(InitializeHook); ok {
				hook.OnInitialize(req)
			}
		}

		return server.BuiltinInitializeResult(ctx, req), nil
	})

	server.OnInitialized(func(ctx context.Context, req *defines.NoParams) error {
		return nil
	})

	server.OnShutdown(func(ctx context.Context, req *defines.NoParams) error {
		return nil
	})

	server.OnExit(func(ctx context.Context, req *defines.NoParams) error {
		if session := jsonrpc.GetSession(ctx); session != nil {
			session.Close()
		}
		return nil
	})

	server.OnDidChangeConfiguration(func(ctx context.Context, req *defines.DidChangeConfigurationParams) error {
		data, err := s.getSessionData(ctx)
		if err != nil {
			return err
		}
		data.context.SetOptions(config.ApplySettings(data.context.Options(), req.Settings))
		return nil
	})

	server.OnDidChangeWorkspaceFolders(func(ctx context.Context, req *defines.DidChangeWorkspaceFoldersParams) error {
		data, err := s.getSessionData(ctx)
		if err != nil {
			return err
		}
		data.folders.Update(req.Event)
		return nil
	})

	server.OnDidOpenTextDocument(func(ctx context.Context, req *defines.DidOpenTextDocumentParams) error {
		data, err := s.getSessionData(ctx)
		if err != nil {
			return err
		}
		data.documents.DidOpen(ctx, req.TextDocument)
		return nil
	})

	server.OnDidCloseTextDocument(func(ctx context.Context, req *defines.DidCloseTextDocumentParams) error {
		data, err := s.getSessionData(ctx)
		if err != nil {
			return err
		}
		data.documents.DidClose(req.TextDocument.Uri)
		return nil
	})
}

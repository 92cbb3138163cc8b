package lsp

import (
	"context"

	"github.com/stylelintls/stylelint-ls/internal/lsp/defines"
	"github.com/stylelintls/stylelint-ls/internal/lsp/jsonrpc"
)

type NotificationHandler[P any] func(ctx context.Context, req *P) error

// Methods is the table of LSP methods handled by the server, a method without handler is not registered
// except for initialize and shutdown that every server has to answer.
type Methods struct {
	Opt Config

	onInitialize                func(ctx context.Context, req *defines.InitializeParams) (*defines.InitializeResult, *defines.InitializeError)
	onInitialized               NotificationHandler[defines.NoParams]
	onShutdown                  NotificationHandler[defines.NoParams]
	onExit                      NotificationHandler[defines.NoParams]
	onDidChangeConfiguration    NotificationHandler[defines.DidChangeConfigurationParams]
	onDidChangeWorkspaceFolders NotificationHandler[defines.DidChangeWorkspaceFoldersParams]
	onDidOpenTextDocument       NotificationHandler[defines.DidOpenTextDocumentParams]
	onDidCloseTextDocument      NotificationHandler[defines.DidCloseTextDocumentParams]
}

func (m *Methods) OnInitialize(f func(ctx context.Context, req *defines.InitializeParams) (result *defines.InitializeResult, err *defines.InitializeError)) {
	m.onInitialize = f
}

func (m *Methods) OnInitialized(f NotificationHandler[defines.NoParams]) {
	m.onInitialized = f
}

func (m *Methods) OnShutdown(f NotificationHandler[defines.NoParams]) {
	m.onShutdown = f
}

func (m *Methods) OnExit(f NotificationHandler[defines.NoParams]) {
	m.onExit = f
}

func (m *Methods) OnDidChangeConfiguration(f NotificationHandler[defines.DidChangeConfigurationParams]) {
	m.onDidChangeConfiguration = f
}

func (m *Methods) OnDidChangeWorkspaceFolders(f NotificationHandler[defines.DidChangeWorkspaceFoldersParams]) {
	m.onDidChangeWorkspaceFolders = f
}

func (m *Methods) OnDidOpenTextDocument(f NotificationHandler[defines.DidOpenTextDocumentParams]) {
	m.onDidOpenTextDocument = f
}

func (m *Methods) OnDidCloseTextDocument(f NotificationHandler[defines.DidCloseTextDocumentParams]) {
	m.onDidCloseTextDocument = f
}

func (m *Methods) initialize(ctx context.Context, req interface{}) (interface{}, error) {
	params := req.(*defines.InitializeParams)
	if m.onInitialize == nil {
		return m.builtinInitialize(ctx, params), nil
	}

	res, err := m.onInitialize(ctx, params)
	return res, wrapErrorToRespError(err, 1)
}

func (m *Methods) GetMethods() []*jsonrpc.MethodInfo {
	shutdown := m.onShutdown
	if shutdown == nil {
		shutdown = func(ctx context.Context, req *defines.NoParams) error { return nil }
	}

	return []*jsonrpc.MethodInfo{
		{
			Name:       "initialize",
			NewRequest: func() interface{} { return &defines.InitializeParams{} },
			Handler:    m.initialize,
		},
		methodInfo("initialized", m.onInitialized),
		methodInfo("shutdown", shutdown),
		methodInfo("exit", m.onExit),
		methodInfo("workspace/didChangeConfiguration", m.onDidChangeConfiguration),
		methodInfo("workspace/didChangeWorkspaceFolders", m.onDidChangeWorkspaceFolders),
		methodInfo("textDocument/didOpen", m.onDidOpenTextDocument),
		methodInfo("textDocument/didClose", m.onDidCloseTextDocument),
	}
}

// methodInfo returns nil if handler is nil.
func methodInfo[P any](name string, handler NotificationHandler[P]) *jsonrpc.MethodInfo {
	if handler == nil {
		return nil
	}
	return &jsonrpc.MethodInfo{
		Name:       name,
		NewRequest: func() interface{} { return new(P) },
		Handler: func(ctx context.Context, req interface{}) (interface{}, error) {
			err := handler(ctx, req.(*P))
			return nil, wrapErrorToRespError(err, 0)
		},
	}
}

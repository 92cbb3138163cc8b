package lsp

import (
	"context"

	"github.com/stylelintls/stylelint-ls/internal/lsp/defines"
)

func (m *Methods) builtinInitialize(ctx context.Context, req *defines.InitializeParams) *defines.InitializeResult {
	resp := &defines.InitializeResult{}

	openClose := m.onDidOpenTextDocument != nil || m.onDidCloseTextDocument != nil
	change := m.Opt.TextDocumentSync
	resp.Capabilities.TextDocumentSync = defines.TextDocumentSyncOptions{
		OpenClose: &openClose,
		Change:    &change,
	}

	if m.onDidChangeWorkspaceFolders != nil {
		supported := true
		resp.Capabilities.Workspace = &defines.WorkspaceServerCapabilities{
			WorkspaceFolders: &defines.WorkspaceFoldersServerCapabilities{
				Supported:           &supported,
				ChangeNotifications: true,
			},
		}
	}

	if m.Opt.ServerName != "" {
		resp.ServerInfo = &defines.ServerInfo{Name: m.Opt.ServerName}
		if m.Opt.ServerVersion != "" {
			version := m.Opt.ServerVersion
			resp.ServerInfo.Version = &version
		}
	}

	return resp
}

// BuiltinInitializeResult returns the result the server would send for an initialize request
// if no OnInitialize handler was set, handlers use it as a base.
func (m *Methods) BuiltinInitializeResult(ctx context.Context, req *defines.InitializeParams) *defines.InitializeResult {
	return m.builtinInitialize(ctx, req)
}

package lsp

import (
	"io"

	"github.com/stylelintls/stylelint-ls/internal/lsp/defines"
	"github.com/stylelintls/stylelint-ls/internal/lsp/jsonrpc"
)

const (
	NETWORK_TCP       = "tcp"
	NETWORK_WEBSOCKET = "ws"
)

type Config struct {
	// if Network is empty, will use stdio (or MessageReaderWriter if set)
	Network string
	Address string //examples: localhost:7998, :7998

	OnSession jsonrpc.SessionCreationCallbackFn

	StdioInput  io.Reader
	StdioOutput io.Writer

	MessageReaderWriter jsonrpc.MessageReaderWriter

	TextDocumentSync defines.TextDocumentSyncKind
	ServerName       string
	ServerVersion    string
}

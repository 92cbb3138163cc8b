// Package defines contains the subset of the Language Server Protocol types used by the server.
package defines

import "encoding/json"

// DocumentUri is the URI of a text document, e.g. file:///home/user/project/a.css.
type DocumentUri string

// URI is any URI, it is not necessarily the URI of a document.
type URI string

type NoParams struct {
}

type ProgressToken interface{} // int or string

type WorkDoneProgressParams struct {
	WorkDoneToken *ProgressToken `json:"workDoneToken,omitempty"`
}

type TextDocumentItem struct {
	Uri        DocumentUri `json:"uri,omitempty"`
	LanguageId string      `json:"languageId,omitempty"`

	// Incremented after each change, including undo/redo.
	Version int `json:"version,omitempty"`

	Text string `json:"text,omitempty"`
}

type TextDocumentIdentifier struct {
	Uri DocumentUri `json:"uri,omitempty"`
}

// textDocument/didOpen
type DidOpenTextDocumentParams struct {
	TextDocument TextDocumentItem `json:"textDocument,omitempty"`
}

// textDocument/didClose
type DidCloseTextDocumentParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument,omitempty"`
}

// workspace/didChangeConfiguration
type DidChangeConfigurationParams struct {
	// Client-defined, e.g. {"stylelint": {"validate": ["css"]}} for VSCode.
	Settings json.RawMessage `json:"settings,omitempty"`
}

type WorkspaceFolder struct {
	Uri string `json:"uri,omitempty"`

	// Name displayed in the user interface.
	Name string `json:"name,omitempty"`
}

// workspace/didChangeWorkspaceFolders
type DidChangeWorkspaceFoldersParams struct {
	Event WorkspaceFoldersChangeEvent `json:"event,omitempty"`
}

type WorkspaceFoldersChangeEvent struct {
	Added   []WorkspaceFolder `json:"added,omitempty"`
	Removed []WorkspaceFolder `json:"removed,omitempty"`
}

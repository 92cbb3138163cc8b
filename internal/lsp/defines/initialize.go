package defines

type InitializeParams struct {
	WorkDoneProgressParams

	ProcessId  interface{} `json:"processId,omitempty"` // int or null
	ClientInfo *ClientInfo `json:"clientInfo,omitempty"`

	// Deprecated in favor of WorkspaceFolders, still sent by most clients.
	RootUri *DocumentUri `json:"rootUri,omitempty"`

	Capabilities          ClientCapabilities `json:"capabilities,omitempty"`
	InitializationOptions interface{}        `json:"initializationOptions,omitempty"`

	// nil if the client does not support workspace folders, empty if no folder is open.
	WorkspaceFolders *[]WorkspaceFolder `json:"workspaceFolders,omitempty"`
}

type ClientInfo struct {
	Name    string  `json:"name,omitempty"`
	Version *string `json:"version,omitempty"`
}

type ClientCapabilities struct {
	Workspace    *WorkspaceClientCapabilities `json:"workspace,omitempty"`
	Window       *WindowClientCapabilities    `json:"window,omitempty"`
	Experimental interface{}                  `json:"experimental,omitempty"`
}

// SupportsShowDocument reports whether the client declared support for window/showDocument.
func (c ClientCapabilities) SupportsShowDocument() bool {
	return c.Window != nil && c.Window.ShowDocument != nil && c.Window.ShowDocument.Support
}

type WorkspaceClientCapabilities struct {
	WorkspaceFolders *bool `json:"workspaceFolders,omitempty"`
	Configuration    *bool `json:"configuration,omitempty"`
}

type WindowClientCapabilities struct {
	WorkDoneProgress *bool                                 `json:"workDoneProgress,omitempty"`
	ShowMessage      *ShowMessageRequestClientCapabilities `json:"showMessage,omitempty"`
	ShowDocument     *ShowDocumentClientCapabilities       `json:"showDocument,omitempty"`
}

type ServerCapabilities struct {
	// TextDocumentSyncOptions or TextDocumentSyncKind.
	TextDocumentSync interface{} `json:"textDocumentSync,omitempty"`

	Workspace *WorkspaceServerCapabilities `json:"workspace,omitempty"`
}

type WorkspaceServerCapabilities struct {
	WorkspaceFolders *WorkspaceFoldersServerCapabilities `json:"workspaceFolders,omitempty"`
}

type WorkspaceFoldersServerCapabilities struct {
	Supported *bool `json:"supported,omitempty"`

	// A registration id (string) or a boolean.
	ChangeNotifications interface{} `json:"changeNotifications,omitempty"`
}

type TextDocumentSyncOptions struct {
	OpenClose *bool                 `json:"openClose,omitempty"`
	Change    *TextDocumentSyncKind `json:"change,omitempty"`
}

type InitializeResult struct {
	Capabilities ServerCapabilities `json:"capabilities,omitempty"`
	ServerInfo   *ServerInfo        `json:"serverInfo,omitempty"`
}

type ServerInfo struct {
	Name    string  `json:"name,omitempty"`
	Version *string `json:"version,omitempty"`
}

// InitializeError is the data of the response error if initialize fails.
type InitializeError struct {
	// If true the client shows the error message and lets the user retry.
	Retry bool `json:"retry,omitempty"`
}

type TextDocumentSyncKind int

const (
	TextDocumentSyncKindNone        TextDocumentSyncKind = 0
	TextDocumentSyncKindFull        TextDocumentSyncKind = 1
	TextDocumentSyncKindIncremental TextDocumentSyncKind = 2
)

func (k TextDocumentSyncKind) String() string {
	switch k {
	case TextDocumentSyncKindNone:
		return "None"
	case TextDocumentSyncKindFull:
		return "Full"
	case TextDocumentSyncKindIncremental:
		return "Incremental"
	}
	return "unknown"
}

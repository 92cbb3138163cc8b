package defines

type MessageType int

const (
	MessageTypeError   MessageType = 1
	MessageTypeWarning MessageType = 2
	MessageTypeInfo    MessageType = 3
	MessageTypeLog     MessageType = 4
)

func (t MessageType) String() string {
	switch t {
	case MessageTypeError:
		return "Error"
	case MessageTypeWarning:
		return "Warning"
	case MessageTypeInfo:
		return "Info"
	case MessageTypeLog:
		return "Log"
	}
	return "unknown"
}

// window/showMessage
type ShowMessageParams struct {
	Type    MessageType `json:"type,omitempty"`
	Message string      `json:"message,omitempty"`
}

type ShowMessageRequestClientCapabilities struct {
	MessageActionItem *struct {
		AdditionalPropertiesSupport *bool `json:"additionalPropertiesSupport,omitempty"`
	} `json:"messageActionItem,omitempty"`
}

type MessageActionItem struct {
	Title string `json:"title,omitempty"`
}

// window/showMessageRequest, the response is the selected MessageActionItem or null.
type ShowMessageRequestParams struct {
	Type    MessageType          `json:"type,omitempty"`
	Message string               `json:"message,omitempty"`
	Actions *[]MessageActionItem `json:"actions,omitempty"`
}

// window/logMessage
type LogMessageParams struct {
	Type    MessageType `json:"type,omitempty"`
	Message string      `json:"message,omitempty"`
}

type ShowDocumentClientCapabilities struct {
	Support bool `json:"support,omitempty"`
}

// window/showDocument
type ShowDocumentParams struct {
	Uri URI `json:"uri,omitempty"`

	// Open the resource in an external program such as a web browser.
	External *bool `json:"external,omitempty"`

	// Ignored by some clients when External is set.
	TakeFocus *bool `json:"takeFocus,omitempty"`
}

type ShowDocumentResult struct {
	Success bool `json:"success,omitempty"`
}

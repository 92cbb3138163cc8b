package langserver

import (
	"context"

	"github.com/stylelintls/stylelint-ls/internal/lsp/defines"
	"github.com/stylelintls/stylelint-ls/internal/lsp/jsonrpc"
)

const (
	SHOW_MESSAGE_REQUEST_METHOD = "window/showMessageRequest"
	SHOW_DOCUMENT_METHOD        = "window/showDocument"
)

type requestSender interface {
	SendRequest(ctx context.Context, method string, params interface{}, result interface{}) error
}

// sessionWindow sends window requests to the client of a session.
type sessionWindow struct {
	session requestSender
}

var _ requestSender = (*jsonrpc.Session)(nil)

func (w sessionWindow) ShowWarningMessage(ctx context.Context, message string, actions ...defines.MessageActionItem) (*defines.MessageActionItem, error) {
	params := defines.ShowMessageRequestParams{
		Type:    defines.MessageTypeWarning,
		Message: message,
	}
	if len(actions) > 0 {
		params.Actions = &actions
	}

	var action *defines.MessageActionItem
	if err := w.session.SendRequest(ctx, SHOW_MESSAGE_REQUEST_METHOD, params, &action); err != nil {
		return nil, err
	}
	return action, nil
}

func (w sessionWindow) ShowDocument(ctx context.Context, params defines.ShowDocumentParams) (*defines.ShowDocumentResult, error) {
	result := &defines.ShowDocumentResult{}
	if err := w.session.SendRequest(ctx, SHOW_DOCUMENT_METHOD, params, result); err != nil {
		return nil, err
	}
	return result, nil
}

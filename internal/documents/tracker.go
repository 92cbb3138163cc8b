package documents

import (
	"context"
	"sync"

	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/stylelintls/stylelint-ls/internal/lsp/defines"
)

type Document struct {
	Uri        defines.DocumentUri
	LanguageId string
	Version    int
	Text       string
}

type OpenEvent struct {
	Document Document
}

type OpenHandler func(ctx context.Context, event OpenEvent)

// Tracker keeps the documents opened by the client and notifies the registered handlers
// when a document is opened.
type Tracker struct {
	documents cmap.ConcurrentMap[string, Document]

	handlersLock sync.RWMutex
	openHandlers []OpenHandler
}

func NewTracker() *Tracker {
	return &Tracker{
		documents: cmap.New[Document](),
	}
}

func (t *Tracker) OnDidOpen(handler OpenHandler) {
	t.handlersLock.Lock()
	defer t.handlersLock.Unlock()
	t.openHandlers = append(t.openHandlers, handler)
}

// DidOpen records the document and calls the open handlers in registration order.
func (t *Tracker) DidOpen(ctx context.Context, item defines.TextDocumentItem) {
	doc := Document{
		Uri:        item.Uri,
		LanguageId: item.LanguageId,
		Version:    item.Version,
		Text:       item.Text,
	}
	t.documents.Set(string(item.Uri), doc)

	t.handlersLock.RLock()
	handlers := t.openHandlers
	t.handlersLock.RUnlock()

	event := OpenEvent{Document: doc}
	for _, handler := range handlers {
		handler(ctx, event)
	}
}

func (t *Tracker) DidClose(uri defines.DocumentUri) {
	t.documents.Remove(string(uri))
}

func (t *Tracker) Get(uri defines.DocumentUri) (Document, bool) {
	return t.documents.Get(string(uri))
}

func (t *Tracker) Len() int {
	return t.documents.Count()
}

package documents

import (
	"context"
	"testing"

	"github.com/stylelintls/stylelint-ls/internal/lsp/defines"
	"github.com/stretchr/testify/assert"
)

func TestTracker(t *testing.T) {
	ctx := context.Background()

	t.Run("open handlers should be called in registration order", func(t *testing.T) {
		tracker := NewTracker()

		var calls []string
		tracker.OnDidOpen(func(ctx context.Context, event OpenEvent) {
			calls = append(calls, "first:"+string(event.Document.Uri))
		})
		tracker.OnDidOpen(func(ctx context.Context, event OpenEvent) {
			calls = append(calls, "second:"+event.Document.LanguageId)
		})

		tracker.DidOpen(ctx, defines.TextDocumentItem{Uri: "file:///a.css", LanguageId: "css", Version: 1})

		assert.Equal(t, []string{"first:file:///a.css", "second:css"}, calls)
	})

	t.Run("opened documents should be tracked until closed", func(t *testing.T) {
		tracker := NewTracker()

		tracker.DidOpen(ctx, defines.TextDocumentItem{Uri: "file:///a.css", LanguageId: "css", Version: 2, Text: "a {}"})
		assert.Equal(t, 1, tracker.Len())

		doc, ok := tracker.Get("file:///a.css")
		if assert.True(t, ok) {
			assert.Equal(t, Document{Uri: "file:///a.css", LanguageId: "css", Version: 2, Text: "a {}"}, doc)
		}

		tracker.DidClose("file:///a.css")
		assert.Zero(t, tracker.Len())

		_, ok = tracker.Get("file:///a.css")
		assert.False(t, ok)
	})
}

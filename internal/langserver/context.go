package langserver

import (
	"context"
	"sync/atomic"

	"github.com/go-git/go-billy/v5"
	"github.com/stylelintls/stylelint-ls/internal/config"
	"github.com/stylelintls/stylelint-ls/internal/documents"
	"github.com/stylelintls/stylelint-ls/internal/lsp/defines"
	"github.com/stylelintls/stylelint-ls/internal/stylelint"
)

type Window interface {
	// ShowWarningMessage shows a warning and waits for the user to pick one of the actions,
	// the returned action is nil if the message was dismissed.
	ShowWarningMessage(ctx context.Context, message string, actions ...defines.MessageActionItem) (*defines.MessageActionItem, error)

	ShowDocument(ctx context.Context, params defines.ShowDocumentParams) (*defines.ShowDocumentResult, error)
}

type DocumentTracker interface {
	OnDidOpen(handler documents.OpenHandler)
}

type WorkspaceFolderResolver interface {
	// WorkspaceFolder returns the path of the workspace folder containing the document, or "".
	WorkspaceFolder(ctx context.Context, uri defines.DocumentUri) string
}

type PackageRootResolver interface {
	// FindPackageRoot returns the nearest directory at or above startPath whose package.json
	// has the name packageName, or "".
	FindPackageRoot(startPath string, packageName string) (string, error)
}

type StylelintResolver interface {
	Resolve(ctx context.Context, uri defines.DocumentUri) (*stylelint.Resolution, error)
}

// Context is shared by the modules of a session.
type Context struct {
	Window    Window
	Documents DocumentTracker
	Workspace WorkspaceFolderResolver
	Packages  PackageRootResolver
	Stylelint StylelintResolver
	FS        billy.Filesystem

	options atomic.Pointer[config.Options]
}

// Options returns the current options, Default() if none were set.
func (c *Context) Options() config.Options {
	opts := c.options.Load()
	if opts == nil {
		return config.Default()
	}
	return *opts
}

func (c *Context) SetOptions(opts config.Options) {
	opts = opts.Clone()
	c.options.Store(&opts)
}

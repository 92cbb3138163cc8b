// Package oldstylelint warns the user, once per document, when the workspace's stylelint
// package is older than the oldest supported major version.
package oldstylelint

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/Masterminds/semver/v3"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/rs/zerolog"
	"github.com/stylelintls/stylelint-ls/internal/documents"
	"github.com/stylelintls/stylelint-ls/internal/langserver"
	"github.com/stylelintls/stylelint-ls/internal/lsp/defines"
	"github.com/stylelintls/stylelint-ls/internal/packages"
	"github.com/stylelintls/stylelint-ls/internal/stylelint"
)

const (
	MODULE_ID = "old-stylelint-warning"

	MIN_STYLELINT_MAJOR = 14

	MIGRATION_GUIDE_URL          = "https://github.com/stylelint/vscode-stylelint#migrating-from-vscode-stylelint-0xstylelint-13x"
	OPEN_MIGRATION_GUIDE_TITLE   = "Open migration guide"
	OLD_STYLELINT_WARNING_FORMAT = "Stylelint version %d is no longer supported. While it may continue to work for a while, " +
		"you may encounter unexpected behavior. Please upgrade to version %d.0.0 or newer. " +
		"See the migration guide for more information."
)

// WarningModule shows a warning when a document whose project depends on an old stylelint is opened.
type WarningModule struct {
	context *langserver.Context
	logger  zerolog.Logger

	// URIs of the documents that have already been checked, entries are never removed.
	checkedDocuments cmap.ConcurrentMap[string, struct{}]

	initOnce             sync.Once
	openMigrationGuide   atomic.Bool //set once by OnInitialize
	registerHandlersOnce sync.Once
}

var (
	_ langserver.Module                 = (*WarningModule)(nil)
	_ langserver.InitializeHook         = (*WarningModule)(nil)
	_ langserver.HandlersRegisteredHook = (*WarningModule)(nil)
)

func New(params langserver.ModuleParams) *WarningModule {
	logger := zerolog.Nop()
	if params.Logger != nil {
		logger = params.Logger.With().Str("module", MODULE_ID).Logger()
	}

	return &WarningModule{
		context:          params.Context,
		logger:           logger,
		checkedDocuments: cmap.New[struct{}](),
	}
}

// Factory can be passed to langserver.ServerParams.
func Factory(params langserver.ModuleParams) langserver.Module {
	return New(params)
}

func (m *WarningModule) Id() string {
	return MODULE_ID
}

func (m *WarningModule) OnInitialize(params *defines.InitializeParams) {
	m.initOnce.Do(func() {
		if params != nil {
			m.openMigrationGuide.Store(params.Capabilities.SupportsShowDocument())
		}
	})
}

func (m *WarningModule) OnDidRegisterHandlers() {
	m.registerHandlersOnce.Do(func() {
		m.context.Documents.OnDidOpen(m.handleDidOpen)
	})
}

func (m *WarningModule) handleDidOpen(ctx context.Context, event documents.OpenEvent) {
	document := event.Document
	uri := string(document.Uri)

	if !m.context.Options().ShouldValidate(document.LanguageId) {
		m.logger.Debug().Str("uri", uri).Str("language", document.LanguageId).Msg("Document should not be validated, ignoring")
		return
	}

	if m.context.Workspace.WorkspaceFolder(ctx, document.Uri) == "" {
		m.logger.Debug().Str("uri", uri).Msg("Document not part of a workspace, ignoring")
		return
	}

	if !m.checkedDocuments.SetIfAbsent(uri, struct{}{}) {
		m.logger.Debug().Str("uri", uri).Msg("Document has already been checked, ignoring")
		return
	}

	resolution, err := m.context.Stylelint.Resolve(ctx, document.Uri)
	if err != nil || resolution == nil {
		if err == nil {
			err = stylelint.ErrStylelintNotFound
		}
		m.logger.Debug().Str("uri", uri).Err(err).Msg("Stylelint could not be resolved")
		return
	}

	root, err := m.context.Packages.FindPackageRoot(resolution.ResolvedPath, stylelint.PACKAGE_NAME)
	if err != nil || root == "" {
		m.logger.Debug().Str("uri", uri).Msg("Stylelint package root not found")
		return
	}

	manifestPath := filepath.Join(root, packages.MANIFEST_FILENAME)

	manifest, err := packages.ReadManifest(m.context.FS, root)
	if err != nil {
		m.logger.Debug().Str("uri", uri).Str("manifestPath", manifestPath).Err(err).Msg("Stylelint package manifest could not be read")
		return
	}

	if manifest.Version == "" {
		return
	}

	version, err := semver.StrictNewVersion(manifest.Version)
	if err != nil {
		m.logger.Debug().Str("uri", uri).Str("version", manifest.Version).Err(err).Msg("Stylelint version could not be parsed")
		return
	}

	if version.Major() >= MIN_STYLELINT_MAJOR {
		return
	}

	m.warn(ctx, uri, version.Major())
}

func (m *WarningModule) warn(ctx context.Context, uri string, major uint64) {
	message := fmt.Sprintf(OLD_STYLELINT_WARNING_FORMAT, major, MIN_STYLELINT_MAJOR)

	openMigrationGuide := m.openMigrationGuide.Load()

	var actions []defines.MessageActionItem
	if openMigrationGuide {
		actions = append(actions, defines.MessageActionItem{Title: OPEN_MIGRATION_GUIDE_TITLE})
	} else {
		message += " " + MIGRATION_GUIDE_URL
	}

	selected, err := m.context.Window.ShowWarningMessage(ctx, message, actions...)
	if err != nil {
		m.logger.Error().Str("uri", uri).Err(err).Msg("Failed to show old Stylelint warning")
		return
	}

	if !openMigrationGuide || selected == nil || selected.Title != OPEN_MIGRATION_GUIDE_TITLE {
		return
	}

	external := true
	takeFocus := true

	result, err := m.context.Window.ShowDocument(ctx, defines.ShowDocumentParams{
		Uri:       defines.URI(MIGRATION_GUIDE_URL),
		External:  &external,
		TakeFocus: &takeFocus,
	})
	if err != nil {
		m.logger.Error().Err(err).Msg("Failed to open migration guide")
		return
	}

	if result == nil || !result.Success {
		m.logger.Warn().Msg("Failed to open migration guide")
	}
}

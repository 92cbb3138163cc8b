package oldstylelint

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stylelintls/stylelint-ls/internal/config"
	"github.com/stylelintls/stylelint-ls/internal/documents"
	"github.com/stylelintls/stylelint-ls/internal/langserver"
	"github.com/stylelintls/stylelint-ls/internal/lsp/defines"
	"github.com/stylelintls/stylelint-ls/internal/stylelint"
)

const (
	stylelintRoot     = "/path/node_modules/stylelint"
	stylelintManifest = stylelintRoot + "/package.json"
)

type fakeWindow struct {
	lock sync.Mutex

	warnings      []warningCall
	selection     *defines.MessageActionItem
	warningErr    error
	showDocuments []defines.ShowDocumentParams
	showResult    *defines.ShowDocumentResult
	showErr       error
}

type warningCall struct {
	message string
	actions []defines.MessageActionItem
}

func (w *fakeWindow) ShowWarningMessage(ctx context.Context, message string, actions ...defines.MessageActionItem) (*defines.MessageActionItem, error) {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.warnings = append(w.warnings, warningCall{message: message, actions: actions})
	return w.selection, w.warningErr
}

func (w *fakeWindow) ShowDocument(ctx context.Context, params defines.ShowDocumentParams) (*defines.ShowDocumentResult, error) {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.showDocuments = append(w.showDocuments, params)
	return w.showResult, w.showErr
}

type fakeTracker struct {
	handlers []documents.OpenHandler
}

func (t *fakeTracker) OnDidOpen(handler documents.OpenHandler) {
	t.handlers = append(t.handlers, handler)
}

type fakeWorkspace struct {
	folder string
}

func (w *fakeWorkspace) WorkspaceFolder(ctx context.Context, uri defines.DocumentUri) string {
	return w.folder
}

type fakePackages struct {
	root  string
	calls []string
}

func (p *fakePackages) FindPackageRoot(startPath string, packageName string) (string, error) {
	p.calls = append(p.calls, startPath+" "+packageName)
	return p.root, nil
}

type fakeStylelint struct {
	calls      atomic.Int32
	resolution *stylelint.Resolution
	err        error
}

func (s *fakeStylelint) Resolve(ctx context.Context, uri defines.DocumentUri) (*stylelint.Resolution, error) {
	s.calls.Add(1)
	return s.resolution, s.err
}

// unreadableFS fails to open any file.
type unreadableFS struct {
	billy.Filesystem
	err error
}

func (fls unreadableFS) Open(filename string) (billy.File, error) {
	return nil, fls.err
}

func (fls unreadableFS) OpenFile(filename string, flag int, perm os.FileMode) (billy.File, error) {
	return nil, fls.err
}

type testEnv struct {
	module    *WarningModule
	context   *langserver.Context
	window    *fakeWindow
	documents *fakeTracker
	workspace *fakeWorkspace
	packages  *fakePackages
	stylelint *fakeStylelint
	fls       billy.Filesystem
	logs      *bytes.Buffer
}

func newTestEnv(t *testing.T, validate ...string) *testEnv {
	env := &testEnv{
		window:    &fakeWindow{},
		documents: &fakeTracker{},
		workspace: &fakeWorkspace{folder: "/path"},
		packages:  &fakePackages{root: stylelintRoot},
		stylelint: &fakeStylelint{
			resolution: &stylelint.Resolution{
				Module:       &stylelint.Module{Name: "stylelint"},
				ResolvedPath: stylelintRoot,
			},
		},
		fls:  memfs.New(),
		logs: &bytes.Buffer{},
	}

	options := config.Default()
	options.Validate = validate

	env.context = &langserver.Context{
		Window:    env.window,
		Documents: env.documents,
		Workspace: env.workspace,
		Packages:  env.packages,
		Stylelint: env.stylelint,
		FS:        env.fls,
	}
	env.context.SetOptions(options)

	logger := zerolog.New(zerolog.SyncWriter(env.logs))
	env.module = New(langserver.ModuleParams{Context: env.context, Logger: &logger})
	return env
}

func (e *testEnv) writeManifest(t *testing.T, content string) {
	require.NoError(t, util.WriteFile(e.fls, stylelintManifest, []byte(content), 0o644))
}

func (e *testEnv) initialize(showDocument bool) {
	params := &defines.InitializeParams{}
	if showDocument {
		params.Capabilities.Window = &defines.WindowClientCapabilities{
			ShowDocument: &defines.ShowDocumentClientCapabilities{Support: true},
		}
	}
	e.module.OnInitialize(params)
	e.module.OnDidRegisterHandlers()
}

func (e *testEnv) open(t *testing.T, uri string, language string) {
	require.Len(t, e.documents.handlers, 1)
	e.documents.handlers[0](context.Background(), documents.OpenEvent{
		Document: documents.Document{Uri: defines.DocumentUri(uri), LanguageId: language},
	})
}

func (e *testEnv) logEntries(t *testing.T) []map[string]any {
	var entries []map[string]any
	scanner := bufio.NewScanner(bytes.NewReader(e.logs.Bytes()))
	for scanner.Scan() {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func (e *testEnv) lastLogEntry(t *testing.T) map[string]any {
	entries := e.logEntries(t)
	require.NotEmpty(t, entries)
	return entries[len(entries)-1]
}

func TestWarningModule(t *testing.T) {

	t.Run("New should not panic without a logger", func(t *testing.T) {
		assert.NotPanics(t, func() {
			module := New(langserver.ModuleParams{Context: &langserver.Context{}})
			assert.Equal(t, MODULE_ID, module.Id())
		})
	})

	t.Run("OnDidRegisterHandlers should register a single open handler", func(t *testing.T) {
		env := newTestEnv(t)

		env.module.OnDidRegisterHandlers()
		env.module.OnDidRegisterHandlers()

		assert.Len(t, env.documents.handlers, 1)
	})

	t.Run("document whose language is not validated", func(t *testing.T) {
		env := newTestEnv(t, "baz")
		env.initialize(false)

		env.open(t, "foo", "bar")

		assert.Zero(t, env.stylelint.calls.Load())
		assert.Empty(t, env.window.warnings)

		entry := env.lastLogEntry(t)
		assert.Equal(t, "debug", entry["level"])
		assert.Equal(t, "Document should not be validated, ignoring", entry["message"])
		assert.Equal(t, "foo", entry["uri"])
		assert.Equal(t, "bar", entry["language"])
	})

	t.Run("document not part of a workspace", func(t *testing.T) {
		env := newTestEnv(t, "bar")
		env.workspace.folder = ""
		env.initialize(false)

		env.open(t, "foo", "bar")

		assert.Zero(t, env.stylelint.calls.Load())
		assert.Empty(t, env.window.warnings)

		entry := env.lastLogEntry(t)
		assert.Equal(t, "Document not part of a workspace, ignoring", entry["message"])
		assert.Equal(t, "foo", entry["uri"])
	})

	t.Run("document that has already been checked", func(t *testing.T) {
		env := newTestEnv(t, "bar")
		env.initialize(false)

		env.open(t, "foo", "bar")
		env.open(t, "foo", "bar")

		assert.EqualValues(t, 1, env.stylelint.calls.Load())
		assert.Empty(t, env.window.warnings)

		entry := env.lastLogEntry(t)
		assert.Equal(t, "Document has already been checked, ignoring", entry["message"])
		assert.Equal(t, "foo", entry["uri"])
	})

	t.Run("concurrent opens of the same document are checked once", func(t *testing.T) {
		env := newTestEnv(t, "bar")
		env.writeManifest(t, `{"version": "13.0.0"}`)
		env.initialize(false)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				env.open(t, "foo", "bar")
			}()
		}
		wg.Wait()

		assert.EqualValues(t, 1, env.stylelint.calls.Load())
		assert.Len(t, env.window.warnings, 1)
	})

	t.Run("stylelint cannot be resolved", func(t *testing.T) {
		env := newTestEnv(t, "bar")
		env.stylelint.resolution = nil
		env.stylelint.err = stylelint.ErrStylelintNotFound
		env.initialize(false)

		env.open(t, "foo", "bar")

		assert.Empty(t, env.packages.calls)
		assert.Empty(t, env.window.warnings)

		entry := env.lastLogEntry(t)
		assert.Equal(t, "Stylelint could not be resolved", entry["message"])
		assert.Equal(t, "foo", entry["uri"])
		assert.Equal(t, stylelint.ErrStylelintNotFound.Error(), entry["error"])
	})

	t.Run("stylelint package root cannot be determined", func(t *testing.T) {
		env := newTestEnv(t, "bar")
		env.packages.root = ""
		env.initialize(false)

		env.open(t, "foo", "bar")

		assert.EqualValues(t, 1, env.stylelint.calls.Load())
		assert.Equal(t, []string{stylelintRoot + " stylelint"}, env.packages.calls)
		assert.Empty(t, env.window.warnings)

		entry := env.lastLogEntry(t)
		assert.Equal(t, "Stylelint package root not found", entry["message"])
		assert.Equal(t, "foo", entry["uri"])
	})

	t.Run("stylelint package manifest cannot be read", func(t *testing.T) {
		env := newTestEnv(t, "bar")
		readErr := errors.New("foo")
		env.context.FS = unreadableFS{Filesystem: env.fls, err: readErr}
		env.initialize(false)

		env.open(t, "foo", "bar")

		assert.EqualValues(t, 1, env.stylelint.calls.Load())
		assert.Empty(t, env.window.warnings)

		entry := env.lastLogEntry(t)
		assert.Equal(t, "debug", entry["level"])
		assert.Equal(t, "Stylelint package manifest could not be read", entry["message"])
		assert.Equal(t, "foo", entry["uri"])
		assert.Equal(t, stylelintManifest, entry["manifestPath"])
		assert.Contains(t, entry["error"], "foo")
	})

	t.Run("stylelint package manifest is malformed", func(t *testing.T) {
		env := newTestEnv(t, "bar")
		env.writeManifest(t, `{`)
		env.initialize(false)

		env.open(t, "foo", "bar")

		assert.Empty(t, env.window.warnings)

		entry := env.lastLogEntry(t)
		assert.Equal(t, "Stylelint package manifest could not be read", entry["message"])
		assert.Equal(t, "foo", entry["uri"])
		assert.Equal(t, stylelintManifest, entry["manifestPath"])
		assert.NotEmpty(t, entry["error"])
	})

	t.Run("stylelint package manifest without a version", func(t *testing.T) {
		env := newTestEnv(t, "bar")
		env.writeManifest(t, `{}`)
		env.initialize(false)

		env.open(t, "foo", "bar")

		assert.EqualValues(t, 1, env.stylelint.calls.Load())
		assert.Empty(t, env.window.warnings)

		for _, entry := range env.logEntries(t) {
			assert.NotEqual(t, "Stylelint version could not be parsed", entry["message"])
		}
	})

	t.Run("stylelint version cannot be parsed", func(t *testing.T) {
		env := newTestEnv(t, "bar")
		env.writeManifest(t, `{"version": "foo"}`)
		env.initialize(false)

		env.open(t, "foo", "bar")

		assert.Empty(t, env.window.warnings)

		entry := env.lastLogEntry(t)
		assert.Equal(t, "Stylelint version could not be parsed", entry["message"])
		assert.Equal(t, "foo", entry["uri"])
		assert.Equal(t, "foo", entry["version"])
		assert.NotEmpty(t, entry["error"])
	})

	t.Run("stylelint 14 or greater", func(t *testing.T) {
		for _, version := range []string{"14.0.0", "14.0.0-beta.1", "15.10.3+build.5"} {
			env := newTestEnv(t, "bar")
			env.writeManifest(t, `{"version": "`+version+`"}`)
			env.initialize(true)

			env.open(t, "foo", "bar")

			assert.EqualValues(t, 1, env.stylelint.calls.Load())
			assert.Empty(t, env.window.warnings, version)
		}
	})

	t.Run("without showDocument support, old stylelint: warning with a link to the migration guide", func(t *testing.T) {
		env := newTestEnv(t, "bar")
		env.writeManifest(t, `{"version": "13.0.0"}`)
		env.window.selection = &defines.MessageActionItem{Title: OPEN_MIGRATION_GUIDE_TITLE}
		env.initialize(false)

		env.open(t, "foo", "bar")

		require.Len(t, env.window.warnings, 1)
		assert.Equal(t, "Stylelint version 13 is no longer supported. While it may continue to work for a while, "+
			"you may encounter unexpected behavior. Please upgrade to version 14.0.0 or newer. "+
			"See the migration guide for more information. "+MIGRATION_GUIDE_URL, env.window.warnings[0].message)
		assert.Empty(t, env.window.warnings[0].actions)
		assert.Empty(t, env.window.showDocuments)
	})

	t.Run("without an initialize call, old stylelint: no action", func(t *testing.T) {
		env := newTestEnv(t, "bar")
		env.writeManifest(t, `{"version": "12.0.0-alpha"}`)
		env.module.OnDidRegisterHandlers()

		env.open(t, "foo", "bar")

		require.Len(t, env.window.warnings, 1)
		assert.Empty(t, env.window.warnings[0].actions)
		assert.Empty(t, env.window.showDocuments)
	})

	t.Run("with showDocument support, old stylelint, warning dismissed", func(t *testing.T) {
		env := newTestEnv(t, "bar")
		env.writeManifest(t, `{"version": "13.0.0"}`)
		env.initialize(true)

		env.open(t, "foo", "bar")

		require.Len(t, env.window.warnings, 1)
		assert.Equal(t, []defines.MessageActionItem{{Title: "Open migration guide"}}, env.window.warnings[0].actions)
		assert.NotContains(t, env.window.warnings[0].message, MIGRATION_GUIDE_URL)
		assert.Empty(t, env.window.showDocuments)
	})

	t.Run("with showDocument support, old stylelint, migration guide opened", func(t *testing.T) {
		env := newTestEnv(t, "bar")
		env.writeManifest(t, `{"version": "13.0.0"}`)
		env.window.selection = &defines.MessageActionItem{Title: OPEN_MIGRATION_GUIDE_TITLE}
		env.window.showResult = &defines.ShowDocumentResult{Success: true}
		env.initialize(true)

		env.open(t, "foo", "bar")

		require.Len(t, env.window.warnings, 1)
		require.Len(t, env.window.showDocuments, 1)

		params := env.window.showDocuments[0]
		assert.Equal(t, defines.URI(MIGRATION_GUIDE_URL), params.Uri)
		require.NotNil(t, params.External)
		assert.True(t, *params.External)
		require.NotNil(t, params.TakeFocus)
		assert.True(t, *params.TakeFocus)

		for _, entry := range env.logEntries(t) {
			assert.NotEqual(t, "Failed to open migration guide", entry["message"])
		}
	})

	t.Run("with showDocument support, old stylelint, migration guide could not be opened", func(t *testing.T) {
		env := newTestEnv(t, "bar")
		env.writeManifest(t, `{"version": "13.0.0"}`)
		env.window.selection = &defines.MessageActionItem{Title: OPEN_MIGRATION_GUIDE_TITLE}
		env.window.showResult = &defines.ShowDocumentResult{Success: false}
		env.initialize(true)

		env.open(t, "foo", "bar")

		require.Len(t, env.window.showDocuments, 1)

		entry := env.lastLogEntry(t)
		assert.Equal(t, "warn", entry["level"])
		assert.Equal(t, "Failed to open migration guide", entry["message"])
		assert.NotContains(t, entry, "uri")
		assert.NotContains(t, entry, "error")
	})

	t.Run("with showDocument support, old stylelint, showDocument request failed", func(t *testing.T) {
		env := newTestEnv(t, "bar")
		env.writeManifest(t, `{"version": "13.0.0"}`)
		env.window.selection = &defines.MessageActionItem{Title: OPEN_MIGRATION_GUIDE_TITLE}
		env.window.showErr = errors.New("request failed")
		env.initialize(true)

		env.open(t, "foo", "bar")

		entry := env.lastLogEntry(t)
		assert.Equal(t, "error", entry["level"])
		assert.Equal(t, "Failed to open migration guide", entry["message"])
		assert.Equal(t, "request failed", entry["error"])
	})

	t.Run("warning could not be shown", func(t *testing.T) {
		env := newTestEnv(t, "bar")
		env.writeManifest(t, `{"version": "13.0.0"}`)
		env.window.warningErr = errors.New("request failed")
		env.initialize(true)

		env.open(t, "foo", "bar")

		assert.Empty(t, env.window.showDocuments)

		entry := env.lastLogEntry(t)
		assert.Equal(t, "error", entry["level"])
		assert.Equal(t, "Failed to show old Stylelint warning", entry["message"])
		assert.Equal(t, "foo", entry["uri"])
	})

	t.Run("another action title does not open the migration guide", func(t *testing.T) {
		env := newTestEnv(t, "bar")
		env.writeManifest(t, `{"version": "13.0.0"}`)
		env.window.selection = &defines.MessageActionItem{Title: "Dismiss"}
		env.initialize(true)

		env.open(t, "foo", "bar")

		assert.Len(t, env.window.warnings, 1)
		assert.Empty(t, env.window.showDocuments)
	})
}

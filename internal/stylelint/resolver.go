package stylelint

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/rs/zerolog"
	"github.com/stylelintls/stylelint-ls/internal/config"
	"github.com/stylelintls/stylelint-ls/internal/lsp/defines"
	"github.com/stylelintls/stylelint-ls/internal/packages"
	"github.com/stylelintls/stylelint-ls/internal/workspace"
)

const (
	PACKAGE_NAME      = "stylelint"
	NODE_MODULES_DIR  = "node_modules"
	DEFAULT_MAIN_FILE = "index.js"
)

var (
	ErrStylelintNotFound = errors.New("stylelint not found")
)

type WorkspaceFolderResolver interface {
	WorkspaceFolder(ctx context.Context, uri defines.DocumentUri) string
}

// Module describes a resolved stylelint package.
type Module struct {
	Name    string
	Version string
	Main    string
	Dir     string
}

type Resolution struct {
	Module *Module

	// Absolute path of the package's entry point.
	ResolvedPath string
}

type ResolverParams struct {
	FS        billy.Filesystem
	Workspace WorkspaceFolderResolver
	Options   func() config.Options
	Logger    *zerolog.Logger //optional
}

// Resolver locates the stylelint package a document would be linted with.
type Resolver struct {
	fls       billy.Filesystem
	workspace WorkspaceFolderResolver
	options   func() config.Options
	logger    zerolog.Logger
}

func NewResolver(params ResolverParams) *Resolver {
	logger := zerolog.Nop()
	if params.Logger != nil {
		logger = *params.Logger
	}

	options := params.Options
	if options == nil {
		options = config.Default
	}

	return &Resolver{
		fls:       params.FS,
		workspace: params.Workspace,
		options:   options,
		logger:    logger,
	}
}

// Resolve looks for stylelint in the following order: the stylelintPath option, the node_modules
// directories from the document's directory up to the filesystem root, the workspace folder.
func (r *Resolver) Resolve(ctx context.Context, uri defines.DocumentUri) (*Resolution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	workspaceFolder := ""
	if r.workspace != nil {
		workspaceFolder = r.workspace.WorkspaceFolder(ctx, uri)
	}

	if stylelintPath := r.options().StylelintPath; stylelintPath != "" {
		if !filepath.IsAbs(stylelintPath) {
			if workspaceFolder == "" {
				return nil, fmt.Errorf("%w: relative stylelintPath %q and no workspace folder", ErrStylelintNotFound, stylelintPath)
			}
			stylelintPath = filepath.Join(workspaceFolder, stylelintPath)
		}
		return r.resolveFromPath(stylelintPath)
	}

	var startDir string
	if docPath, err := workspace.PathFromURI(string(uri)); err == nil {
		startDir = filepath.Dir(docPath)

		dir := startDir
		for {
			resolution, err := r.resolvePackageDir(filepath.Join(dir, NODE_MODULES_DIR, PACKAGE_NAME))
			if err == nil {
				return resolution, nil
			}
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}

			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	if workspaceFolder != "" {
		resolution, err := r.resolvePackageDir(filepath.Join(workspaceFolder, NODE_MODULES_DIR, PACKAGE_NAME))
		if err == nil {
			return resolution, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	if startDir == "" {
		startDir = workspaceFolder
	}

	r.logger.Debug().Str("uri", string(uri)).Str("startDir", startDir).Msg("stylelint package not found")
	return nil, fmt.Errorf("%w from %s", ErrStylelintNotFound, startDir)
}

// resolveFromPath resolves a configured path that is either the package directory or a file inside it.
func (r *Resolver) resolveFromPath(path string) (*Resolution, error) {
	path = filepath.Clean(path)

	stat, err := r.fls.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrStylelintNotFound, path, err)
	}

	if stat.IsDir() {
		resolution, err := r.resolvePackageDir(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrStylelintNotFound, path, err)
		}
		return resolution, nil
	}

	root, err := packages.NewResolver(r.fls).FindPackageRoot(filepath.Dir(path), PACKAGE_NAME)
	if err != nil {
		return nil, err
	}
	if root == "" {
		return nil, fmt.Errorf("%w: %s is not inside a stylelint package", ErrStylelintNotFound, path)
	}

	manifest, err := packages.ReadManifest(r.fls, root)
	if err != nil {
		return nil, err
	}

	return &Resolution{
		Module:       newModule(manifest, root),
		ResolvedPath: path,
	}, nil
}

// resolvePackageDir returns an error wrapping fs.ErrNotExist if dir has no manifest.
func (r *Resolver) resolvePackageDir(dir string) (*Resolution, error) {
	if _, err := r.fls.Stat(filepath.Join(dir, packages.MANIFEST_FILENAME)); err != nil {
		return nil, err
	}

	manifest, err := packages.ReadManifest(r.fls, dir)
	if err != nil {
		return nil, err
	}

	module := newModule(manifest, dir)

	return &Resolution{
		Module:       module,
		ResolvedPath: filepath.Join(dir, module.Main),
	}, nil
}

func newModule(manifest *packages.Manifest, dir string) *Module {
	main := manifest.Main
	if main == "" {
		main = DEFAULT_MAIN_FILE
	}
	return &Module{
		Name:    manifest.Name,
		Version: manifest.Version,
		Main:    filepath.Clean(main),
		Dir:     dir,
	}
}

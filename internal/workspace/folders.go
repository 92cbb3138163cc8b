package workspace

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/stylelintls/stylelint-ls/internal/lsp/defines"
)

var (
	ErrFileURIExpected = errors.New("a file: URI was expected")
)

// Folders holds the workspace folders of a session as absolute, cleaned paths.
type Folders struct {
	lock    sync.RWMutex
	folders []string
}

func NewFolders() *Folders {
	return &Folders{}
}

// Init sets the folders from the initialize request: workspaceFolders if present, rootUri otherwise.
func (f *Folders) Init(params *defines.InitializeParams) {
	var uris []string

	if params.WorkspaceFolders != nil {
		for _, folder := range *params.WorkspaceFolders {
			uris = append(uris, folder.Uri)
		}
	} else if params.RootUri != nil {
		uris = append(uris, string(*params.RootUri))
	}

	var paths []string
	for _, uri := range uris {
		path, err := PathFromURI(uri)
		if err == nil {
			paths = append(paths, path)
		}
	}

	f.lock.Lock()
	defer f.lock.Unlock()
	f.folders = paths
}

// Update applies a workspace/didChangeWorkspaceFolders event.
func (f *Folders) Update(event defines.WorkspaceFoldersChangeEvent) {
	f.lock.Lock()
	defer f.lock.Unlock()

	for _, removed := range event.Removed {
		path, err := PathFromURI(removed.Uri)
		if err != nil {
			continue
		}
		f.folders = slices.DeleteFunc(f.folders, func(p string) bool { return p == path })
	}

	for _, added := range event.Added {
		path, err := PathFromURI(added.Uri)
		if err != nil || slices.Contains(f.folders, path) {
			continue
		}
		f.folders = append(f.folders, path)
	}
}

func (f *Folders) List() []string {
	f.lock.RLock()
	defer f.lock.RUnlock()
	return slices.Clone(f.folders)
}

// WorkspaceFolder returns the path of the deepest workspace folder containing the document,
// or "" if the document is not part of a workspace folder.
func (f *Folders) WorkspaceFolder(ctx context.Context, uri defines.DocumentUri) string {
	path, err := PathFromURI(string(uri))
	if err != nil {
		return ""
	}

	f.lock.RLock()
	defer f.lock.RUnlock()

	found := ""
	for _, folder := range f.folders {
		if !IsWithin(path, folder) {
			continue
		}
		if len(folder) > len(found) {
			found = folder
		}
	}

	return found
}

// IsWithin reports whether path is dir or is inside dir, both should be clean absolute paths.
func IsWithin(path, dir string) bool {
	if path == dir {
		return true
	}
	if dir == "/" {
		return strings.HasPrefix(path, "/")
	}
	return strings.HasPrefix(path, dir+"/")
}

func PathFromURI(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("invalid URI: %s: %w", uri, err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("%w, actual is: %s", ErrFileURIExpected, uri)
	}
	return filepath.Clean(u.Path), nil
}

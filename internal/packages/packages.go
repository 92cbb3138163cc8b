package packages

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

const (
	MANIFEST_FILENAME = "package.json"
)

var (
	ErrManifestNotReadable = errors.New("package manifest could not be read")
	ErrInvalidManifest     = errors.New("invalid package manifest")
)

// Manifest is the subset of package.json the server cares about.
type Manifest struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Main    string `json:"main"`
}

// Resolver finds package roots on a filesystem.
type Resolver struct {
	fls billy.Filesystem
}

func NewResolver(fls billy.Filesystem) *Resolver {
	return &Resolver{fls: fls}
}

// FindPackageRoot walks from startPath up to the filesystem root and returns the first directory
// containing a package.json whose name is packageName. Any package matches if packageName is empty.
// "" is returned if there is no such directory.
func (r *Resolver) FindPackageRoot(startPath string, packageName string) (string, error) {
	dir := filepath.Clean(startPath)

	for {
		manifestPath := filepath.Join(dir, MANIFEST_FILENAME)
		content, err := util.ReadFile(r.fls, manifestPath)

		switch {
		case err == nil:
			if packageName == "" || gjson.GetBytes(content, "name").String() == packageName {
				return dir, nil
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return "", fmt.Errorf("%w: %s: %w", ErrManifestNotReadable, manifestPath, err)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// ReadManifest reads and parses <root>/package.json.
func ReadManifest(fls billy.Filesystem, root string) (*Manifest, error) {
	manifestPath := filepath.Join(root, MANIFEST_FILENAME)

	content, err := util.ReadFile(fls, manifestPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrManifestNotReadable, manifestPath, err)
	}

	var manifest Manifest
	if err := json.Unmarshal(content, &manifest); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidManifest, manifestPath, err)
	}

	return &manifest, nil
}

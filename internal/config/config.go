package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/adrg/xdg"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

const (
	APP_NAME = "stylelint-ls"

	CONFIG_FILE_NAME    = "config.json"
	CONFIG_FILE_RELPATH = APP_NAME + "/" + CONFIG_FILE_NAME

	DEFAULT_LOG_LEVEL = "info"
)

var (
	DEFAULT_VALIDATED_LANGUAGES = []string{"css", "less", "postcss"}

	ErrInvalidConfig = errors.New("invalid configuration")
)

// Options is the configuration of the server. The zero value is not usable, start from Default().
type Options struct {
	// Language identifiers of the documents that are checked.
	Validate []string `json:"validate"`

	// Path to the stylelint package, absolute or relative to the workspace folder.
	// If empty stylelint is resolved from the document's directory.
	StylelintPath string `json:"stylelintPath,omitempty"`

	LogLevel string `json:"logLevel,omitempty"`

	// Network is "" (stdio), "tcp" or "ws".
	Network string `json:"network,omitempty"`
	Address string `json:"address,omitempty"`
}

func Default() Options {
	return Options{
		Validate: slices.Clone(DEFAULT_VALIDATED_LANGUAGES),
		LogLevel: DEFAULT_LOG_LEVEL,
	}
}

func (o Options) Clone() Options {
	o.Validate = slices.Clone(o.Validate)
	return o
}

func (o Options) ShouldValidate(languageId string) bool {
	return slices.Contains(o.Validate, languageId)
}

func (o Options) ZerologLevel() (zerolog.Level, error) {
	if o.LogLevel == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(o.LogLevel)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("%w: log level: %w", ErrInvalidConfig, err)
	}
	return level, nil
}

// Parse overlays the configuration in configOrConfigFile on top of base. configOrConfigFile
// is either inline JSON or the path of a JSON file.
func Parse(configOrConfigFile string, base Options) (Options, error) {
	configOrConfigFile = strings.TrimSpace(configOrConfigFile)
	if configOrConfigFile == "" {
		return base, nil
	}

	var content []byte
	if configOrConfigFile[0] == '{' {
		content = []byte(configOrConfigFile)
	} else {
		fileContent, err := os.ReadFile(configOrConfigFile)
		if err != nil {
			return Options{}, fmt.Errorf("failed to read configuration file: %w", err)
		}
		content = fileContent
	}

	opts := base.Clone()
	if err := json.Unmarshal(content, &opts); err != nil {
		return Options{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if _, err := opts.ZerologLevel(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// UserConfigFilePath searches the user's configuration directories (XDG) for the configuration file.
func UserConfigFilePath() (string, bool) {
	path, err := xdg.SearchConfigFile(CONFIG_FILE_RELPATH)
	if err != nil {
		return "", false
	}
	return path, true
}

// Load computes the configuration from (by increasing precedence) the defaults, the user's
// configuration file, configOrConfigFile and the environment.
func Load(configOrConfigFile string) (Options, error) {
	opts := Default()

	if path, ok := UserConfigFilePath(); ok {
		fromFile, err := Parse(path, opts)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Options{}, fmt.Errorf("%s: %w", path, err)
		}
		if err == nil {
			opts = fromFile
		}
	}

	opts, err := Parse(configOrConfigFile, opts)
	if err != nil {
		return Options{}, err
	}

	return ApplyEnv(opts, os.LookupEnv), nil
}

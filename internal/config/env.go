package config

const (
	LOG_LEVEL_ENV_VARNAME      = "STYLELINT_LS_LOG_LEVEL"
	STYLELINT_PATH_ENV_VARNAME = "STYLELINT_LS_STYLELINT_PATH"
)

// ApplyEnv returns a copy of opts updated with the environment variables, lookup is typically os.LookupEnv.
func ApplyEnv(opts Options, lookup func(string) (string, bool)) Options {
	opts = opts.Clone()

	if s, ok := lookup(LOG_LEVEL_ENV_VARNAME); ok && s != "" {
		opts.LogLevel = s
	}

	if s, ok := lookup(STYLELINT_PATH_ENV_VARNAME); ok && s != "" {
		opts.StylelintPath = s
	}

	return opts
}

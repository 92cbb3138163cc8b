package config

import (
	"github.com/tidwall/gjson"
)

const (
	SETTINGS_SECTION = "stylelint"
)

// ApplySettings returns a copy of opts updated with the client settings sent in a
// workspace/didChangeConfiguration notification. Only the "stylelint" section is read,
// absent or ill-typed entries leave the current values unchanged.
func ApplySettings(opts Options, settings []byte) Options {
	opts = opts.Clone()

	if len(settings) == 0 || !gjson.ValidBytes(settings) {
		return opts
	}

	section := gjson.GetBytes(settings, SETTINGS_SECTION)
	if !section.IsObject() {
		return opts
	}

	if validate := section.Get("validate"); validate.IsArray() {
		languages := []string{}
		for _, lang := range validate.Array() {
			if lang.Type == gjson.String {
				languages = append(languages, lang.Str)
			}
		}
		opts.Validate = languages
	}

	if path := section.Get("stylelintPath"); path.Type == gjson.String {
		opts.StylelintPath = path.Str
	}

	return opts
}

package langserver

import (
	"github.com/rs/zerolog"
	"github.com/stylelintls/stylelint-ls/internal/lsp/defines"
)

type Module interface {
	Id() string
}

// InitializeHook is implemented by modules that need the parameters of the initialize request.
type InitializeHook interface {
	OnInitialize(params *defines.InitializeParams)
}

// HandlersRegisteredHook is implemented by modules that register handlers, it is called once
// the server's own handlers are registered.
type HandlersRegisteredHook interface {
	OnDidRegisterHandlers()
}

type ModuleParams struct {
	Context *Context
	Logger  *zerolog.Logger //optional
}

type ModuleFactory func(params ModuleParams) Module

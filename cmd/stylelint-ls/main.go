package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/stylelintls/stylelint-ls/internal/config"
	"github.com/stylelintls/stylelint-ls/internal/langserver"
	"github.com/stylelintls/stylelint-ls/internal/logs"
	"github.com/stylelintls/stylelint-ls/internal/lsp"
	"github.com/stylelintls/stylelint-ls/internal/modules/oldstylelint"
)

const (
	ERROR_STATUS_CODE = 1
	COMMAND_NAME      = config.APP_NAME
)

// set at build time with -ldflags "-X main.VERSION=..."
var VERSION = "dev"

func main() {
	statusCode := _main(os.Args, os.Stdin, os.Stdout, os.Stderr)
	if statusCode != 0 {
		os.Exit(statusCode)
	}
}

func _main(args []string, inR io.Reader, outW io.Writer, errW io.Writer) (statusCode int) {
	flags := flag.NewFlagSet(COMMAND_NAME, flag.ContinueOnError)
	flags.SetOutput(errW)

	var (
		configOrConfigFile string
		useStdio           bool
		tcpAddr            string
		websocketAddr      string
		logLevel           string
		showVersion        bool
	)

	flags.StringVar(&configOrConfigFile, "config", "", "JSON configuration or JSON file")
	flags.BoolVar(&useStdio, "stdio", true, "communicate over stdin/stdout (default)")
	flags.StringVar(&tcpAddr, "listen", "", "listen for TCP connections on this address instead of using stdio")
	flags.StringVar(&websocketAddr, "ws", "", "listen for websocket connections on this address instead of using stdio")
	flags.StringVar(&logLevel, "log-level", "", "log level: trace, debug, info, warn, error (logs are written to stderr)")
	flags.BoolVar(&showVersion, "version", false, "print the version and exit")

	if showHelp(flags, args[1:], outW) {
		return
	}

	if err := flags.Parse(args[1:]); err != nil {
		return ERROR_STATUS_CODE
	}

	if showVersion {
		fmt.Fprintln(outW, COMMAND_NAME, VERSION)
		return
	}

	opts, err := config.Load(configOrConfigFile)
	if err != nil {
		fmt.Fprintln(errW, COMMAND_NAME+":", err)
		return ERROR_STATUS_CODE
	}

	if logLevel != "" {
		opts.LogLevel = logLevel
	}

	switch {
	case tcpAddr != "" && websocketAddr != "":
		fmt.Fprintln(errW, COMMAND_NAME+": -listen and -ws are mutually exclusive")
		return ERROR_STATUS_CODE
	case tcpAddr != "":
		opts.Network = lsp.NETWORK_TCP
		opts.Address = tcpAddr
	case websocketAddr != "":
		opts.Network = lsp.NETWORK_WEBSOCKET
		opts.Address = websocketAddr
	}

	level, err := opts.ZerologLevel()
	if err != nil {
		fmt.Fprintln(errW, COMMAND_NAME+":", err)
		return ERROR_STATUS_CODE
	}

	//stdout carries the protocol in stdio mode
	logs.Init(logs.New(errW, level))
	logger := logs.NewChildLogger("main")

	logger.Info().
		Str("version", VERSION).
		Str("network", networkName(opts.Network)).
		Str("validate", strings.Join(opts.Validate, ",")).
		Msg("start server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cancelOnSigintSigterm(cancel)

	serverLogger := logs.NewChildLogger(langserver.LANGSERVER_LOG_SRC)
	server := langserver.NewServer(langserver.ServerParams{
		Options: opts,
		Modules: []langserver.ModuleFactory{oldstylelint.Factory},
		Version: VERSION,
		Logger:  &serverLogger,
	})

	err = server.Serve(ctx, lsp.Config{
		Network:     opts.Network,
		Address:     opts.Address,
		StdioInput:  inR,
		StdioOutput: outW,
	})
	if err != nil {
		logger.Error().Err(err).Msg("server stopped")
		return ERROR_STATUS_CODE
	}

	logger.Info().Msg("server stopped")
	return 0
}

func networkName(network string) string {
	if network == "" {
		return "stdio"
	}
	return network
}

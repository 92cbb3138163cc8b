package logs

import (
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
)

const (
	SOURCE_LOG_FIELD_NAME = "src"
)

var (
	root = atomic.Pointer[zerolog.Logger]{}
)

func init() {
	nop := zerolog.Nop()
	root.Store(&nop)
}

// Init sets the root logger, it is typically called once by main.
func Init(l zerolog.Logger) {
	root.Store(&l)
}

// New creates a logger writing JSON lines to w, with a timestamp on each line.
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func Root() zerolog.Logger {
	return *root.Load()
}

// NewChildLogger returns a child of the root logger that tags each entry with src.
func NewChildLogger(src string) zerolog.Logger {
	return root.Load().With().Str(SOURCE_LOG_FIELD_NAME, src).Logger()
}

func Println(v ...interface{}) {
	root.Load().Debug().Msg(strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

func Printf(format string, v ...interface{}) {
	root.Load().Debug().Msgf(format, v...)
}

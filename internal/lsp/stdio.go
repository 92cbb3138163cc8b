package lsp

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/stylelintls/stylelint-ls/internal/lsp/jsonrpc"
)

// stdioReaderWriter never closes the underlying streams, after Close reads and writes return io.EOF.
type stdioReaderWriter struct {
	reader io.Reader
	writer io.Writer
	closed atomic.Bool
}

// NewStdio returns a connection over input and output, os.Stdin and os.Stdout are used if they are nil.
func NewStdio(input io.Reader, output io.Writer) jsonrpc.ReaderWriter {
	if input == nil {
		input = os.Stdin
	}
	if output == nil {
		output = os.Stdout
	}
	return &stdioReaderWriter{
		reader: input,
		writer: output,
	}
}

func (s *stdioReaderWriter) Read(p []byte) (n int, err error) {
	if s.closed.Load() {
		return 0, io.EOF
	}
	return s.reader.Read(p)
}

func (s *stdioReaderWriter) Write(p []byte) (n int, err error) {
	if s.closed.Load() {
		return 0, io.EOF
	}
	return s.writer.Write(p)
}

func (s *stdioReaderWriter) Close() error {
	s.closed.Store(true)
	return nil
}

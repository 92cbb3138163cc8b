package jsonrpc

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

const (
	CONTENT_LENGTH_HEADER = "Content-Length"
	MAX_HEADER_COUNT      = 10
	MAX_CONTENT_LENGTH    = 100_000_000
)

var (
	_ MessageReaderWriter = (*FnMessageReaderWriter)(nil)
	_ MessageReaderWriter = (*streamConn)(nil)
)

type ReaderWriter interface {
	io.Reader
	io.Writer
	io.Closer
}

type MessageReaderWriter interface {
	//ReadMessage reads an entire message and returns it, the returned bytes should not be modified by the caller.
	ReadMessage() (msg []byte, err error)

	//WriteMessage writes an entire message, the written bytes should not be modified by the implementation.
	WriteMessage(msg []byte) error

	io.Closer
}

type FnMessageReaderWriter struct {
	ReadMessageFn  func() (msg []byte, err error)
	WriteMessageFn func(msg []byte) error
	CloseFn        func() error
}

func (rw FnMessageReaderWriter) ReadMessage() (msg []byte, err error) {
	return rw.ReadMessageFn()
}

func (rw FnMessageReaderWriter) WriteMessage(msg []byte) error {
	return rw.WriteMessageFn(msg)
}

func (rw FnMessageReaderWriter) Close() error {
	return rw.CloseFn()
}

// streamConn reads and writes messages framed by a header part (Content-Length, Content-Type)
// on a byte stream such as stdio or a TCP connection.
type streamConn struct {
	conn   ReaderWriter
	reader *bufio.Reader

	writeLock sync.Mutex
}

func NewStreamConn(conn ReaderWriter) MessageReaderWriter {
	return &streamConn{
		conn:   conn,
		reader: bufio.NewReader(conn),
	}
}

func (c *streamConn) ReadMessage() ([]byte, error) {
	contentLength := -1

	for headerCount := 0; ; headerCount++ {
		line, err := c.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF && line != "" {
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}

		if headerCount >= MAX_HEADER_COUNT {
			return nil, newParseError("too many headers")
		}

		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, newParseError("invalid header: " + line)
		}

		if strings.EqualFold(strings.TrimSpace(name), CONTENT_LENGTH_HEADER) {
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil || n < 0 || n > MAX_CONTENT_LENGTH {
				return nil, newParseError("invalid content length: " + value)
			}
			contentLength = n
		}
	}

	if contentLength < 0 {
		return nil, newParseError("missing " + CONTENT_LENGTH_HEADER + " header")
	}

	content := make([]byte, contentLength)
	if _, err := io.ReadFull(c.reader, content); err != nil {
		return nil, err
	}
	return content, nil
}

func (c *streamConn) WriteMessage(msg []byte) error {
	c.writeLock.Lock()
	defer c.writeLock.Unlock()

	header := fmt.Sprintf("%s: %d\r\n\r\n", CONTENT_LENGTH_HEADER, len(msg))
	if _, err := io.WriteString(c.conn, header); err != nil {
		return err
	}
	_, err := c.conn.Write(msg)
	return err
}

func (c *streamConn) Close() error {
	return c.conn.Close()
}

func newParseError(data string) ResponseError {
	e := ParseError
	e.Data = data
	return e
}

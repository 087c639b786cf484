package rpc

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"os"
	"sync"
)

const (
	maxIntakeBuffer = 500 * 1024 * 1023
)

var TwoNewLines = []byte("\n\n")

// StreamTransport exchanges json messages separated by an empty line over a
// reader and a writer, e.g. stdin and stdout. All messages share one client
// id.
type StreamTransport struct {
	clientId string
	in       io.ReadCloser
	scanner  *bufio.Scanner
	readMtx  sync.Mutex
	out      io.Writer
	writeMtx sync.Mutex
}

func NewStreamTransport(clientId string, in io.ReadCloser, out io.Writer) *StreamTransport {
	scanner := bufio.NewScanner(in)
	buf := make([]byte, 1024)
	scanner.Buffer(buf, maxIntakeBuffer)

	// messages are split by a double newline.
	scanner.Split(scanDoubleNewline)
	return &StreamTransport{
		clientId: clientId,
		in:       in,
		scanner:  scanner,
		out:      out,
	}
}

func NewStdioTransport() *StreamTransport {
	return NewStreamTransport("stdio", os.Stdin, os.Stdout)
}

func (t *StreamTransport) Recv() (*Message, error) {
	t.readMtx.Lock()
	defer t.readMtx.Unlock()

	for {
		if !t.scanner.Scan() {
			err := t.scanner.Err()
			if err == nil || errors.Is(err, os.ErrClosed) {
				return nil, io.EOF
			}
			return nil, err
		}

		msg := bytes.TrimSpace(t.scanner.Bytes())
		if len(msg) == 0 {
			continue
		}

		// pass down a copy so things stay sane
		data := make([]byte, len(msg))
		copy(data, msg)
		return &Message{
			ClientId: t.clientId,
			Data:     data,
		}, nil
	}
}

func (t *StreamTransport) Send(msg *Message) error {
	t.writeMtx.Lock()
	defer t.writeMtx.Unlock()

	data := make([]byte, 0, len(msg.Data)+len(TwoNewLines))
	data = append(data, msg.Data...)
	data = append(data, TwoNewLines...)
	_, err := t.out.Write(data)
	return err
}

// Close closes the input, which makes a pending Recv return io.EOF.
func (t *StreamTransport) Close() error {
	return t.in.Close()
}

// Helper method for the bufio scanner to split messages on double newlines.
// A final message without a terminating empty line is returned at EOF.
func scanDoubleNewline(
	data []byte,
	atEOF bool,
) (advance int, token []byte, err error) {
	if i := bytes.Index(data, TwoNewLines); i >= 0 {
		return i + 2, data[:i], nil
	}
	if atEOF && len(data) > 0 {
		return len(data), data, nil
	}
	return 0, nil, nil
}

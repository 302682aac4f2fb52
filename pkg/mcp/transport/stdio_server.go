// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package transport

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// MaxStdioMessageSize bounds a single inbound line.
const MaxStdioMessageSize = 16 * 1024 * 1024

// ErrClosed is returned by a transport after Close.
var ErrClosed = errors.New("transport closed")

type readResult struct {
	data []byte
	err  error
}

// StdioServerTransport reads one JSON-RPC message per line from r and writes
// one per line to w. Stdout carries protocol traffic only, so logs must go
// elsewhere.
//
// A single reader goroutine lives for the transport's lifetime, so cancelled
// Receive calls do not leak goroutines or lose lines.
type StdioServerTransport struct {
	scanner *bufio.Scanner
	writer  io.Writer

	mu     sync.Mutex // guards writer and closed
	closed bool

	readCh chan readResult
	once   sync.Once
}

// NewStdioServerTransport creates a transport over r and w, typically
// os.Stdin and os.Stdout.
func NewStdioServerTransport(r io.Reader, w io.Writer) *StdioServerTransport {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxStdioMessageSize)
	return &StdioServerTransport{
		scanner: scanner,
		writer:  w,
		readCh:  make(chan readResult, 1),
	}
}

func (t *StdioServerTransport) startReader() {
	t.once.Do(func() {
		go func() {
			defer close(t.readCh)
			for t.scanner.Scan() {
				line := bytes.TrimSpace(t.scanner.Bytes())
				if len(line) == 0 {
					continue
				}
				msg := make([]byte, len(line))
				copy(msg, line)
				t.readCh <- readResult{data: msg}
			}
			err := t.scanner.Err()
			if err == nil {
				err = io.EOF
			}
			t.readCh <- readResult{err: err}
		}()
	})
}

// Send writes message followed by a newline in a single write.
func (t *StdioServerTransport) Send(_ context.Context, message []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrClosed
	}
	buf := make([]byte, 0, len(message)+1)
	buf = append(buf, message...)
	buf = append(buf, '\n')
	if _, err := t.writer.Write(buf); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

// Receive returns the next non-empty line without its line terminator.
// It returns io.EOF once the input is exhausted.
func (t *StdioServerTransport) Receive(ctx context.Context) ([]byte, error) {
	t.startReader()

	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result, ok := <-t.readCh:
		if !ok {
			return nil, io.EOF
		}
		if result.err != nil {
			if errors.Is(result.err, io.EOF) {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("read message: %w", result.err)
		}
		return result.data, nil
	}
}

// Close marks the transport closed. The underlying reader and writer are
// left open; they usually belong to the process.
func (t *StdioServerTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

var _ Transport = (*StdioServerTransport)(nil)

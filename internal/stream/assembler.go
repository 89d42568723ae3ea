package stream

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/youruser/ragchat/internal/logging"
)

var log = logging.Get()

// ChunkFunc receives the full accumulated text after each chunk.
type ChunkFunc func(accumulated string)

// Assembler consumes a chunked response body and rebuilds the assistant
// reply incrementally. Each chunk is decoded statefully, stripped of a
// single leading "data:" token, and appended to a running accumulator.
type Assembler struct {
	dec Decoder
	acc strings.Builder
}

// stripDataPrefix removes one leading "data:" marker with any following
// whitespace from the decoded text of a chunk. Chunks without the marker
// (transport splits) pass through unchanged.
func stripDataPrefix(s string) string {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return s
	}
	return strings.TrimLeft(rest, " \t\r\n")
}

// Consume reads the body until end of stream, invoking onChunk with the
// accumulated text after every chunk. On a mid-stream read failure the
// already-published text stays as it was; there is no rollback.
func (a *Assembler) Consume(ctx context.Context, body io.Reader, onChunk ChunkFunc) error {
	buf := make([]byte, 4096)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := body.Read(buf)
		if n > 0 {
			text := stripDataPrefix(a.dec.Write(buf[:n]))
			if text != "" {
				a.acc.WriteString(text)
			}
			log.Stream("chunk", text)
			onChunk(a.acc.String())
		}

		if err == io.EOF {
			if tail := a.dec.Flush(); tail != "" {
				a.acc.WriteString(tail)
				onChunk(a.acc.String())
			}
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Error("stream read failed: %v", err)
			return fmt.Errorf("reading response stream: %w", err)
		}
	}
}

// Text returns the accumulated text so far.
func (a *Assembler) Text() string {
	return a.acc.String()
}

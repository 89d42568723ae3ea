package stream

import "unicode/utf8"

// Decoder incrementally decodes a UTF-8 byte stream. A multi-byte sequence
// split across two Write calls is held back until its remaining bytes
// arrive, so the returned text never contains a torn code point.
type Decoder struct {
	pending []byte
}

// seqLen returns the encoded length implied by a UTF-8 leading byte, or 0
// for continuation and invalid bytes.
func seqLen(b byte) int {
	switch {
	case b < 0x80:
		return 1
	case b&0xE0 == 0xC0:
		return 2
	case b&0xF0 == 0xE0:
		return 3
	case b&0xF8 == 0xF0:
		return 4
	default:
		return 0
	}
}

// Write decodes p together with any bytes held back by the previous call
// and returns the decoded text. An incomplete trailing sequence is buffered
// for the next call. Invalid byte sequences pass through unchanged.
func (d *Decoder) Write(p []byte) string {
	buf := append(d.pending, p...)

	// Walk back over at most one sequence worth of bytes looking for a
	// leading byte whose sequence runs past the end of the buffer.
	cut := len(buf)
	for back := 1; back <= utf8.UTFMax && back <= len(buf); back++ {
		i := len(buf) - back
		b := buf[i]
		if b < utf8.RuneSelf {
			break
		}
		n := seqLen(b)
		if n == 0 {
			continue // continuation byte, keep walking
		}
		if back < n {
			cut = i // sequence is incomplete, hold it back
		}
		break
	}

	out := string(buf[:cut])
	d.pending = append(d.pending[:0], buf[cut:]...)
	return out
}

// Flush returns any held-back bytes as-is. Called at end of stream, where
// an incomplete sequence can no longer be completed.
func (d *Decoder) Flush() string {
	out := string(d.pending)
	d.pending = nil
	return out
}

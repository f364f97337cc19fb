package frame

import "bytes"

// maxBufferSize caps the accumulation buffer at 1 MiB. A stream that never
// produces an end marker keeps only its newest bytes.
const maxBufferSize = 1024 * 1024

// Framer cuts a chunked byte stream into packets delimited by start/end
// markers. It is stateful: bytes left over after the last complete packet
// are carried into the next Push call.
//
// A Framer is not safe for concurrent use; each channel reader owns one.
type Framer struct {
	start []byte
	end   []byte
	buf   []byte
}

// NewFramer creates a Framer from marker specs (see ParseMarker).
// An empty end spec produces a pass-through framer: every pushed chunk
// is returned unchanged as a single packet.
func NewFramer(startSpec, endSpec string) *Framer {
	return &Framer{
		start: ParseMarker(startSpec),
		end:   ParseMarker(endSpec),
	}
}

// Push appends a read chunk to the buffer and returns all complete packets
// it now contains. Packets include their markers. The returned slices are
// copies and remain valid after subsequent calls.
func (f *Framer) Push(data []byte) [][]byte {
	if len(f.end) == 0 {
		// Pass-through mode: no framing configured.
		if len(data) == 0 {
			return nil
		}
		packet := make([]byte, len(data))
		copy(packet, data)
		return [][]byte{packet}
	}

	f.buf = append(f.buf, data...)
	if len(f.buf) > maxBufferSize {
		// Keep the newest bytes. The oldest data is the least likely to
		// still complete into a packet.
		f.buf = f.buf[len(f.buf)-maxBufferSize:]
	}

	if len(f.start) > 0 {
		return f.cutStartEnd()
	}
	return f.cutEndOnly()
}

// cutStartEnd extracts start..end delimited packets. Bytes before the
// first start marker are noise (e.g. a partial packet from before the
// monitor attached) and are discarded. When the buffer contains no start
// marker at all it is dropped entirely.
func (f *Framer) cutStartEnd() [][]byte {
	var packets [][]byte

	for {
		startIdx := bytes.Index(f.buf, f.start)
		if startIdx == -1 {
			f.buf = nil
			break
		}
		if startIdx > 0 {
			f.buf = f.buf[startIdx:]
		}

		// Search for the end marker after the start marker. The offset
		// matters when both markers are the same byte.
		endIdx := bytes.Index(f.buf[len(f.start):], f.end)
		if endIdx == -1 {
			// Incomplete packet — wait for more data.
			break
		}
		cut := len(f.start) + endIdx + len(f.end)

		packet := make([]byte, cut)
		copy(packet, f.buf[:cut])
		packets = append(packets, packet)
		f.buf = f.buf[cut:]
	}

	return packets
}

// cutEndOnly splits the buffer on the end marker. Each packet keeps the
// marker as its final byte(s).
func (f *Framer) cutEndOnly() [][]byte {
	var packets [][]byte

	for {
		endIdx := bytes.Index(f.buf, f.end)
		if endIdx == -1 {
			break
		}
		cut := endIdx + len(f.end)

		packet := make([]byte, cut)
		copy(packet, f.buf[:cut])
		packets = append(packets, packet)
		f.buf = f.buf[cut:]
	}

	return packets
}

// Flush returns the unconsumed buffer remainder and resets the framer.
// Callers emit the remainder as a final partial packet when monitoring
// stops, so trailing bytes are never silently lost.
func (f *Framer) Flush() []byte {
	if len(f.buf) == 0 {
		return nil
	}
	rest := f.buf
	f.buf = nil
	return rest
}

// Pending returns the number of buffered bytes awaiting an end marker.
func (f *Framer) Pending() int {
	return len(f.buf)
}

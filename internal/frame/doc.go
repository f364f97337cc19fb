// Package frame implements marker-based packet assembly for serial
// byte streams.
//
// Serial reads arrive as arbitrary chunks with no relation to protocol
// packet boundaries. The Framer accumulates chunks and cuts them into
// packets using configurable start/end markers:
//
//   - end marker only: the stream is split on the end marker, which is
//     kept as the last byte(s) of each packet
//   - start + end marker: bytes before a start marker are discarded,
//     and a packet spans start..end inclusive
//
// Marker specs accept the mnemonics "STX" and "ETX", hex ("0x02"),
// decimal ("2"), or a literal byte string. The accumulation buffer is
// capped at 1 MiB; on overflow the oldest bytes are dropped so a stream
// that never produces an end marker cannot grow memory without bound.
package frame

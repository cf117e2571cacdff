// Package wire implements the small HTTP/1.1 subset spoken by framecast.
//
// A viewer opens a TCP connection and sends a request head. The acceptor reads
// at most [RequestBufferSize] bytes, parses the request line and headers with
// [ReadRequest], and answers with either the multipart stream response or a
// bare 404 (see [Handshake]). Every frame broadcast afterwards is prefixed by
// the chunk header built by [FrameHeader]:
//
//	--basic_stream_boundary\r\n
//	Content-Type: image/jpeg\r\n
//	Content-Length: N\r\n
//	\r\n
//	<N bytes>
//
// No trailing boundary terminator is written; the next chunk's boundary line
// follows the frame bytes directly.
package wire

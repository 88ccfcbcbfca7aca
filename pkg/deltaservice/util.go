package deltaservice

import (
	"io"

	"github.com/valyala/bytebufferpool"
)

// copyBufferPool backs every streaming copy in this package (reference and
// delta downloads, decoded-output writes) with a reused buffer, adapted
// from the teacher's network.copyWithBufferPool.
var copyBufferPool = bytebufferpool.Pool{}

const copyBufSize = 64 * 1024

// copyAll streams src into dst using a pooled buffer and returns the number
// of bytes copied.
func copyAll(dst io.Writer, src io.Reader) (int64, error) {
	buf := copyBufferPool.Get()
	defer copyBufferPool.Put(buf)

	if cap(buf.B) < copyBufSize {
		buf.B = make([]byte, copyBufSize)
	} else {
		buf.B = buf.B[:copyBufSize]
	}

	return io.CopyBuffer(dst, src, buf.B)
}

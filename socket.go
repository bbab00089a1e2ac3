package tlsapi

import "io"

// AsyncSocket is the capability set a duplex byte stream must provide
// to carry TLS. Close shuts down the stream. A socket has a single
// owner: do not issue concurrent reads (or concurrent writes) from more
// than one goroutine.
//
// Any net.Conn is an AsyncSocket, regardless of the network stack that
// created it (the OS stack or a userspace one).
type AsyncSocket interface {
	io.Reader
	io.Writer
	io.Closer
}

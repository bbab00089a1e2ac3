package tlsapitest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ooni/tlsapi"
)

// RunConnector runs the scenarios that only need a connector.
func RunConnector[C tlsapi.Connector](t *testing.T, ctyp tlsapi.ConnectorType[C]) {
	t.Run("TestGoogle", func(t *testing.T) { TestGoogle(t, ctyp) })
	t.Run("ConnectBadHostname", func(t *testing.T) { ConnectBadHostname(t, ctyp) })
	t.Run("ConnectBadHostnameIgnored", func(t *testing.T) { ConnectBadHostnameIgnored(t, ctyp) })
	t.Run("BuilderSingleUse", func(t *testing.T) { BuilderSingleUse(t, ctyp) })
}

// RunAll runs every scenario.
func RunAll[C tlsapi.Connector, A tlsapi.Acceptor](
	t *testing.T, ctyp tlsapi.ConnectorType[C], atyp tlsapi.AcceptorType[A],
) {
	RunConnector(t, ctyp)
	t.Run("Server", func(t *testing.T) { Server(t, ctyp, atyp) })
	t.Run("ALPN", func(t *testing.T) { ALPN(t, ctyp, atyp) })
	t.Run("BuilderLastValueWins", func(t *testing.T) { BuilderLastValueWins(t, ctyp, atyp) })
	t.Run("LocalBadHostname", func(t *testing.T) { LocalBadHostname(t, ctyp, atyp) })
	t.Run("HandshakeTimeout", func(t *testing.T) { HandshakeTimeout(t, ctyp) })
	t.Run("AcceptorBuilderSingleUse", func(t *testing.T) { AcceptorBuilderSingleUse(t, atyp) })
}

const googleAddress = "google.com:443"

func dialGoogle(t *testing.T) net.Conn {
	if testing.Short() {
		t.Skip("skip test in short mode")
	}
	conn, err := (&net.Dialer{}).DialContext(context.Background(), "tcp", googleAddress)
	if err != nil {
		t.Fatal(err)
	}
	return conn
}

// TestGoogle fetches the google.com homepage using HTTP/1.0.
func TestGoogle[C tlsapi.Connector](t *testing.T, ctyp tlsapi.ConnectorType[C]) {
	requireImplemented(t, ctyp)
	connector := newConnector(t, ctyp, nil)
	conn := dialGoogle(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	stream, err := tlsapi.ConnectWithSocket(ctx, connector, "google.com", conn)
	if err != nil {
		t.Fatal(err)
	}
	defer stream.Close()
	if stream.Socket() != conn {
		t.Fatal("the stream does not remember its socket")
	}
	if _, err := stream.Write([]byte("GET / HTTP/1.0\r\nHost: google.com\r\n\r\n")); err != nil {
		t.Fatal(err)
	}
	data, err := io.ReadAll(stream)
	if err != nil {
		t.Fatal(err)
	}
	body := string(data)
	if !strings.HasPrefix(body, "HTTP/1.0") {
		t.Fatal("unexpected response prefix", body[:min(len(body), 32)])
	}
	if !strings.HasSuffix(body, "</html>") && !strings.HasSuffix(body, "</HTML>\r\n") {
		t.Fatal("unexpected response suffix", body[max(0, len(body)-32):])
	}
}

// ConnectBadHostname checks that the certificate of google.com is not
// valid for goggle.com.
func ConnectBadHostname[C tlsapi.Connector](t *testing.T, ctyp tlsapi.ConnectorType[C]) {
	requireImplemented(t, ctyp)
	connector := newConnector(t, ctyp, nil)
	conn := dialGoogle(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	stream, err := connector.Connect(ctx, "goggle.com", conn)
	if err == nil {
		stream.Close()
		t.Fatal("expected an error here")
	}
	if stream != nil {
		t.Fatal("expected nil stream")
	}
}

// ConnectBadHostnameIgnored checks that disabling hostname verification
// allows connecting to google.com using a bogus domain.
func ConnectBadHostnameIgnored[C tlsapi.Connector](t *testing.T, ctyp tlsapi.ConnectorType[C]) {
	requireImplemented(t, ctyp)
	connector := newConnector(t, ctyp, func(b tlsapi.ConnectorBuilder[C]) error {
		return b.SetVerifyHostname(false)
	})
	conn := dialGoogle(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	stream, err := connector.Connect(ctx, "ignore", conn)
	if err != nil {
		t.Fatal(err)
	}
	stream.Close()
}

// serverResult is what the server goroutine of a loopback scenario
// reports to the test goroutine.
type serverResult struct {
	alpn []byte
	err  error
}

// runLoopback accepts one connection using acceptor, runs serve on the
// resulting stream and reports the outcome on the returned channel.
func runLoopback[A tlsapi.Acceptor](
	ctx context.Context, listener net.Listener, acceptor A, serve func(stream *tlsapi.TLSStream) error,
) <-chan *serverResult {
	out := make(chan *serverResult, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			out <- &serverResult{err: err}
			return
		}
		stream, err := tlsapi.AcceptWithSocket(ctx, acceptor, conn)
		if err != nil {
			out <- &serverResult{err: err}
			return
		}
		defer stream.Close()
		err = serve(stream.TLSStream)
		out <- &serverResult{alpn: stream.NegotiatedALPN(), err: err}
	}()
	return out
}

// Server runs a client and a server over each loopback network. The
// client says hello and the server answers world.
func Server[C tlsapi.Connector, A tlsapi.Acceptor](
	t *testing.T, ctyp tlsapi.ConnectorType[C], atyp tlsapi.AcceptorType[A],
) {
	requireImplemented(t, ctyp, atyp)
	ForEachNetwork(t, func(t *testing.T, network Network) {
		acceptor := newAcceptor(t, atyp, nil)
		connector := newConnector(t, ctyp, trustTestCA[C])
		listener, err := network.Listen()
		if err != nil {
			t.Fatal(err)
		}
		defer listener.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		done := runLoopback(ctx, listener, acceptor, func(stream *tlsapi.TLSStream) error {
			buf := make([]byte, 5)
			if _, err := io.ReadFull(stream, buf); err != nil {
				return err
			}
			if !bytes.Equal(buf, []byte("hello")) {
				return errors.New("server received unexpected data")
			}
			_, err := stream.Write([]byte("world"))
			return err
		})
		conn, err := network.DialContext(ctx, listener.Addr().String())
		if err != nil {
			t.Fatal(err)
		}
		stream, err := tlsapi.ConnectWithSocket(ctx, connector, ServerDomain, conn)
		if err != nil {
			t.Fatal(err)
		}
		defer stream.Close()
		if _, err := stream.Write([]byte("hello")); err != nil {
			t.Fatal(err)
		}
		data, err := io.ReadAll(stream)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "world" {
			t.Fatal("client received unexpected data", string(data))
		}
		if result := <-done; result.err != nil {
			t.Fatal(result.err)
		}
		if stream.NegotiatedALPN() != nil {
			t.Fatal("expected no ALPN")
		}
	})
}

// ALPN checks that the server picks the first protocol in its own
// list that the client also offers.
func ALPN[C tlsapi.Connector, A tlsapi.Acceptor](
	t *testing.T, ctyp tlsapi.ConnectorType[C], atyp tlsapi.AcceptorType[A],
) {
	if !ctyp.SupportsALPN() {
		checkConnectorALPNUnsupported(t, ctyp)
		t.Skip("connector does not support ALPN:", ctyp.Info())
	}
	if !atyp.SupportsALPN() {
		checkAcceptorALPNUnsupported(t, atyp)
		t.Skip("acceptor does not support ALPN:", atyp.Info())
	}
	requireImplemented(t, ctyp, atyp)
	ForEachNetwork(t, func(t *testing.T, network Network) {
		runALPN(t, network, ctyp, atyp, func(b tlsapi.ConnectorBuilder[C]) error {
			return b.SetALPNProtocols([]byte("xyz"), []byte("de"), []byte("u"))
		}, serverALPN[A]([]byte("abc"), []byte("de"), []byte("f")), []byte("de"))
	})
}

func checkConnectorALPNUnsupported[C tlsapi.Connector](t *testing.T, ctyp tlsapi.ConnectorType[C]) {
	builder, err := ctyp.Builder()
	if errors.Is(err, tlsapi.ErrNotImplemented) {
		return
	}
	if err != nil {
		t.Fatal(err)
	}
	if err := builder.SetALPNProtocols([]byte("de")); !errors.Is(err, tlsapi.ErrALPNUnsupported) {
		t.Fatal("not the error we expected", err)
	}
}

func checkAcceptorALPNUnsupported[A tlsapi.Acceptor](t *testing.T, atyp tlsapi.AcceptorType[A]) {
	keys := Keys()
	builder, err := atyp.BuilderFromDERKeys(keys.Chain, keys.Key)
	if errors.Is(err, tlsapi.ErrNotImplemented) || errors.Is(err, tlsapi.ErrKeysUnsupported) {
		return
	}
	if err != nil {
		t.Fatal(err)
	}
	if err := builder.SetALPNProtocols([]byte("de")); !errors.Is(err, tlsapi.ErrALPNUnsupported) {
		t.Fatal("not the error we expected", err)
	}
}

// runALPN runs a handshake and checks that both sides agree on expect.
func runALPN[C tlsapi.Connector, A tlsapi.Acceptor](
	t *testing.T, network Network, ctyp tlsapi.ConnectorType[C], atyp tlsapi.AcceptorType[A],
	configure func(b tlsapi.ConnectorBuilder[C]) error,
	configureServer func(b tlsapi.AcceptorBuilder[A]) error, expect []byte,
) {
	acceptor := newAcceptor(t, atyp, configureServer)
	connector := newConnector(t, ctyp, func(b tlsapi.ConnectorBuilder[C]) error {
		if err := trustTestCA(b); err != nil {
			return err
		}
		return configure(b)
	})
	listener, err := network.Listen()
	if err != nil {
		t.Fatal(err)
	}
	defer listener.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	done := runLoopback(ctx, listener, acceptor, func(stream *tlsapi.TLSStream) error {
		_, err := io.Copy(io.Discard, stream)
		return err
	})
	conn, err := network.DialContext(ctx, listener.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	stream, err := connector.Connect(ctx, ServerDomain, conn)
	if err != nil {
		t.Fatal(err)
	}
	clientALPN := stream.NegotiatedALPN()
	stream.Close()
	result := <-done
	if result.err != nil {
		t.Fatal(result.err)
	}
	if !bytes.Equal(clientALPN, expect) {
		t.Fatal("client: unexpected ALPN", string(clientALPN))
	}
	if !bytes.Equal(result.alpn, expect) {
		t.Fatal("server: unexpected ALPN", string(result.alpn))
	}
}

// BuilderLastValueWins checks that setting an option twice keeps the
// second value.
func BuilderLastValueWins[C tlsapi.Connector, A tlsapi.Acceptor](
	t *testing.T, ctyp tlsapi.ConnectorType[C], atyp tlsapi.AcceptorType[A],
) {
	requireImplemented(t, ctyp, atyp)
	network := NewOSNetwork()
	defer network.Close()
	t.Run("verify hostname", func(t *testing.T) {
		connector := newConnector(t, ctyp, func(b tlsapi.ConnectorBuilder[C]) error {
			if err := trustTestCA(b); err != nil {
				return err
			}
			if err := b.SetVerifyHostname(false); err != nil {
				return err
			}
			return b.SetVerifyHostname(true)
		})
		acceptor := newAcceptor(t, atyp, nil)
		if err := dialLoopback(network, connector, acceptor, "ignore"); err == nil {
			t.Fatal("expected an error here")
		}
	})
	t.Run("ALPN", func(t *testing.T) {
		if !ctyp.SupportsALPN() || !atyp.SupportsALPN() {
			t.Skip("backend does not support ALPN")
		}
		runALPN(t, network, ctyp, atyp, func(b tlsapi.ConnectorBuilder[C]) error {
			if err := b.SetALPNProtocols([]byte("xyz")); err != nil {
				return err
			}
			return b.SetALPNProtocols([]byte("de"))
		}, serverALPN[A]([]byte("de")), []byte("de"))
	})
	t.Run("server ALPN", func(t *testing.T) {
		if !ctyp.SupportsALPN() || !atyp.SupportsALPN() {
			t.Skip("backend does not support ALPN")
		}
		runALPN(t, network, ctyp, atyp, func(b tlsapi.ConnectorBuilder[C]) error {
			return b.SetALPNProtocols([]byte("f"), []byte("de"))
		}, func(b tlsapi.AcceptorBuilder[A]) error {
			if err := b.SetALPNProtocols([]byte("f")); err != nil {
				return err
			}
			return b.SetALPNProtocols([]byte("de"))
		}, []byte("de"))
	})
}

// serverALPN returns a function configuring protocols on an acceptor.
func serverALPN[A tlsapi.Acceptor](protocols ...[]byte) func(b tlsapi.AcceptorBuilder[A]) error {
	return func(b tlsapi.AcceptorBuilder[A]) error {
		return b.SetALPNProtocols(protocols...)
	}
}

// dialLoopback performs a handshake over network and returns the error
// seen by the client.
func dialLoopback[C tlsapi.Connector, A tlsapi.Acceptor](
	network Network, connector C, acceptor A, domain string,
) error {
	listener, err := network.Listen()
	if err != nil {
		return err
	}
	defer listener.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	done := runLoopback(ctx, listener, acceptor, func(stream *tlsapi.TLSStream) error {
		return nil
	})
	conn, err := network.DialContext(ctx, listener.Addr().String())
	if err != nil {
		return err
	}
	stream, err := connector.Connect(ctx, domain, conn)
	if err == nil {
		stream.Close()
	}
	<-done
	return err
}

// LocalBadHostname is like ConnectBadHostname and
// ConnectBadHostnameIgnored but runs over the loopback networks. Each
// case gets fresh networks.
func LocalBadHostname[C tlsapi.Connector, A tlsapi.Acceptor](
	t *testing.T, ctyp tlsapi.ConnectorType[C], atyp tlsapi.AcceptorType[A],
) {
	requireImplemented(t, ctyp, atyp)
	cases := []struct {
		name      string
		configure func(b tlsapi.ConnectorBuilder[C]) error
		domain    string
		success   bool
	}{{
		name:      "verified",
		configure: trustTestCA[C],
		domain:    "example.com",
	}, {
		name: "ignored",
		configure: func(b tlsapi.ConnectorBuilder[C]) error {
			if err := trustTestCA(b); err != nil {
				return err
			}
			return b.SetVerifyHostname(false)
		},
		domain:  "example.com",
		success: true,
	}, {
		name: "untrusted",
		configure: func(b tlsapi.ConnectorBuilder[C]) error {
			return b.SetVerifyHostname(false)
		},
		domain: ServerDomain,
	}}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ForEachNetwork(t, func(t *testing.T, network Network) {
				connector := newConnector(t, ctyp, tc.configure)
				acceptor := newAcceptor(t, atyp, nil)
				err := dialLoopback(network, connector, acceptor, tc.domain)
				if tc.success && err != nil {
					t.Fatal(err)
				}
				if !tc.success && err == nil {
					t.Fatal("expected an error here")
				}
			})
		})
	}
}

// closeTracker remembers whether Close was called.
type closeTracker struct {
	net.Conn
	closed chan struct{}
	once   sync.Once
}

func (c *closeTracker) Close() error {
	c.once.Do(func() { close(c.closed) })
	return c.Conn.Close()
}

// HandshakeTimeout checks that a handshake with a peer that never
// answers fails when the context expires and that the socket is closed.
func HandshakeTimeout[C tlsapi.Connector](t *testing.T, ctyp tlsapi.ConnectorType[C]) {
	requireImplemented(t, ctyp)
	connector := newConnector(t, ctyp, trustTestCA[C])
	network := NewOSNetwork()
	defer network.Close()
	listener, err := network.Listen()
	if err != nil {
		t.Fatal(err)
	}
	defer listener.Close()
	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			close(accepted)
			return
		}
		accepted <- conn
	}()
	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()
	conn, err := network.DialContext(ctx, listener.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	socket := &closeTracker{Conn: conn, closed: make(chan struct{})}
	stream, err := connector.Connect(ctx, ServerDomain, socket)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatal("not the error we expected", err)
	}
	if stream != nil {
		t.Fatal("expected nil stream")
	}
	select {
	case <-socket.closed:
	default:
		t.Fatal("the socket was not closed")
	}
	if peer := <-accepted; peer != nil {
		peer.Close()
	}
}

// BuilderSingleUse checks that a builder cannot be used after Build.
func BuilderSingleUse[C tlsapi.Connector](t *testing.T, ctyp tlsapi.ConnectorType[C]) {
	builder, err := ctyp.Builder()
	if errors.Is(err, tlsapi.ErrNotImplemented) {
		t.Skip("backend not implemented:", ctyp.Info())
	}
	if err != nil {
		t.Fatal(err)
	}
	if _, err := builder.Build(); err != nil {
		t.Fatal(err)
	}
	if _, err := builder.Build(); !errors.Is(err, tlsapi.ErrBuilderConsumed) {
		t.Fatal("not the error we expected", err)
	}
	if err := builder.SetVerifyHostname(false); !errors.Is(err, tlsapi.ErrBuilderConsumed) {
		t.Fatal("not the error we expected", err)
	}
	if err := builder.AddRootCertificate(Keys().CA); !errors.Is(err, tlsapi.ErrBuilderConsumed) {
		t.Fatal("not the error we expected", err)
	}
	if err := builder.SetALPNProtocols([]byte("h2")); !errors.Is(err, tlsapi.ErrBuilderConsumed) {
		t.Fatal("not the error we expected", err)
	}
}

// AcceptorBuilderSingleUse is like BuilderSingleUse for acceptors.
func AcceptorBuilderSingleUse[A tlsapi.Acceptor](t *testing.T, atyp tlsapi.AcceptorType[A]) {
	keys := Keys()
	builder, err := atyp.BuilderFromDERKeys(keys.Chain, keys.Key)
	if errors.Is(err, tlsapi.ErrNotImplemented) || errors.Is(err, tlsapi.ErrKeysUnsupported) {
		t.Skip("backend cannot build acceptors:", atyp.Info())
	}
	if err != nil {
		t.Fatal(err)
	}
	if _, err := builder.Build(); err != nil {
		t.Fatal(err)
	}
	if _, err := builder.Build(); !errors.Is(err, tlsapi.ErrBuilderConsumed) {
		t.Fatal("not the error we expected", err)
	}
	if err := builder.SetALPNProtocols([]byte("h2")); !errors.Is(err, tlsapi.ErrBuilderConsumed) {
		t.Fatal("not the error we expected", err)
	}
}

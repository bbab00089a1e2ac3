package resolver

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/miekg/dns"
	"github.com/ooni/tlsapi"
	"github.com/ooni/tlsapi/impl/stdtls"
	"github.com/ooni/tlsapi/tlsapitest"
)

// answer only knows about example.com.
func answer(query *dns.Msg) *dns.Msg {
	reply := new(dns.Msg)
	reply.SetReply(query)
	q := query.Question[0]
	switch {
	case q.Name != "example.com.":
		reply.Rcode = dns.RcodeNameError
	case q.Qtype == dns.TypeA:
		rr, err := dns.NewRR("example.com. 300 IN A 10.0.0.1")
		if err != nil {
			panic(err)
		}
		reply.Answer = append(reply.Answer, rr)
	case q.Qtype == dns.TypeAAAA:
		rr, err := dns.NewRR("example.com. 300 IN AAAA 2001:db8::1")
		if err != nil {
			panic(err)
		}
		reply.Answer = append(reply.Answer, rr)
	}
	return reply
}

func startUDPServer(t *testing.T) string {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	started := make(chan struct{})
	server := &dns.Server{
		PacketConn: pc,
		Handler: dns.HandlerFunc(func(w dns.ResponseWriter, query *dns.Msg) {
			w.WriteMsg(answer(query))
		}),
		NotifyStartedFunc: func() { close(started) },
	}
	go server.ActivateAndServe()
	<-started
	t.Cleanup(func() { server.Shutdown() })
	return pc.LocalAddr().String()
}

func startTLSServer(t *testing.T) string {
	keys := tlsapitest.Keys()
	builder, err := stdtls.AcceptorType{}.BuilderFromDERKeys(keys.Chain, keys.Key)
	if err != nil {
		t.Fatal(err)
	}
	acceptor, err := builder.Build()
	if err != nil {
		t.Fatal(err)
	}
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { listener.Close() })
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				stream, err := tlsapi.AcceptWithSocket(ctx, acceptor, conn)
				if err != nil {
					return
				}
				defer stream.Close()
				co := &dns.Conn{Conn: stream}
				query, err := co.ReadMsg()
				if err != nil {
					return
				}
				co.WriteMsg(answer(query))
			}()
		}
	}()
	return listener.Addr().String()
}

func newTestConnector(t *testing.T) *stdtls.Connector {
	builder, err := stdtls.NewConnectorBuilder()
	if err != nil {
		t.Fatal(err)
	}
	if err := builder.AddRootCertificate(tlsapitest.Keys().CA); err != nil {
		t.Fatal(err)
	}
	connector, err := builder.Build()
	if err != nil {
		t.Fatal(err)
	}
	return connector
}

var expectAddrs = []string{"10.0.0.1", "2001:db8::1"}

func TestLookupHostUDP(t *testing.T) {
	client := NewUDP(startUDPServer(t))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	addrs, err := client.LookupHost(ctx, "example.com")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(expectAddrs, addrs); diff != "" {
		t.Fatal(diff)
	}
}

func TestLookupHostUDPNameError(t *testing.T) {
	client := NewUDP(startUDPServer(t))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	addrs, err := client.LookupHost(ctx, "example.org")
	if !errors.Is(err, ErrQueryFailed) {
		t.Fatal("not the error we expected", err)
	}
	if addrs != nil {
		t.Fatal("expected nil addrs")
	}
}

func TestLookupHostTLS(t *testing.T) {
	dialer := &net.Dialer{}
	client := NewTLS(newTestConnector(t), dialer.DialContext, startTLSServer(t), tlsapitest.ServerDomain)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	addrs, err := client.LookupHost(ctx, "example.com")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(expectAddrs, addrs); diff != "" {
		t.Fatal(diff)
	}
}

func TestLookupHostTLSBadDomain(t *testing.T) {
	dialer := &net.Dialer{}
	client := NewTLS(newTestConnector(t), dialer.DialContext, startTLSServer(t), "dns.example.org")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	addrs, err := client.LookupHost(ctx, "example.com")
	var tlsErr *tlsapi.Error
	if !errors.As(err, &tlsErr) || tlsErr.Kind() != tlsapi.KindBackend {
		t.Fatal("not the error we expected", err)
	}
	if addrs != nil {
		t.Fatal("expected nil addrs")
	}
}

func TestLookupHostDialFailure(t *testing.T) {
	expected := errors.New("mocked error")
	dial := func(ctx context.Context, network, address string) (net.Conn, error) {
		return nil, expected
	}
	client := NewTLS(newTestConnector(t), dial, "127.0.0.1:853", "dns.example.com")
	addrs, err := client.LookupHost(context.Background(), "example.com")
	if !errors.Is(err, expected) {
		t.Fatal("not the error we expected", err)
	}
	if addrs != nil {
		t.Fatal("expected nil addrs")
	}
}

func TestLookupHostIPAddress(t *testing.T) {
	client := &Client{exchange: func(ctx context.Context, query *dns.Msg) (*dns.Msg, error) {
		panic("should not be called")
	}}
	addrs, err := client.LookupHost(context.Background(), "1.1.1.1")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"1.1.1.1"}, addrs); diff != "" {
		t.Fatal(diff)
	}
}

func TestLookupHostResult(t *testing.T) {
	errA := errors.New("a failed")
	errAAAA := errors.New("aaaa failed")
	if _, err := lookupHostResult(nil, errA, errAAAA); !errors.Is(err, errA) {
		t.Fatal("not the error we expected")
	}
	if _, err := lookupHostResult(nil, nil, errAAAA); !errors.Is(err, errAAAA) {
		t.Fatal("not the error we expected")
	}
	if _, err := lookupHostResult(nil, nil, nil); !errors.Is(err, ErrNoResponse) {
		t.Fatal("not the error we expected")
	}
	addrs, err := lookupHostResult([]string{"10.0.0.1"}, errA, nil)
	if err != nil || len(addrs) != 1 {
		t.Fatal("unexpected result")
	}
}

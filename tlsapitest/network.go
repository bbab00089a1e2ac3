package tlsapitest

import (
	"context"
	"net"
	"testing"

	"github.com/apex/log"
	"github.com/m-lab/go/rtx"
	"github.com/ooni/netem"
)

// Network is where loopback scenarios run. The scenarios do not know
// which network stack they are using.
type Network interface {
	// Listen returns a listener for the test server.
	Listen() (net.Listener, error)

	// DialContext connects to the address of a listener.
	DialContext(ctx context.Context, address string) (net.Conn, error)

	// Close releases the resources used by the network.
	Close() error
}

// ForEachNetwork runs fn once for every network stack: the one of the
// operating system and the userspace one provided by netem.
func ForEachNetwork(t *testing.T, fn func(t *testing.T, network Network)) {
	factories := []struct {
		name string
		new  func() Network
	}{{
		name: "os",
		new:  NewOSNetwork,
	}, {
		name: "netem",
		new:  NewNetemNetwork,
	}}
	for _, f := range factories {
		t.Run(f.name, func(t *testing.T) {
			network := f.new()
			defer network.Close()
			fn(t, network)
		})
	}
}

type osNetwork struct {
	dialer *net.Dialer
}

// NewOSNetwork returns the operating system network listening on
// the loopback interface.
func NewOSNetwork() Network {
	return &osNetwork{dialer: &net.Dialer{}}
}

func (n *osNetwork) Listen() (net.Listener, error) {
	return net.Listen("tcp", "127.0.0.1:0")
}

func (n *osNetwork) DialContext(ctx context.Context, address string) (net.Conn, error) {
	return n.dialer.DialContext(ctx, "tcp", address)
}

func (n *osNetwork) Close() error {
	return nil
}

const (
	netemClientAddress = "10.0.0.2"
	netemServerAddress = "10.0.0.1"
)

type netemNetwork struct {
	client   *netem.UNetStack
	server   *netem.UNetStack
	topology *netem.StarTopology
}

// NewNetemNetwork returns a star topology with a client and a server
// host, each with its own userspace TCP/IP stack.
func NewNetemNetwork() Network {
	topology := netem.MustNewStarTopology(log.Log)
	server, err := topology.AddHost(netemServerAddress, netemServerAddress, &netem.LinkConfig{})
	rtx.Must(err, "cannot add the server host")
	client, err := topology.AddHost(netemClientAddress, netemServerAddress, &netem.LinkConfig{})
	rtx.Must(err, "cannot add the client host")
	return &netemNetwork{client: client, server: server, topology: topology}
}

func (n *netemNetwork) Listen() (net.Listener, error) {
	listener, err := n.server.ListenTCP("tcp", &net.TCPAddr{
		IP: net.ParseIP(netemServerAddress),
	})
	if err != nil {
		return nil, err
	}
	return listener, nil
}

func (n *netemNetwork) DialContext(ctx context.Context, address string) (net.Conn, error) {
	return n.client.DialContext(ctx, "tcp", address)
}

func (n *netemNetwork) Close() error {
	n.topology.Close()
	return nil
}

// Package resolver is a simplistic DNS client where we manually create
// and submit queries using github.com/miekg/dns. Queries are sent either
// over UDP or over TLS using any tlsapi.Connector.
package resolver

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/miekg/dns"
	"github.com/ooni/tlsapi"
	"github.com/ooni/tlsapi/internal/retry"
)

// ErrQueryFailed indicates that the server returned an error rcode.
var ErrQueryFailed = errors.New("resolver: query failed")

// ErrNoResponse indicates that no address was returned.
var ErrNoResponse = errors.New("resolver: no response returned")

// DialContextFunc is the type of net.Dialer.DialContext.
type DialContextFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Resolver resolves domain names.
type Resolver interface {
	LookupHost(ctx context.Context, hostname string) ([]string, error)
}

var _ Resolver = &net.Resolver{}

// Client is a DNS client.
type Client struct {
	exchange func(ctx context.Context, query *dns.Msg) (*dns.Msg, error)
}

var _ Resolver = &Client{}

// NewUDP returns a client sending queries to the server at address
// (e.g. "8.8.8.8:53") over UDP. Queries that fail are retried.
func NewUDP(address string) *Client {
	client := &dns.Client{Net: "udp", Timeout: 2 * time.Second}
	return &Client{exchange: func(ctx context.Context, query *dns.Msg) (reply *dns.Msg, err error) {
		err = retry.Retry(ctx, func() (err error) {
			reply, _, err = client.ExchangeContext(ctx, query, address)
			return
		})
		return
	}}
}

// NewTLS returns a client using DNS over TLS. Each query uses a new
// connection to address, established using dial and then connector,
// which verifies the certificate against domain.
func NewTLS(connector tlsapi.Connector, dial DialContextFunc, address, domain string) *Client {
	client := &dns.Client{Net: "tcp"}
	return &Client{exchange: func(ctx context.Context, query *dns.Msg) (*dns.Msg, error) {
		conn, err := dial(ctx, "tcp", address)
		if err != nil {
			return nil, err
		}
		stream, err := tlsapi.ConnectWithSocket(ctx, connector, domain, conn)
		if err != nil {
			return nil, err
		}
		defer stream.Close()
		reply, _, err := client.ExchangeWithConnContext(ctx, query, &dns.Conn{Conn: stream})
		return reply, err
	}}
}

// LookupHost returns the IPv4 and IPv6 addresses of hostname.
func (c *Client) LookupHost(ctx context.Context, hostname string) ([]string, error) {
	if net.ParseIP(hostname) != nil {
		return []string{hostname}, nil
	}
	var addrs []string
	reply, errA := c.roundTrip(ctx, newQuery(hostname, dns.TypeA))
	if errA == nil {
		for _, answer := range reply.Answer {
			if rra, ok := answer.(*dns.A); ok {
				addrs = append(addrs, rra.A.String())
			}
		}
	}
	reply, errAAAA := c.roundTrip(ctx, newQuery(hostname, dns.TypeAAAA))
	if errAAAA == nil {
		for _, answer := range reply.Answer {
			if rra, ok := answer.(*dns.AAAA); ok {
				addrs = append(addrs, rra.AAAA.String())
			}
		}
	}
	return lookupHostResult(addrs, errA, errAAAA)
}

func lookupHostResult(addrs []string, errA, errAAAA error) ([]string, error) {
	if len(addrs) > 0 {
		return addrs, nil
	}
	if errA != nil {
		return nil, errA
	}
	if errAAAA != nil {
		return nil, errAAAA
	}
	return nil, ErrNoResponse
}

func newQuery(hostname string, qtype uint16) *dns.Msg {
	query := new(dns.Msg)
	query.SetQuestion(dns.Fqdn(hostname), qtype)
	query.RecursionDesired = true
	return query
}

func (c *Client) roundTrip(ctx context.Context, query *dns.Msg) (*dns.Msg, error) {
	reply, err := c.exchange(ctx, query)
	if err != nil {
		return nil, err
	}
	if reply.Rcode != dns.RcodeSuccess {
		return nil, ErrQueryFailed
	}
	return reply, nil
}

// tlsconnect downloads a resource over TLS using any of the backends.
//
// Usage:
//
//	tlsconnect -address example.com:443 [-backend utls] [-alpn h2,http/1.1]
//
//	tlsconnect -help
//
// Examples:
//
//	./tlsconnect -address example.com:443 -backend utls -alpn h2
//	./tlsconnect -address 1.1.1.1:443 -sni ooni.org -no-verify-hostname
//	./tlsconnect -address example.com:443 -dot-address dns.google:853
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/m-lab/go/rtx"
	oohttp "github.com/ooni/oohttp"
	"github.com/ooni/tlsapi"
	"github.com/ooni/tlsapi/backends"
	"github.com/ooni/tlsapi/cmd/common"
	"github.com/ooni/tlsapi/emitting"
	"github.com/ooni/tlsapi/internal/resolver"
	"github.com/ooni/tlsapi/internal/tlsconf"
)

var (
	flagAddress    = flag.String("address", "example.com:443", "Address to connect to")
	flagALPN       = flag.String("alpn", "", "Comma separated list of ALPN protocols")
	flagBackend    = flag.String("backend", backends.Default, "One of: "+strings.Join(backends.Names(), ", "))
	flagCABundle   = flag.String("ca-bundle", "", "PEM file with additional root certificates")
	flagDNSAddress = flag.String("dns-address", "", "Resolve using this DNS over UDP server (e.g. 8.8.8.8:53)")
	flagDoTAddress = flag.String("dot-address", "", "Resolve using this DNS over TLS server (e.g. dns.google:853)")
	flagPath       = flag.String("path", "/", "Path of the resource to download over HTTP/1.1")
	flagNoVerify   = flag.Bool("no-verify-hostname", false, "Do not check the certificate hostname")
	flagSNI        = flag.String("sni", "", "Domain to use instead of the address host")
	flagTimeout    = flag.Duration("timeout", 30*time.Second, "Overall timeout")
)

// result is what we print on success.
type result struct {
	ALPN       string
	Backend    tlsapi.ImplInfo
	BodyLength int64 `json:",omitempty"`
	RemoteAddr string
	ServerName string
	Status     string `json:",omitempty"`
}

func main() {
	flag.Parse()
	if *common.FlagHelp {
		flag.CommandLine.SetOutput(os.Stdout)
		fmt.Printf("Usage: tlsconnect [flags]\n")
		flag.PrintDefaults()
		fmt.Printf("\nExamples:\n")
		fmt.Printf("%s\n", "  ./tlsconnect -address example.com:443 -backend utls -alpn h2")
		return
	}
	log.SetHandler(cli.Default)
	log.SetLevel(log.DebugLevel)
	config := &tlsconf.Config{
		ALPN:             splitALPN(*flagALPN),
		Backend:          *flagBackend,
		CABundle:         *flagCABundle,
		NoVerifyHostname: *flagNoVerify,
	}
	connector, err := config.NewConnector()
	rtx.Must(err, "cannot create connector")
	handler, err := common.NewHandler()
	rtx.Must(err, "cannot create events handler")
	ctx, cancel := context.WithTimeout(context.Background(), *flagTimeout)
	defer cancel()
	ctx = emitting.WithHandler(ctx, handler)
	hostname, port, err := net.SplitHostPort(*flagAddress)
	rtx.Must(err, "invalid address")
	domain := *flagSNI
	if domain == "" {
		domain = hostname
	}
	addrs, err := newResolver(config).LookupHost(ctx, hostname)
	rtx.Must(err, "cannot resolve %s", hostname)
	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(addrs[0], port))
	rtx.Must(err, "cannot connect to %s", addrs[0])
	stream, err := emitting.NewConnector(connector).Connect(ctx, domain, conn)
	rtx.Must(err, "TLS handshake failed")
	defer stream.Close()
	res := &result{
		ALPN:       string(stream.NegotiatedALPN()),
		Backend:    connector.Info(),
		RemoteAddr: stream.RemoteAddr().String(),
		ServerName: domain,
	}
	if res.ALPN == "" || res.ALPN == "http/1.1" {
		resp, err := download(stream, domain, *flagPath)
		rtx.Must(err, "HTTP request failed")
		res.Status, res.BodyLength = resp.Status, resp.ContentLength
	} else {
		log.Warnf("not downloading: %s is not HTTP/1.1", res.ALPN)
	}
	prettyprint(res)
}

// download sends a GET request for path over stream and reads the
// whole response body.
func download(stream *tlsapi.TLSStream, domain, path string) (*oohttp.Response, error) {
	req, err := oohttp.NewRequest("GET", "https://"+domain+path, nil)
	if err != nil {
		return nil, err
	}
	req.Close = true
	if err := req.Write(stream); err != nil {
		return nil, err
	}
	resp, err := oohttp.ReadResponse(bufio.NewReader(stream), req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	count, err := io.Copy(io.Discard, resp.Body)
	if err != nil {
		return nil, err
	}
	resp.ContentLength = count
	return resp, nil
}

// newResolver returns the resolver selected by the command line. The
// DNS over TLS resolver uses the same backend as the main connection
// but never uses ALPN nor disables hostname verification.
func newResolver(config *tlsconf.Config) resolver.Resolver {
	if *flagDoTAddress != "" {
		dotconfig := &tlsconf.Config{Backend: config.Backend, CABundle: config.CABundle}
		connector, err := dotconfig.NewConnector()
		rtx.Must(err, "cannot create DoT connector")
		domain, _, err := net.SplitHostPort(*flagDoTAddress)
		rtx.Must(err, "invalid DoT address")
		dialer := &net.Dialer{}
		return resolver.NewTLS(
			emitting.NewConnector(connector), dialer.DialContext, *flagDoTAddress, domain)
	}
	if *flagDNSAddress != "" {
		return resolver.NewUDP(*flagDNSAddress)
	}
	return &net.Resolver{}
}

func splitALPN(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func prettyprint(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	rtx.Must(err, "json.Marshal failed")
	fmt.Printf("%s\n", string(data))
}

// tlsserve accepts a single TLS connection and echoes back what the
// client sends until the client closes the connection.
//
// Usage:
//
//	tlsserve -cert cert.pem -key key.pem [-address 127.0.0.1:4443] [-backend utls]
//
//	tlsserve -pkcs12 server.p12 -pkcs12-password secret
//
//	tlsserve -help
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/m-lab/go/rtx"
	"github.com/ooni/tlsapi"
	"github.com/ooni/tlsapi/backends"
	"github.com/ooni/tlsapi/cmd/common"
	"github.com/ooni/tlsapi/emitting"
	"github.com/ooni/tlsapi/internal/tlsconf"
)

var (
	flagAddress        = flag.String("address", "127.0.0.1:4443", "Address to listen on")
	flagALPN           = flag.String("alpn", "", "Comma separated list of ALPN protocols")
	flagBackend        = flag.String("backend", backends.Default, "One of: "+strings.Join(backends.Names(), ", "))
	flagCert           = flag.String("cert", "cert.pem", "PEM file with the certificate chain")
	flagKey            = flag.String("key", "key.pem", "PEM file with the private key")
	flagPKCS12         = flag.String("pkcs12", "", "PKCS#12 file to use instead of -cert and -key")
	flagPKCS12Password = flag.String("pkcs12-password", "", "Password of the PKCS#12 file")
)

func main() {
	flag.Parse()
	if *common.FlagHelp {
		flag.CommandLine.SetOutput(os.Stdout)
		fmt.Printf("Usage: tlsserve [flags]\n")
		flag.PrintDefaults()
		return
	}
	log.SetHandler(cli.Default)
	log.SetLevel(log.DebugLevel)
	config := &tlsconf.Config{
		Backend:        *flagBackend,
		CertFile:       *flagCert,
		KeyFile:        *flagKey,
		PKCS12File:     *flagPKCS12,
		PKCS12Password: *flagPKCS12Password,
	}
	if *flagALPN != "" {
		config.ALPN = strings.Split(*flagALPN, ",")
	}
	acceptor, err := config.NewAcceptor()
	rtx.Must(err, "cannot create acceptor")
	handler, err := common.NewHandler()
	rtx.Must(err, "cannot create events handler")
	listener, err := net.Listen("tcp", *flagAddress)
	rtx.Must(err, "cannot listen")
	defer listener.Close()
	log.Infof("listening at %s using %s", listener.Addr(), acceptor.Info())
	ctx := emitting.WithHandler(context.Background(), handler)
	rtx.Must(serveOnce(ctx, listener, emitting.NewAcceptor(acceptor)), "serveOnce failed")
}

// serveOnce accepts a connection and echoes until EOF.
func serveOnce(ctx context.Context, listener net.Listener, acceptor tlsapi.Acceptor) error {
	conn, err := listener.Accept()
	if err != nil {
		return err
	}
	stream, err := acceptor.Accept(ctx, conn)
	if err != nil {
		return err
	}
	defer stream.Close()
	log.Infof("accepted %s with ALPN %q", stream.RemoteAddr(), stream.NegotiatedALPN())
	if _, err := io.Copy(stream, stream); err != nil {
		return err
	}
	return stream.CloseWrite()
}

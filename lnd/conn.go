package lnd

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/hex"
	"fmt"

	"github.com/lnwallet/walletd/config"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
)

const defaultHost = "localhost:10009"

// The cipher suites offered to the node's grpc endpoint, in preference
// order. Fixed at process level, not user-configurable.
var cipherSuites = []uint16{
	tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
	tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
	tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256,
	tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
	tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
	tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256,
}

// Conn is one live grpc connection bound to the credentials it was dialed
// with. It is owned exclusively by the connection manager and replaced,
// never mutated, when credentials change.
type Conn struct {
	conn   *grpc.ClientConn
	client *Client
}

// Dial builds a connection from the given credentials. The dial itself is
// lazy; construction only fails on unusable credentials or a malformed
// target.
func Dial(creds *config.Credentials) (*Conn, error) {
	if !creds.Complete() {
		return nil, fmt.Errorf("certificate and macaroon are required")
	}

	if _, err := hex.DecodeString(creds.Macaroon); err != nil {
		return nil, fmt.Errorf("failed to decode macaroon: %w", err)
	}

	cp := x509.NewCertPool()
	if !cp.AppendCertsFromPEM([]byte(creds.Cert)) {
		return nil, fmt.Errorf("credentials: failed to append certificates")
	}

	tlsCreds := credentials.NewTLS(&tls.Config{
		RootCAs:      cp,
		MinVersion:   tls.VersionTLS12,
		CipherSuites: cipherSuites,
	})

	host := creds.Host
	if host == "" {
		host = defaultHost
	}

	conn, err := grpc.Dial(
		host,
		grpc.WithTransportCredentials(tlsCreds),
		grpc.WithPerRPCCredentials(NewMacaroonCredential(creds.Macaroon)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %v: %w", host, err)
	}

	return &Conn{
		conn:   conn,
		client: NewClient(conn),
	}, nil
}

func (c *Conn) Client() *Client {
	return c.client
}

func (c *Conn) Close() {
	c.conn.Close()
}

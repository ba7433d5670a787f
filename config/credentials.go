package config

import (
	"encoding/hex"
	"encoding/pem"
	"fmt"
)

// Credentials are everything needed to reach the node's grpc api. They are
// read from the secret store on every connection (re)build, never from the
// process environment.
type Credentials struct {
	// The network location of the lightning node, e.g. `12.34.56.78:10009`
	// or `localhost:10009`.
	Host string

	// tls cert for the grpc api, pem encoded. Typically the contents of
	// `lnd-dir/tls.cert`.
	Cert string

	// hex encoded macaroon sent as a per-rpc credential.
	Macaroon string
}

// Complete reports whether a connection may be constructed from these
// credentials at all. The host may legitimately be empty (it defaults to
// localhost), the cert and macaroon may not.
func (c *Credentials) Complete() bool {
	return c != nil && c.Cert != "" && c.Macaroon != ""
}

func (c *Credentials) Validate() error {
	if !c.Complete() {
		return fmt.Errorf("certificate and macaroon are required")
	}

	if _, err := hex.DecodeString(c.Macaroon); err != nil {
		return fmt.Errorf("macaroon is not valid hex: %w", err)
	}

	block, _ := pem.Decode([]byte(c.Cert))
	if block == nil {
		return fmt.Errorf("certificate is not valid pem")
	}

	return nil
}

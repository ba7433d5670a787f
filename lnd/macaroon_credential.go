package lnd

import (
	"context"
)

// MacaroonCredential presents the node's macaroon as a per-rpc credential
// header.
type MacaroonCredential struct {
	MacaroonHex string
}

func NewMacaroonCredential(hex string) *MacaroonCredential {
	return &MacaroonCredential{
		MacaroonHex: hex,
	}
}

func (m *MacaroonCredential) RequireTransportSecurity() bool {
	return true
}

func (m *MacaroonCredential) GetRequestMetadata(ctx context.Context, uri ...string) (map[string]string, error) {
	md := make(map[string]string)
	md["macaroon"] = m.MacaroonHex
	return md, nil
}

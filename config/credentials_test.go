package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const testCert = `-----BEGIN CERTIFICATE-----
MIIBGDCBwAIJAKx/8aVXDaOUMA0GCSqGSIb3DQEBCwUAMBQxEjAQBgNVBAMMCWxv
-----END CERTIFICATE-----`

func Test_Credentials_Complete(t *testing.T) {
	tests := []struct {
		name     string
		creds    *Credentials
		expected bool
	}{
		{name: "nil", creds: nil, expected: false},
		{name: "empty", creds: &Credentials{}, expected: false},
		{name: "cert only", creds: &Credentials{Cert: testCert}, expected: false},
		{name: "macaroon only", creds: &Credentials{Macaroon: "ff"}, expected: false},
		{
			name:     "cert and macaroon",
			creds:    &Credentials{Cert: testCert, Macaroon: "ff"},
			expected: true,
		},
		{
			name: "host is optional",
			creds: &Credentials{
				Host:     "localhost:10009",
				Cert:     testCert,
				Macaroon: "ff",
			},
			expected: true,
		},
	}

	for _, tst := range tests {
		t.Run(tst.name, func(t *testing.T) {
			assert.Equal(t, tst.expected, tst.creds.Complete())
		})
	}
}

func Test_Credentials_Validate(t *testing.T) {
	valid := Credentials{Cert: testCert, Macaroon: "0201036c6e64"}
	assert.NoError(t, valid.Validate())

	badMacaroon := valid
	badMacaroon.Macaroon = "not hex"
	assert.Error(t, badMacaroon.Validate())

	badCert := valid
	badCert.Cert = "not pem"
	assert.Error(t, badCert.Validate())

	incomplete := Credentials{}
	assert.Error(t, incomplete.Validate())
}

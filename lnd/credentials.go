package lnd

import (
	"context"
	"crypto/x509"
	"fmt"

	"github.com/breez/lnsign/config"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
)

// MacaroonCredential attaches the macaroon to every rpc call.
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
	return map[string]string{
		"macaroon": m.MacaroonHex,
	}, nil
}

// dialOptions builds the tls and macaroon credentials for the node in conf.
func dialOptions(conf *config.LndConfig) ([]grpc.DialOption, error) {
	cert, err := config.ReadFileOrContents(conf.Cert)
	if err != nil {
		return nil, fmt.Errorf("failed to read lnd cert: %w", err)
	}

	mac, err := config.ReadHexFileOrContents(conf.Macaroon)
	if err != nil {
		return nil, fmt.Errorf("failed to read lnd macaroon: %w", err)
	}

	cp := x509.NewCertPool()
	if !cp.AppendCertsFromPEM(cert) {
		return nil, fmt.Errorf("credentials: failed to append certificates")
	}

	return []grpc.DialOption{
		grpc.WithTransportCredentials(credentials.NewClientTLSFromCert(cp, "")),
		grpc.WithPerRPCCredentials(NewMacaroonCredential(mac)),
	}, nil
}

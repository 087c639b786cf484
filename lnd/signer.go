package lnd

import (
	"context"
	"fmt"
	"log"

	"github.com/breez/lnsign/config"
	"github.com/breez/lnsign/lightning"
	"github.com/lightningnetwork/lnd/lnrpc"
	"google.golang.org/grpc"
)

// LndSigner delegates signing to an LND node. LND applies the signed message
// prefix and double hash itself and replies with the zbase32 signature.
type LndSigner struct {
	client lnrpc.LightningClient
	conn   *grpc.ClientConn
}

func NewLndSigner(conf *config.LndConfig) (*LndSigner, error) {
	opts, err := dialOptions(conf)
	if err != nil {
		return nil, err
	}

	// Address of an LND instance
	conn, err := grpc.Dial(conf.Address, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to LND gRPC: %w", err)
	}

	return NewLndSignerFromClient(lnrpc.NewLightningClient(conn), conn), nil
}

// NewLndSignerFromClient wraps an existing client. conn may be nil.
func NewLndSignerFromClient(client lnrpc.LightningClient, conn *grpc.ClientConn) *LndSigner {
	return &LndSigner{
		client: client,
		conn:   conn,
	}
}

func (s *LndSigner) SignMessage(
	ctx context.Context,
	message []byte,
) (*lightning.RecoverableSignature, error) {
	resp, err := s.client.SignMessage(ctx, &lnrpc.SignMessageRequest{
		Msg: message,
	})
	if err != nil {
		log.Printf("LND: client.SignMessage() error: %v", err)
		return nil, fmt.Errorf("LND: client.SignMessage() error: %w", err)
	}

	sig, err := lightning.DecodeSignature(resp.Signature)
	if err != nil {
		log.Printf("LND: SignMessage returned bad signature '%s': %v", resp.Signature, err)
		return nil, fmt.Errorf("LND: bad signature in reply: %w", err)
	}

	return sig, nil
}

func (s *LndSigner) Close() error {
	if s.conn == nil {
		return nil
	}

	return s.conn.Close()
}

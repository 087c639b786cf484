package cln

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/breez/lnsign/config"
	"github.com/breez/lnsign/lightning"
	"github.com/niftynei/glightning/glightning"
	"github.com/niftynei/glightning/jrpc2"
)

type rpcClient interface {
	Request(m jrpc2.Method, resp interface{}) error
}

type SignMessageRequest struct {
	Message string `json:"message"`
}

func (r *SignMessageRequest) Name() string {
	return "signmessage"
}

type SignMessageResponse struct {
	Signature string `json:"signature"`
	RecId     string `json:"recid"`
	ZBase     string `json:"zbase"`
}

// ClnSigner delegates signing to a CLN node over its lightning-rpc socket.
// CLN applies the signed message prefix and double hash itself.
type ClnSigner struct {
	socketPath string
	dial       func(socketPath string) (rpcClient, error)
	client     rpcClient
	mtx        sync.Mutex
}

func NewClnSigner(conf *config.ClnConfig) (*ClnSigner, error) {
	if _, _, err := splitSocketPath(conf.SocketPath); err != nil {
		return nil, err
	}

	return &ClnSigner{
		socketPath: conf.SocketPath,
		dial:       newGlightningClient,
	}, nil
}

func splitSocketPath(socketPath string) (string, string, error) {
	rpcFile := filepath.Base(socketPath)
	if rpcFile == "" || rpcFile == "." || rpcFile == "/" {
		return "", "", fmt.Errorf("invalid socketPath '%s'", socketPath)
	}
	lightningDir := filepath.Dir(socketPath)
	if lightningDir == "" || lightningDir == "." {
		return "", "", fmt.Errorf("invalid socketPath '%s'", socketPath)
	}

	return rpcFile, lightningDir, nil
}

func newGlightningClient(socketPath string) (rpcClient, error) {
	rpcFile, lightningDir, err := splitSocketPath(socketPath)
	if err != nil {
		return nil, err
	}

	client := glightning.NewLightning()
	client.SetTimeout(60)
	err = client.StartUp(rpcFile, lightningDir)
	if err != nil {
		return nil, err
	}

	return client, nil
}

func (s *ClnSigner) getClient() (rpcClient, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.client != nil {
		return s.client, nil
	}

	client, err := s.dial(s.socketPath)
	if err != nil {
		return nil, err
	}

	s.client = client
	return client, nil
}

// resetClient drops the connection so the next call reconnects.
func (s *ClnSigner) resetClient() {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.client = nil
}

// SignMessage sends the signmessage command to CLN. The glightning client does
// not support cancellation, ctx is only checked before the call.
func (s *ClnSigner) SignMessage(
	ctx context.Context,
	message []byte,
) (*lightning.RecoverableSignature, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client, err := s.getClient()
	if err != nil {
		return nil, fmt.Errorf("CLN: failed to connect: %w", err)
	}

	var resp SignMessageResponse
	err = client.Request(&SignMessageRequest{
		Message: string(message),
	}, &resp)
	if err != nil {
		log.Printf("CLN: client.Request(signmessage) error: %v", err)
		if _, ok := err.(*jrpc2.RpcError); !ok {
			s.resetClient()
		}
		return nil, fmt.Errorf("CLN: signmessage error: %w", err)
	}

	sig, err := parseSignMessageResponse(&resp)
	if err != nil {
		log.Printf("CLN: signmessage returned bad reply %+v: %v", resp, err)
		return nil, err
	}

	return sig, nil
}

// The hex fields of the reply are authoritative. The zbase field must encode
// the same envelope.
func parseSignMessageResponse(resp *SignMessageResponse) (*lightning.RecoverableSignature, error) {
	sigBytes, err := hex.DecodeString(resp.Signature)
	if err != nil {
		return nil, fmt.Errorf("CLN: invalid signature hex: %w", err)
	}
	if len(sigBytes) != 64 {
		return nil, fmt.Errorf("CLN: signature must be 64 bytes, got %d", len(sigBytes))
	}

	recid, err := hex.DecodeString(resp.RecId)
	if err != nil {
		return nil, fmt.Errorf("CLN: invalid recid hex: %w", err)
	}
	if len(recid) != 1 {
		return nil, fmt.Errorf("CLN: recid must be 1 byte, got %d", len(recid))
	}

	if recid[0] > 3 {
		return nil, fmt.Errorf("CLN: %w: %d", lightning.ErrInvalidRecoveryID, recid[0])
	}

	unchecked := &lightning.RecoverableSignature{RecoveryID: recid[0]}
	copy(unchecked.Signature[:], sigBytes)
	sig, err := lightning.ParseEnvelope(lightning.BuildEnvelope(unchecked))
	if err != nil {
		return nil, fmt.Errorf("CLN: invalid signature: %w", err)
	}

	if resp.ZBase != "" {
		zsig, err := lightning.DecodeSignature(resp.ZBase)
		if err != nil {
			return nil, fmt.Errorf("CLN: invalid zbase: %w", err)
		}
		if *zsig != *sig {
			return nil, fmt.Errorf("CLN: zbase does not match signature")
		}
	}

	return sig, nil
}

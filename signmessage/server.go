package signmessage

import (
	"context"
	"encoding/hex"
	"errors"
	"log"
	"time"

	"github.com/breez/lnsign/lightning"
	"github.com/breez/lnsign/rpc"
	"github.com/breez/lnsign/rpc/codes"
	"github.com/breez/lnsign/rpc/status"
	"github.com/breez/lnsign/zbase32"
)

type SignMessageRequest struct {
	Message string `json:"message"`
}

type SignMessageResponse struct {
	Signature string `json:"signature"`
	RecId     string `json:"recid"`
	ZBase     string `json:"zbase"`
}

type CheckMessageRequest struct {
	Message string `json:"message"`
	ZBase   string `json:"zbase"`
	PubKey  string `json:"pubkey"`
}

type CheckMessageResponse struct {
	Verified bool `json:"verified"`
}

type SignMessageServer interface {
	SignMessage(ctx context.Context, req *SignMessageRequest) (*SignMessageResponse, error)
	CheckMessage(ctx context.Context, req *CheckMessageRequest) (*CheckMessageResponse, error)
}

type server struct {
	signer  lightning.MessageSigner
	timeout time.Duration
}

func NewSignMessageServer(signer lightning.MessageSigner, timeout time.Duration) SignMessageServer {
	return &server{
		signer:  signer,
		timeout: timeout,
	}
}

func (s *server) SignMessage(
	ctx context.Context,
	req *SignMessageRequest,
) (*SignMessageResponse, error) {
	signed, err := lightning.SignMessage(ctx, s.signer, []byte(req.Message), s.timeout)
	if err != nil {
		switch {
		case errors.Is(err, lightning.ErrInputTooLarge):
			return nil, status.New(codes.InvalidParams, "Message must be < 64k").Err()
		case errors.Is(err, lightning.ErrSignerTimeout):
			return nil, status.New(codes.InternalError, "signer timeout").Err()
		case errors.Is(err, lightning.ErrSignerUnavailable):
			return nil, status.New(codes.InternalError, "signer unavailable").Err()
		default:
			return nil, err
		}
	}

	return &SignMessageResponse{
		Signature: signed.SignatureHex(),
		RecId:     signed.RecoveryIDHex(),
		ZBase:     signed.ZBase,
	}, nil
}

func (s *server) CheckMessage(
	ctx context.Context,
	req *CheckMessageRequest,
) (*CheckMessageResponse, error) {
	_, err := lightning.DecodeSignature(req.ZBase)
	if err != nil {
		return nil, signatureStatus(err).Err()
	}

	pk, err := hex.DecodeString(req.PubKey)
	if err != nil {
		return nil, status.New(codes.InvalidParams, "invalid pubkey").Err()
	}

	pubkey, err := lightning.ParsePubKey(pk)
	if err != nil {
		return nil, status.New(codes.InvalidParams, "invalid pubkey").Err()
	}

	verified, err := lightning.VerifyMessage([]byte(req.Message), req.ZBase, pubkey)
	if err != nil {
		log.Printf("CheckMessage: VerifyMessage error after successful decode: %v", err)
		return nil, signatureStatus(err).Err()
	}

	return &CheckMessageResponse{
		Verified: verified,
	}, nil
}

func signatureStatus(err error) *status.Status {
	switch {
	case errors.Is(err, zbase32.ErrInvalidEncoding):
		return status.New(codes.InvalidParams, "zbase is not valid zbase32")
	case errors.Is(err, lightning.ErrEnvelopeTooShort):
		return status.New(codes.InvalidParams, "zbase is too short")
	case errors.Is(err, lightning.ErrEnvelopeTooLong):
		return status.New(codes.InvalidParams, "zbase is too long")
	default:
		return status.New(codes.InvalidParams, "cannot parse zbase signature")
	}
}

func RegisterSignMessageServer(s rpc.ServiceRegistrar, p SignMessageServer) {
	s.RegisterService(
		&rpc.ServiceDesc{
			ServiceName: "signmessage",
			HandlerType: (*SignMessageServer)(nil),
			Methods: []rpc.MethodDesc{
				{
					MethodName: "signmessage",
					Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error) (interface{}, error) {
						in := new(SignMessageRequest)
						if err := dec(in); err != nil {
							return nil, err
						}
						return srv.(SignMessageServer).SignMessage(ctx, in)
					},
				},
				{
					MethodName: "checkmessage",
					Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error) (interface{}, error) {
						in := new(CheckMessageRequest)
						if err := dec(in); err != nil {
							return nil, err
						}
						return srv.(SignMessageServer).CheckMessage(ctx, in)
					},
				},
			},
		},
		p,
	)
}

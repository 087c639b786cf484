package lightning

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/breez/lnsign/zbase32"
)

var (
	ErrSignerUnavailable = errors.New("signer unavailable")
	ErrSignerTimeout     = errors.New("signer timeout")
)

// MessageSigner is the signing authority holding the node key. It receives the
// raw message and is expected to sign MessageDigest(message) itself.
type MessageSigner interface {
	SignMessage(ctx context.Context, message []byte) (*RecoverableSignature, error)
}

type SignedMessage struct {
	Signature  [64]byte
	RecoveryID byte
	ZBase      string
}

func (m *SignedMessage) SignatureHex() string {
	return hex.EncodeToString(m.Signature[:])
}

func (m *SignedMessage) RecoveryIDHex() string {
	return hex.EncodeToString([]byte{m.RecoveryID})
}

type signReply struct {
	sig *RecoverableSignature
	err error
}

// SignMessage asks signer for a signature over message and encodes the result.
// The call blocks until the signer replies, ctx is done or timeout expires. A
// zero timeout waits for the signer indefinitely.
//
// Any signer failure is returned as ErrSignerUnavailable, an expired timeout
// as ErrSignerTimeout. Oversized messages are rejected with ErrInputTooLarge
// before the signer is contacted.
func SignMessage(
	ctx context.Context,
	signer MessageSigner,
	message []byte,
	timeout time.Duration,
) (*SignedMessage, error) {
	if err := CheckMessageSize(message); err != nil {
		return nil, err
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	// Not every signer honors ctx, so the reply is awaited separately.
	replies := make(chan *signReply, 1)
	go func() {
		sig, err := signer.SignMessage(ctx, message)
		replies <- &signReply{sig: sig, err: err}
	}()

	var reply *signReply
	select {
	case reply = <-replies:
	case <-ctx.Done():
		reply = &signReply{err: ctx.Err()}
	}

	if reply.err != nil {
		if errors.Is(reply.err, context.DeadlineExceeded) {
			log.Printf("SignMessage: signer did not reply in time: %v", reply.err)
			return nil, ErrSignerTimeout
		}
		if errors.Is(reply.err, context.Canceled) {
			return nil, reply.err
		}

		log.Printf("SignMessage: signer error: %v", reply.err)
		return nil, fmt.Errorf("%w: %v", ErrSignerUnavailable, reply.err)
	}

	sig := reply.sig
	if sig == nil || sig.RecoveryID > maxRecoveryID {
		log.Printf("SignMessage: signer gave a bad reply: %+v", sig)
		return nil, fmt.Errorf("%w: malformed reply", ErrSignerUnavailable)
	}

	envelope := BuildEnvelope(sig)
	if _, err := recoverPubKey(MessageDigest(message), sig); err != nil {
		log.Printf("SignMessage: signer gave an unrecoverable signature %x", envelope)
		return nil, fmt.Errorf("%w: unrecoverable signature", ErrSignerUnavailable)
	}

	return &SignedMessage{
		Signature:  sig.Signature,
		RecoveryID: sig.RecoveryID,
		ZBase:      zbase32.EncodeToString(envelope),
	}, nil
}

package lightning

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
)

const (
	// EnvelopeSize is the header byte followed by the compact r || s
	// signature.
	EnvelopeSize = 65

	// The header byte is 31 + recovery id. This equals the btcec compact
	// signature magic (27) plus the compressed key flag (4).
	recoveryIDOffset = 31
	maxRecoveryID    = 3
)

var (
	ErrEnvelopeTooShort    = errors.New("signature envelope too short")
	ErrEnvelopeTooLong     = errors.New("signature envelope too long")
	ErrInvalidRecoveryID   = errors.New("invalid recovery id")
	ErrSignatureUnparsable = errors.New("cannot parse signature")
)

type RecoverableSignature struct {
	// Compact signature, r and s as 32 byte big endian values.
	Signature [64]byte

	// Recovery id in the range 0-3.
	RecoveryID byte
}

// EnvelopeLengthError is returned when a signature envelope does not have
// exactly EnvelopeSize bytes. It matches ErrEnvelopeTooShort or
// ErrEnvelopeTooLong.
type EnvelopeLengthError struct {
	Length int
}

func (e *EnvelopeLengthError) Short() bool {
	return e.Length < EnvelopeSize
}

func (e *EnvelopeLengthError) Error() string {
	kind := "long"
	if e.Short() {
		kind = "short"
	}
	return fmt.Sprintf("signature envelope is too %s: %d bytes", kind, e.Length)
}

func (e *EnvelopeLengthError) Is(target error) bool {
	if e.Short() {
		return target == ErrEnvelopeTooShort
	}
	return target == ErrEnvelopeTooLong
}

// BuildEnvelope serializes sig as 31 + recovery id followed by the compact
// signature. It panics if the recovery id is not in 0-3.
func BuildEnvelope(sig *RecoverableSignature) []byte {
	if sig.RecoveryID > maxRecoveryID {
		panic(fmt.Sprintf("lightning: recovery id %d out of range", sig.RecoveryID))
	}

	b := make([]byte, EnvelopeSize)
	b[0] = recoveryIDOffset + sig.RecoveryID
	copy(b[1:], sig.Signature[:])
	return b
}

// ParseEnvelope is the inverse of BuildEnvelope. Besides the layout it checks
// that r and s are below the curve order.
func ParseEnvelope(b []byte) (*RecoverableSignature, error) {
	if len(b) != EnvelopeSize {
		return nil, &EnvelopeLengthError{Length: len(b)}
	}

	if b[0] < recoveryIDOffset || b[0]-recoveryIDOffset > maxRecoveryID {
		return nil, fmt.Errorf("%w: header byte %d", ErrInvalidRecoveryID, b[0])
	}

	var r, s btcec.ModNScalar
	if overflow := r.SetByteSlice(b[1:33]); overflow {
		return nil, fmt.Errorf("%w: r is not below the curve order", ErrSignatureUnparsable)
	}
	if overflow := s.SetByteSlice(b[33:65]); overflow {
		return nil, fmt.Errorf("%w: s is not below the curve order", ErrSignatureUnparsable)
	}

	sig := &RecoverableSignature{
		RecoveryID: b[0] - recoveryIDOffset,
	}
	copy(sig.Signature[:], b[1:])
	return sig, nil
}

package lightning

import (
	"errors"
	"fmt"

	"github.com/breez/lnsign/zbase32"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

var ErrInvalidSignature = errors.New("invalid signature")
var ErrInvalidPubKey = errors.New("invalid pubkey")

// DecodeSignature decodes a zbase32 signature string into its envelope
// fields.
func DecodeSignature(signature string) (*RecoverableSignature, error) {
	// The signature should be zbase32 encoded
	b, err := zbase32.DecodeString(signature)
	if err != nil {
		return nil, fmt.Errorf("failed to decode signature: %w", err)
	}

	return ParseEnvelope(b)
}

// RecoverMessageSigner returns the public key that produced signature over
// message. ErrInvalidSignature is returned if no key can be recovered.
func RecoverMessageSigner(message []byte, signature string) (*btcec.PublicKey, error) {
	sig, err := DecodeSignature(signature)
	if err != nil {
		return nil, err
	}

	return recoverPubKey(MessageDigest(message), sig)
}

// VerifyMessage reports whether pubkey produced signature over message. A
// signature that is well formed but does not recover to pubkey is not an
// error.
func VerifyMessage(message []byte, signature string, pubkey *btcec.PublicKey) (bool, error) {
	if pubkey == nil {
		return false, ErrInvalidPubKey
	}

	sig, err := DecodeSignature(signature)
	if err != nil {
		return false, err
	}

	recovered, err := recoverPubKey(MessageDigest(message), sig)
	if err != nil {
		return false, nil
	}

	return recovered.IsEqual(pubkey), nil
}

// ParsePubKey parses a 33 byte compressed public key.
func ParsePubKey(b []byte) (*btcec.PublicKey, error) {
	if len(b) != btcec.PubKeyBytesLenCompressed {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidPubKey, btcec.PubKeyBytesLenCompressed, len(b))
	}

	pubkey, err := btcec.ParsePubKey(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPubKey, err)
	}

	return pubkey, nil
}

func recoverPubKey(digest []byte, sig *RecoverableSignature) (*btcec.PublicKey, error) {
	pubkey, wasCompressed, err := ecdsa.RecoverCompact(BuildEnvelope(sig), digest)
	if err != nil {
		return nil, ErrInvalidSignature
	}

	if !wasCompressed {
		return nil, ErrInvalidSignature
	}

	return pubkey, nil
}

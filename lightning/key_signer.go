package lightning

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

// KeySigner signs messages with a private key held in memory.
type KeySigner struct {
	key *btcec.PrivateKey
}

func NewKeySigner(key *btcec.PrivateKey) *KeySigner {
	return &KeySigner{key: key}
}

// NewKeySignerFromHex creates a KeySigner from a hex encoded 32 byte private
// key, as printed by the genkey command.
func NewKeySignerFromHex(privateKey string) (*KeySigner, error) {
	b, err := hex.DecodeString(privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}
	if len(b) != btcec.PrivKeyBytesLen {
		return nil, fmt.Errorf("private key must be %d bytes, got %d", btcec.PrivKeyBytesLen, len(b))
	}

	key, _ := btcec.PrivKeyFromBytes(b)
	return NewKeySigner(key), nil
}

func (s *KeySigner) PubKey() *btcec.PublicKey {
	return s.key.PubKey()
}

func (s *KeySigner) SignMessage(
	ctx context.Context,
	message []byte,
) (*RecoverableSignature, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sig, err := ecdsa.SignCompact(s.key, MessageDigest(message), true)
	if err != nil {
		return nil, fmt.Errorf("ecdsa.SignCompact() error: %w", err)
	}

	// SignCompact already emits 27 + 4 + recid as the header byte.
	return ParseEnvelope(sig)
}

package lightning

import (
	"errors"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// MaxMessageSize is the largest message accepted for signing.
const MaxMessageSize = 65535

var ErrInputTooLarge = errors.New("message must be < 64k")

// SignedMsgPrefix is prepended to every message before hashing.
var SignedMsgPrefix = []byte("Lightning Signed Message:")

func CheckMessageSize(message []byte) error {
	if len(message) > MaxMessageSize {
		return ErrInputTooLarge
	}

	return nil
}

// MessageDigest returns SHA256(SHA256(SignedMsgPrefix || message)).
func MessageDigest(message []byte) []byte {
	msg := make([]byte, 0, len(SignedMsgPrefix)+len(message))
	msg = append(msg, SignedMsgPrefix...)
	msg = append(msg, message...)
	return chainhash.DoubleHashB(msg)
}

// Package zbase32 implements the human-oriented base-32 encoding described in
// https://philzimmermann.com/docs/human-oriented-base-32-encoding.txt.
//
// Input is treated as a bitstream and split into quintets starting at the most
// significant bit. Encoded strings carry no padding characters.
package zbase32

import (
	"errors"
	"strconv"
)

// Alphabet maps quintet values 0-31 to characters.
const Alphabet = "ybndrfg8ejkmcpqxot1uwisza345h769"

const invalidQuintet = 0xff

var ErrInvalidEncoding = errors.New("zbase32: invalid encoding")

// decodeMap is indexed by character code. Characters outside the alphabet
// map to invalidQuintet.
var decodeMap [256]byte

func init() {
	for i := range decodeMap {
		decodeMap[i] = invalidQuintet
	}
	for i := 0; i < len(Alphabet); i++ {
		decodeMap[Alphabet[i]] = byte(i)
	}
}

// CorruptInputError is the offset of the first character that is not part of
// the alphabet.
type CorruptInputError int64

func (e CorruptInputError) Error() string {
	return "zbase32: illegal character at input byte " + strconv.FormatInt(int64(e), 10)
}

func (e CorruptInputError) Is(target error) bool {
	return target == ErrInvalidEncoding
}

// EncodedLen returns the length of the encoding of n source bytes.
func EncodedLen(n int) int {
	return (n*8 + 4) / 5
}

// DecodedLen returns the number of bytes decoded from n characters. Trailing
// bits that do not fill a whole byte are dropped.
func DecodedLen(n int) int {
	return n * 5 / 8
}

// Encode writes EncodedLen(len(src)) characters to dst. The last quintet is
// padded with zero bits on the right.
func Encode(dst, src []byte) int {
	var acc uint32
	var bits uint
	n := 0
	for _, b := range src {
		acc = acc<<8 | uint32(b)
		bits += 8
		for bits >= 5 {
			bits -= 5
			dst[n] = Alphabet[(acc>>bits)&0x1f]
			n++
		}
		acc &= 1<<bits - 1
	}
	if bits > 0 {
		dst[n] = Alphabet[(acc<<(5-bits))&0x1f]
		n++
	}
	return n
}

// EncodeToString returns the zbase32 encoding of src. It never fails.
func EncodeToString(src []byte) string {
	dst := make([]byte, EncodedLen(len(src)))
	n := Encode(dst, src)
	return string(dst[:n])
}

// Decode writes DecodedLen(len(src)) bytes to dst. It stops at the first
// character outside the alphabet and returns a CorruptInputError; dst must not
// be used in that case.
func Decode(dst, src []byte) (int, error) {
	var acc uint32
	var bits uint
	n := 0
	for i, c := range src {
		q := decodeMap[c]
		if q == invalidQuintet {
			return 0, CorruptInputError(i)
		}
		acc = acc<<5 | uint32(q)
		bits += 5
		if bits >= 8 {
			bits -= 8
			dst[n] = byte(acc >> bits)
			n++
		}
		acc &= 1<<bits - 1
	}
	return n, nil
}

// DecodeString returns the bytes represented by the zbase32 string s.
func DecodeString(s string) ([]byte, error) {
	dst := make([]byte, DecodedLen(len(s)))
	n, err := Decode(dst, []byte(s))
	if err != nil {
		return nil, err
	}
	return dst[:n], nil
}

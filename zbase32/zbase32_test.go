package zbase32

import (
	"bytes"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	tv42 "github.com/tv42/zbase32"
)

func TestEncodeKnownValues(t *testing.T) {
	tests := []struct {
		in  []byte
		out string
	}{
		{in: []byte{}, out: ""},
		{in: []byte{0x00}, out: "yy"},
		{in: []byte{0xff}, out: "9h"},
		{in: []byte{0x00, 0x00, 0x00, 0x00, 0x00}, out: "yyyyyyyy"},
		{in: []byte{0xff, 0xff, 0xff, 0xff, 0xff}, out: "99999999"},
		{in: []byte{0x08, 0x42, 0x10, 0x84, 0x21}, out: "bbbbbbbb"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.out, EncodeToString(tt.in))
	}
}

func TestDecodeKnownValues(t *testing.T) {
	b, err := DecodeString("9h")
	assert.NoError(t, err)
	assert.Equal(t, []byte{0xff}, b)

	b, err = DecodeString("bbbbbbbb")
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x08, 0x42, 0x10, 0x84, 0x21}, b)

	b, err = DecodeString("")
	assert.NoError(t, err)
	assert.Len(t, b, 0)
}

func TestRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for n := 0; n <= 200; n++ {
		for i := 0; i < 10; i++ {
			in := make([]byte, n)
			r.Read(in)
			enc := EncodeToString(in)
			dec, err := DecodeString(enc)
			assert.NoError(t, err)
			if !bytes.Equal(in, dec) {
				t.Fatalf("round trip failed for %x: got %x", in, dec)
			}
		}
	}
}

func TestEncodeAlphabetAndLength(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for n := 0; n <= 100; n++ {
		in := make([]byte, n)
		r.Read(in)
		enc := EncodeToString(in)
		assert.Equal(t, (8*n+4)/5, len(enc))
		assert.Equal(t, EncodedLen(n), len(enc))
		for _, c := range enc {
			assert.True(t, strings.ContainsRune(Alphabet, c), "unexpected character %q", c)
		}
	}
}

func TestEnvelopeSizedLength(t *testing.T) {
	assert.Equal(t, 104, EncodedLen(65))
	assert.Equal(t, 65, DecodedLen(104))
}

func TestDecodeDropsTrailingBits(t *testing.T) {
	// 3 characters carry 15 bits: one full byte and 7 leftover bits.
	b, err := DecodeString("999")
	assert.NoError(t, err)
	assert.Equal(t, []byte{0xff}, b)

	for n := 0; n < 50; n++ {
		b, err := DecodeString(strings.Repeat("y", n))
		assert.NoError(t, err)
		assert.Len(t, b, n*5/8)
	}
}

func TestDecodeInvalidCharacter(t *testing.T) {
	tests := []struct {
		in     string
		offset int64
	}{
		{in: "0", offset: 0},
		{in: "yy0", offset: 2},
		{in: "ybl", offset: 2},
		{in: "ybndrfg8v", offset: 8},
		{in: "Ybnd", offset: 0},
		{in: "yb nd", offset: 2},
		{in: "yb2y0y", offset: 2},
		{in: "yy\xff", offset: 2},
	}

	for _, tt := range tests {
		b, err := DecodeString(tt.in)
		assert.Nil(t, b)
		assert.True(t, errors.Is(err, ErrInvalidEncoding), "input %q", tt.in)

		var corrupt CorruptInputError
		if assert.True(t, errors.As(err, &corrupt)) {
			assert.Equal(t, tt.offset, int64(corrupt), "input %q", tt.in)
		}
	}
}

func TestAlphabetIsAPermutation(t *testing.T) {
	assert.Len(t, Alphabet, 32)
	seen := make(map[byte]bool)
	for i := 0; i < len(Alphabet); i++ {
		c := Alphabet[i]
		assert.False(t, seen[c], "duplicate character %q", c)
		seen[c] = true
		assert.Equal(t, byte(i), decodeMap[c])
	}

	valid := 0
	for _, q := range decodeMap {
		if q != invalidQuintet {
			valid++
		}
	}
	assert.Equal(t, 32, valid)
}

func TestInteropWithTv42(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for n := 0; n <= 100; n++ {
		in := make([]byte, n)
		r.Read(in)
		assert.Equal(t, tv42.EncodeToString(in), EncodeToString(in))
	}

	// Signature envelopes are 65 bytes, which is a whole number of quintets.
	for i := 0; i < 20; i++ {
		in := make([]byte, 65)
		r.Read(in)
		enc := tv42.EncodeToString(in)
		dec, err := DecodeString(enc)
		assert.NoError(t, err)
		assert.Equal(t, in, dec)
	}
}

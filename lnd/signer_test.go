package lnd

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/breez/lnsign/config"
	"github.com/breez/lnsign/lightning"
	"github.com/lightningnetwork/lnd/lnrpc"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc"
)

type mockLightningClient struct {
	lnrpc.LightningClient
	req  *lnrpc.SignMessageRequest
	resp *lnrpc.SignMessageResponse
	err  error
}

func (m *mockLightningClient) SignMessage(
	ctx context.Context,
	in *lnrpc.SignMessageRequest,
	opts ...grpc.CallOption,
) (*lnrpc.SignMessageResponse, error) {
	m.req = in
	return m.resp, m.err
}

func newKeySigner(t *testing.T) *lightning.KeySigner {
	s, err := lightning.NewKeySignerFromHex("22a47fa09a223f2aa079edf85a7c2d4f8720ee63e502ee2869afab7de234b80c")
	assert.NoError(t, err)
	return s
}

func TestSignMessage(t *testing.T) {
	key := newKeySigner(t)
	expected, err := lightning.SignMessage(context.Background(), key, []byte("hello"), time.Second)
	assert.NoError(t, err)

	m := &mockLightningClient{
		resp: &lnrpc.SignMessageResponse{Signature: expected.ZBase},
	}
	s := NewLndSignerFromClient(m, nil)

	signed, err := lightning.SignMessage(context.Background(), s, []byte("hello"), time.Second)
	assert.NoError(t, err)
	assert.Equal(t, []byte("hello"), m.req.Msg)
	assert.Equal(t, expected.ZBase, signed.ZBase)
	assert.Equal(t, expected.RecoveryID, signed.RecoveryID)

	ok, err := lightning.VerifyMessage([]byte("hello"), signed.ZBase, key.PubKey())
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, s.Close())
}

func TestSignMessage_RpcError(t *testing.T) {
	m := &mockLightningClient{err: errors.New("unavailable")}
	s := NewLndSignerFromClient(m, nil)

	_, err := s.SignMessage(context.Background(), []byte("hello"))
	assert.Error(t, err)

	_, err = lightning.SignMessage(context.Background(), s, []byte("hello"), time.Second)
	assert.ErrorIs(t, err, lightning.ErrSignerUnavailable)
}

func TestSignMessage_BadReply(t *testing.T) {
	m := &mockLightningClient{
		resp: &lnrpc.SignMessageResponse{Signature: "not zbase!"},
	}
	s := NewLndSignerFromClient(m, nil)

	_, err := lightning.SignMessage(context.Background(), s, []byte("hello"), time.Second)
	assert.ErrorIs(t, err, lightning.ErrSignerUnavailable)

	m.resp = &lnrpc.SignMessageResponse{Signature: "yyyy"}
	_, err = s.SignMessage(context.Background(), []byte("hello"))
	assert.ErrorIs(t, err, lightning.ErrEnvelopeTooShort)
}

func TestMacaroonCredential(t *testing.T) {
	c := NewMacaroonCredential("0201")
	assert.True(t, c.RequireTransportSecurity())

	md, err := c.GetRequestMetadata(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, map[string]string{"macaroon": "0201"}, md)
}

func TestDialOptions(t *testing.T) {
	_, err := dialOptions(&config.LndConfig{Address: "localhost:10009", Cert: "", Macaroon: "0201"})
	assert.ErrorContains(t, err, "failed to read lnd cert")

	_, err = dialOptions(&config.LndConfig{Address: "localhost:10009", Cert: "not a cert", Macaroon: "not hex"})
	assert.ErrorContains(t, err, "failed to read lnd macaroon")

	_, err = dialOptions(&config.LndConfig{Address: "localhost:10009", Cert: "not a cert", Macaroon: "0201"})
	assert.ErrorContains(t, err, "failed to append certificates")

	_, err = NewLndSigner(&config.LndConfig{Address: "localhost:10009", Cert: "not a cert", Macaroon: "0201"})
	assert.Error(t, err)
}

package cln

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/breez/lnsign/config"
	"github.com/breez/lnsign/lightning"
	"github.com/niftynei/glightning/jrpc2"
	"github.com/stretchr/testify/assert"
)

type mockRpcClient struct {
	method string
	req    *SignMessageRequest
	resp   *SignMessageResponse
	err    error
}

func (m *mockRpcClient) Request(method jrpc2.Method, resp interface{}) error {
	m.method = method.Name()
	m.req = method.(*SignMessageRequest)
	if m.err != nil {
		return m.err
	}

	// Go through json like the real client does.
	b, err := json.Marshal(m.resp)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, resp)
}

func newTestSigner(m *mockRpcClient) (*ClnSigner, *int) {
	dials := 0
	s := &ClnSigner{
		socketPath: "/tmp/cln/lightning-rpc",
		dial: func(socketPath string) (rpcClient, error) {
			dials++
			return m, nil
		},
	}
	return s, &dials
}

func expectedSignature(t *testing.T, message string) *lightning.SignedMessage {
	key, err := lightning.NewKeySignerFromHex("22a47fa09a223f2aa079edf85a7c2d4f8720ee63e502ee2869afab7de234b80c")
	assert.NoError(t, err)

	signed, err := lightning.SignMessage(context.Background(), key, []byte(message), time.Second)
	assert.NoError(t, err)
	return signed
}

func replyFor(signed *lightning.SignedMessage) *SignMessageResponse {
	return &SignMessageResponse{
		Signature: signed.SignatureHex(),
		RecId:     signed.RecoveryIDHex(),
		ZBase:     signed.ZBase,
	}
}

func TestSignMessage(t *testing.T) {
	expected := expectedSignature(t, "hello")
	m := &mockRpcClient{resp: replyFor(expected)}
	s, _ := newTestSigner(m)

	signed, err := lightning.SignMessage(context.Background(), s, []byte("hello"), time.Second)
	assert.NoError(t, err)
	assert.Equal(t, "signmessage", m.method)
	assert.Equal(t, "hello", m.req.Message)
	assert.Equal(t, expected.ZBase, signed.ZBase)
}

func TestSignMessage_ReusesClient(t *testing.T) {
	m := &mockRpcClient{resp: replyFor(expectedSignature(t, "hello"))}
	s, dials := newTestSigner(m)

	for i := 0; i < 3; i++ {
		_, err := s.SignMessage(context.Background(), []byte("hello"))
		assert.NoError(t, err)
	}
	assert.Equal(t, 1, *dials)
}

func TestSignMessage_ReconnectsAfterTransportError(t *testing.T) {
	m := &mockRpcClient{err: errors.New("broken pipe")}
	s, dials := newTestSigner(m)

	_, err := s.SignMessage(context.Background(), []byte("hello"))
	assert.Error(t, err)

	m.err = nil
	m.resp = replyFor(expectedSignature(t, "hello"))
	_, err = s.SignMessage(context.Background(), []byte("hello"))
	assert.NoError(t, err)
	assert.Equal(t, 2, *dials)
}

func TestSignMessage_RpcErrorKeepsClient(t *testing.T) {
	m := &mockRpcClient{err: &jrpc2.RpcError{Code: -32602, Message: "bad"}}
	s, dials := newTestSigner(m)

	_, err := lightning.SignMessage(context.Background(), s, []byte("hello"), time.Second)
	assert.ErrorIs(t, err, lightning.ErrSignerUnavailable)

	_, err = s.SignMessage(context.Background(), []byte("hello"))
	assert.Error(t, err)
	assert.Equal(t, 1, *dials)
}

func TestSignMessage_Canceled(t *testing.T) {
	m := &mockRpcClient{}
	s, dials := newTestSigner(m)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.SignMessage(ctx, []byte("hello"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, *dials)
}

func TestParseSignMessageResponse(t *testing.T) {
	signed := expectedSignature(t, "hello")
	good := replyFor(signed)

	sig, err := parseSignMessageResponse(good)
	assert.NoError(t, err)
	assert.Equal(t, signed.Signature, sig.Signature)
	assert.Equal(t, signed.RecoveryID, sig.RecoveryID)

	noZbase := *good
	noZbase.ZBase = ""
	_, err = parseSignMessageResponse(&noZbase)
	assert.NoError(t, err)

	tests := []func(r *SignMessageResponse){
		func(r *SignMessageResponse) { r.Signature = "zz" },
		func(r *SignMessageResponse) { r.Signature = r.Signature[:126] },
		func(r *SignMessageResponse) { r.RecId = "" },
		func(r *SignMessageResponse) { r.RecId = "0102" },
		func(r *SignMessageResponse) { r.RecId = "04" },
		func(r *SignMessageResponse) { r.ZBase = "0000" },
		func(r *SignMessageResponse) { r.ZBase = expectedSignature(t, "world").ZBase },
	}
	for i, mutate := range tests {
		r := *good
		mutate(&r)
		_, err := parseSignMessageResponse(&r)
		assert.Error(t, err, "case %d", i)
	}
}

func TestNewClnSigner(t *testing.T) {
	_, err := NewClnSigner(&config.ClnConfig{SocketPath: "lightning-rpc"})
	assert.Error(t, err)

	_, err = NewClnSigner(&config.ClnConfig{SocketPath: ""})
	assert.Error(t, err)

	s, err := NewClnSigner(&config.ClnConfig{SocketPath: "/root/.lightning/bitcoin/lightning-rpc"})
	assert.NoError(t, err)
	assert.Equal(t, "/root/.lightning/bitcoin/lightning-rpc", s.socketPath)
}

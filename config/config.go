package config

type Config struct {
	// Maximum time to wait for the signer to reply, as a golang duration
	// string. Defaults to 30s. Set to "0" to wait indefinitely.
	SignerTimeout string `json:"signerTimeout,omitempty"`

	// Maximum number of rpc requests handled at the same time. Defaults to
	// 25.
	MaxSimultaneousRequests int `json:"maxSimultaneousRequests,omitempty"`

	// The signing authority holding the node key. Exactly one of its fields
	// must be set.
	Signer *SignerConfig `json:"signer"`
}

type SignerConfig struct {
	// Hex encoded private key to sign with. Meant for testing and for
	// identities that are not a lightning node. Can either be a file path or
	// the key itself.
	PrivateKey string `json:"privateKey,omitempty"`

	// Set this field to sign with an LND node.
	Lnd *LndConfig `json:"lnd,omitempty"`

	// Set this field to sign with a CLN node.
	Cln *ClnConfig `json:"cln,omitempty"`
}

type LndConfig struct {
	// Address to the grpc api.
	Address string `json:"address"`

	// tls cert for the grpc api. Can either be a file path or the cert
	// contents. Typically stored in `lnd-dir/tls.cert`.
	Cert string `json:"cert"`

	// macaroon to use. Can either be a file path or the hex encoded macaroon.
	// The macaroon needs the `message:write` permission, e.g.
	// `signer.macaroon` or `admin.macaroon`.
	Macaroon string `json:"macaroon"`
}

type ClnConfig struct {
	// File path to the cln lightning-rpc socket file. Find the path in
	// cln-dir/mainnet/lightning-rpc
	SocketPath string `json:"socketPath"`
}

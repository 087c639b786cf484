package main

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/urfave/cli"
)

var genKeyCommand = cli.Command{
	Name:   "genkey",
	Usage:  "Generate a private key for the signer.privateKey config field.",
	Action: genKey,
}

func genKey(cliCtx *cli.Context) error {
	p, err := btcec.NewPrivateKey()
	if err != nil {
		return fmt.Errorf("btcec.NewPrivateKey() error: %w", err)
	}
	fmt.Printf("privateKey=\"%x\"\n", p.Serialize())
	fmt.Printf("pubkey=\"%x\"\n", p.PubKey().SerializeCompressed())
	return nil
}

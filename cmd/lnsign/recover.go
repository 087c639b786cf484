package main

import (
	"encoding/hex"
	"fmt"

	"github.com/breez/lnsign/lightning"
	"github.com/urfave/cli"
)

var recoverCommand = cli.Command{
	Name:      "recover",
	Usage:     "Print the pubkey that made a zbase32 signature over a message.",
	ArgsUsage: "<message> <zbase>",
	Action:    recoverSigner,
}

type recoverResponse struct {
	PubKey string `json:"pubkey"`
}

func recoverSigner(cliCtx *cli.Context) error {
	if cliCtx.NArg() != 2 {
		return fmt.Errorf("expected exactly two arguments: <message> <zbase>")
	}

	pubkey, err := lightning.RecoverMessageSigner(
		[]byte(cliCtx.Args().Get(0)),
		cliCtx.Args().Get(1),
	)
	if err != nil {
		return fmt.Errorf("failed to recover signer: %w", err)
	}

	return printJson(&recoverResponse{
		PubKey: hex.EncodeToString(pubkey.SerializeCompressed()),
	})
}

package main

import (
	"context"
	"fmt"

	"github.com/breez/lnsign/signmessage"
	"github.com/urfave/cli"
)

var verifyCommand = cli.Command{
	Name:      "verify",
	Usage:     "Check that a zbase32 signature over a message was made by pubkey.",
	ArgsUsage: "<message> <zbase> <pubkey>",
	Action:    verify,
}

func verify(cliCtx *cli.Context) error {
	if cliCtx.NArg() != 3 {
		return fmt.Errorf("expected exactly three arguments: <message> <zbase> <pubkey>")
	}

	// Verification needs no signer.
	srv := signmessage.NewSignMessageServer(nil, 0)
	resp, err := srv.CheckMessage(context.Background(), &signmessage.CheckMessageRequest{
		Message: cliCtx.Args().Get(0),
		ZBase:   cliCtx.Args().Get(1),
		PubKey:  cliCtx.Args().Get(2),
	})
	if err != nil {
		return err
	}

	return printJson(resp)
}

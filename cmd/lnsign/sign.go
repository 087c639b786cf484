package main

import (
	"context"
	"fmt"

	"github.com/breez/lnsign/signmessage"
	"github.com/urfave/cli"
)

var signCommand = cli.Command{
	Name:      "sign",
	Usage:     "Sign a message with the configured signer.",
	ArgsUsage: "<message>",
	Flags: []cli.Flag{
		configFlag,
	},
	Action: sign,
}

func sign(cliCtx *cli.Context) error {
	if cliCtx.NArg() != 1 {
		return fmt.Errorf("expected exactly one argument: <message>")
	}

	conf, err := loadConfig(cliCtx)
	if err != nil {
		return err
	}

	timeout, err := conf.GetSignerTimeout()
	if err != nil {
		return err
	}

	signer, closeSigner, err := newSigner(conf.Signer)
	if err != nil {
		return err
	}
	defer closeSigner()

	srv := signmessage.NewSignMessageServer(signer, timeout)
	resp, err := srv.SignMessage(context.Background(), &signmessage.SignMessageRequest{
		Message: cliCtx.Args().Get(0),
	})
	if err != nil {
		return err
	}

	return printJson(resp)
}

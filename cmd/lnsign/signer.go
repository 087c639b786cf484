package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/breez/lnsign/cln"
	"github.com/breez/lnsign/config"
	"github.com/breez/lnsign/lightning"
	"github.com/breez/lnsign/lnd"
	"github.com/urfave/cli"
)

var configFlag = cli.StringFlag{
	Name:  "config",
	Usage: "path to the config json file. If not set, the json is read from the LNSIGN_CONFIG environment variable.",
}

func loadConfig(cliCtx *cli.Context) (*config.Config, error) {
	return config.Load(cliCtx.String(configFlag.Name), os.Getenv("LNSIGN_CONFIG"))
}

// newSigner creates the signing authority configured in conf. The returned
// close function releases the connection to the node, if any.
func newSigner(conf *config.SignerConfig) (lightning.MessageSigner, func(), error) {
	switch {
	case conf.PrivateKey != "":
		b, err := config.ReadFileOrContents(conf.PrivateKey)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read private key: %w", err)
		}

		signer, err := lightning.NewKeySignerFromHex(strings.TrimSpace(string(b)))
		if err != nil {
			return nil, nil, err
		}

		log.Printf("signing with local key %x", signer.PubKey().SerializeCompressed())
		return signer, func() {}, nil
	case conf.Lnd != nil:
		signer, err := lnd.NewLndSigner(conf.Lnd)
		if err != nil {
			return nil, nil, err
		}

		log.Printf("signing with lnd node at %s", conf.Lnd.Address)
		return signer, func() {
			if err := signer.Close(); err != nil {
				log.Printf("failed to close lnd connection: %v", err)
			}
		}, nil
	case conf.Cln != nil:
		signer, err := cln.NewClnSigner(conf.Cln)
		if err != nil {
			return nil, nil, err
		}

		log.Printf("signing with cln node at %s", conf.Cln.SocketPath)
		return signer, func() {}, nil
	default:
		return nil, nil, config.ErrNoSigner
	}
}

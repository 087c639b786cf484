package main

import (
	"log"
	"os"

	"github.com/breez/lnsign/build"
	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "lnsign"
	app.Version = build.GetVersion()
	app.Usage = "sign and verify messages the way lightning nodes do"
	app.Commands = []cli.Command{
		genKeyCommand,
		signCommand,
		verifyCommand,
		recoverCommand,
		serveCommand,
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

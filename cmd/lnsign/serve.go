package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/breez/lnsign/build"
	"github.com/breez/lnsign/rpc"
	"github.com/breez/lnsign/signmessage"
	"github.com/urfave/cli"
	"golang.org/x/sync/errgroup"
)

var serveCommand = cli.Command{
	Name:  "serve",
	Usage: "Serve signmessage and checkmessage json-rpc requests over stdin and stdout. Messages are separated by an empty line.",
	Flags: []cli.Flag{
		configFlag,
	},
	Action: serve,
}

func serve(cliCtx *cli.Context) error {
	log.Printf("Starting lnsign %s", build.GetVersion())
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

	s := rpc.NewServer(conf.GetMaxSimultaneousRequests())
	signmessage.RegisterSignMessageServer(s, signmessage.NewSignMessageServer(signer, timeout))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	transport := rpc.NewStdioTransport()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// The server stopping means stdin was closed. Stop everything else.
		defer cancel()
		err := s.Serve(ctx, transport)
		if err == nil {
			log.Printf("rpc server stopped.")
		} else {
			log.Printf("rpc server stopped with error: %v", err)
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Printf("Stopping.")
		return transport.Close()
	})

	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, os.ErrClosed) {
		return err
	}

	log.Printf("lnsign exited")
	return nil
}

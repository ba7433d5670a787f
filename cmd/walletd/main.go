package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/lnwallet/walletd"
	"github.com/lnwallet/walletd/build"
	"github.com/lnwallet/walletd/config"
	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "walletd"
	app.Version = build.GetTag() + " commit=" + build.GetRevision()
	app.Usage = "lightning wallet service for an LND node"
	app.Action = func(cliCtx *cli.Context) error {
		ctx, cancel := signalContext()
		defer cancel()
		return walletd.Main(ctx, config.LoadConfig())
	}
	app.Commands = []cli.Command{
		genKeyCommand,
		migrateCommand,
		setCredentialsCommand,
		testCredentialsCommand,
		balanceCommand,
		transactionsCommand,
		newAddressCommand,
		sendCoinsCommand,
		channelsCommand,
		openChannelCommand,
		closeChannelCommand,
		connectPeerCommand,
		nodeInfoCommand,
		addInvoiceCommand,
		payInvoiceCommand,
		historyCommand,
		rateCommand,
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		cancel()
	}()

	return ctx, cancel
}

// withApp builds the service stack for a one-shot command, with the
// connection built synchronously so the command sees the stored
// credentials.
func withApp(fn func(ctx context.Context, app *walletd.App) error) error {
	ctx, cancel := signalContext()
	defer cancel()

	app, err := walletd.NewApp(ctx, config.LoadConfig())
	if err != nil {
		return err
	}
	defer app.Close()

	app.Manager.Rebuild(ctx)
	return fn(ctx, app)
}

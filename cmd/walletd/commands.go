package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/lnwallet/walletd"
	"github.com/lnwallet/walletd/config"
	"github.com/lnwallet/walletd/lightning"
	"github.com/lnwallet/walletd/lnd"
	"github.com/urfave/cli"
)

var setCredentialsCommand = cli.Command{
	Name:  "setcredentials",
	Usage: "Store the node host, tls certificate and macaroon.",
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "host",
			Usage: "Network location of the node's grpc api, e.g. localhost:10009.",
		},
		cli.StringFlag{
			Name:     "cert",
			Usage:    "Path to the node's tls certificate, typically lnd-dir/tls.cert.",
			Required: true,
		},
		cli.StringFlag{
			Name:     "macaroon",
			Usage:    "Path to the macaroon to authenticate with, typically admin.macaroon.",
			Required: true,
		},
	},
	Action: func(cliCtx *cli.Context) error {
		cert, err := os.ReadFile(cliCtx.String("cert"))
		if err != nil {
			return fmt.Errorf("failed to read certificate: %w", err)
		}

		macaroon, err := os.ReadFile(cliCtx.String("macaroon"))
		if err != nil {
			return fmt.Errorf("failed to read macaroon: %w", err)
		}

		creds := &config.Credentials{
			Host:     cliCtx.String("host"),
			Cert:     string(cert),
			Macaroon: fmt.Sprintf("%x", macaroon),
		}

		return withApp(func(ctx context.Context, app *walletd.App) error {
			if !lnd.TestCredentials(ctx, creds) {
				return fmt.Errorf("credentials did not pass the test round trip")
			}

			return app.Credentials.SetCredentials(ctx, creds)
		})
	},
}

var testCredentialsCommand = cli.Command{
	Name:  "testcredentials",
	Usage: "Verify the stored credentials with one balance round trip.",
	Action: func(cliCtx *cli.Context) error {
		return withApp(func(ctx context.Context, app *walletd.App) error {
			creds, err := app.Credentials.Credentials(ctx)
			if err != nil {
				return err
			}

			if !lnd.TestCredentials(ctx, creds) {
				return fmt.Errorf("credentials did not pass the test round trip")
			}

			fmt.Println("credentials ok")
			return nil
		})
	},
}

var balanceCommand = cli.Command{
	Name:  "balance",
	Usage: "Show the on-chain and channel balances.",
	Action: func(cliCtx *cli.Context) error {
		return withApp(func(ctx context.Context, app *walletd.App) error {
			var onchain *lightning.WalletBalance
			var offchain int64
			err := lightning.Retry(ctx, lightning.DefaultAttempts, func() error {
				var err error
				onchain, err = app.Wallet.WalletBalance(ctx)
				if err != nil {
					return err
				}

				offchain, err = app.Wallet.Balance(ctx)
				return err
			})
			if err != nil {
				return err
			}

			fmt.Printf("on-chain: %d sat (confirmed %d, unconfirmed %d)\n",
				onchain.TotalSat, onchain.ConfirmedSat, onchain.UnconfirmedSat)
			fmt.Printf("channels: %d sat\n", offchain)
			return nil
		})
	},
}

var transactionsCommand = cli.Command{
	Name:  "transactions",
	Usage: "List on-chain transactions, most recent first.",
	Action: func(cliCtx *cli.Context) error {
		return withApp(func(ctx context.Context, app *walletd.App) error {
			var transactions []*lightning.Transaction
			err := lightning.Retry(ctx, lightning.DefaultAttempts, func() error {
				var err error
				transactions, err = app.Wallet.Transactions(ctx)
				return err
			})
			if err != nil {
				return err
			}

			for _, t := range transactions {
				fmt.Printf("%v  %10d sat  %d conf  %v\n",
					t.Timestamp.Format("2006-01-02 15:04"), t.AmountSat,
					t.NumConfirmations, t.TxHash)
			}
			return nil
		})
	},
}

var newAddressCommand = cli.Command{
	Name:  "newaddress",
	Usage: "Create a new wallet address.",
	Flags: []cli.Flag{
		cli.BoolFlag{
			Name:  "witness",
			Usage: "Create a native segwit address instead of a nested one.",
		},
	},
	Action: func(cliCtx *cli.Context) error {
		return withApp(func(ctx context.Context, app *walletd.App) error {
			var address string
			var err error
			if cliCtx.Bool("witness") {
				address, err = app.Wallet.NewWitnessAddress(ctx)
			} else {
				address, err = app.Wallet.NewAddress(ctx)
			}
			if err != nil {
				return err
			}

			fmt.Println(address)
			return nil
		})
	},
}

var sendCoinsCommand = cli.Command{
	Name:  "sendcoins",
	Usage: "Send an on-chain payment.",
	Flags: []cli.Flag{
		cli.StringFlag{Name: "addr", Required: true},
		cli.Int64Flag{Name: "amount", Usage: "Amount in satoshi.", Required: true},
		cli.Uint64Flag{Name: "sat-per-vbyte", Usage: "Fee rate. Estimated when omitted."},
	},
	Action: func(cliCtx *cli.Context) error {
		return withApp(func(ctx context.Context, app *walletd.App) error {
			if !confirm(fmt.Sprintf("send %d sat to %v?",
				cliCtx.Int64("amount"), cliCtx.String("addr"))) {
				return nil
			}

			txid, err := app.Wallet.SendCoins(ctx, cliCtx.String("addr"),
				cliCtx.Int64("amount"), cliCtx.Uint64("sat-per-vbyte"))
			if err != nil {
				return err
			}

			fmt.Printf("txid: %v\n", txid)
			return nil
		})
	},
}

var channelsCommand = cli.Command{
	Name:  "channels",
	Usage: "List open and pending channels, largest local balance first.",
	Action: func(cliCtx *cli.Context) error {
		return withApp(func(ctx context.Context, app *walletd.App) error {
			var views []lightning.ChannelView
			err := lightning.Retry(ctx, lightning.DefaultAttempts, func() error {
				var err error
				views, err = app.Channels.All(ctx)
				return err
			})
			if err != nil {
				return err
			}

			lightning.SortChannelViewsByBalance(views, true)
			for _, v := range views {
				state := "pending"
				if v.Kind == lightning.ChannelViewActive {
					state = "active"
					if !v.Channel.Active {
						state = "inactive"
					}
				}
				fmt.Printf("%-8v %10d/%10d sat  %v  %v\n",
					state, v.Channel.LocalBalance(), v.Channel.CapacitySat,
					v.Channel.RemotePubkey, v.Channel.ChannelPoint)
			}
			return nil
		})
	},
}

var openChannelCommand = cli.Command{
	Name:  "openchannel",
	Usage: "Open a channel to a node.",
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:     "node",
			Usage:    "The remote node as pubkey@host.",
			Required: true,
		},
		cli.Int64Flag{Name: "amount", Usage: "Funding amount in satoshi.", Required: true},
		cli.Uint64Flag{Name: "sat-per-vbyte", Usage: "Fee rate for the funding transaction."},
	},
	Action: func(cliCtx *cli.Context) error {
		return withApp(func(ctx context.Context, app *walletd.App) error {
			opener := app.NewOpener()
			if err := opener.Start(ctx); err != nil {
				return err
			}
			if err := opener.SetNode(ctx, cliCtx.String("node")); err != nil {
				return err
			}
			if err := opener.Propose(cliCtx.Int64("amount"), cliCtx.Uint64("sat-per-vbyte")); err != nil {
				return err
			}

			if !confirm(fmt.Sprintf("open a %d sat channel to %v?",
				cliCtx.Int64("amount"), cliCtx.String("node"))) {
				opener.Cancel()
				return nil
			}

			if err := opener.Confirm(ctx); err != nil {
				return err
			}

			channelPoint, _ := opener.Result()
			fmt.Printf("funding outpoint: %v\n", channelPoint)
			return nil
		})
	},
}

var closeChannelCommand = cli.Command{
	Name:  "closechannel",
	Usage: "Close a channel. Inactive channels are force closed.",
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:     "channel-point",
			Usage:    "The channel's funding outpoint as txid:index.",
			Required: true,
		},
		cli.Uint64Flag{Name: "sat-per-vbyte", Usage: "Fee rate for the closing transaction."},
	},
	Action: func(cliCtx *cli.Context) error {
		return withApp(func(ctx context.Context, app *walletd.App) error {
			views, err := app.Channels.All(ctx)
			if err != nil {
				return err
			}

			var channel *lightning.Channel
			for _, v := range views {
				if v.Channel.ChannelPoint == cliCtx.String("channel-point") {
					channel = v.Channel
					break
				}
			}
			if channel == nil {
				return fmt.Errorf("no channel with point %v", cliCtx.String("channel-point"))
			}

			closer := app.NewCloser()
			if err := closer.Request(channel); err != nil {
				return err
			}

			kind := "close"
			if !channel.Active {
				kind = "force close"
			}
			if !confirm(fmt.Sprintf("%v channel %v?", kind, channel.ChannelPoint)) {
				closer.Cancel()
				return nil
			}

			if err := closer.Confirm(ctx, cliCtx.Uint64("sat-per-vbyte")); err != nil {
				return err
			}

			txid, _ := closer.Result()
			fmt.Printf("closing txid: %v\n", txid)
			return nil
		})
	},
}

var connectPeerCommand = cli.Command{
	Name:      "connectpeer",
	Usage:     "Connect to a node given as pubkey@host.",
	ArgsUsage: "pubkey@host",
	Action: func(cliCtx *cli.Context) error {
		pubkey, host, ok := strings.Cut(cliCtx.Args().First(), "@")
		if !ok {
			return fmt.Errorf("expected pubkey@host")
		}

		return withApp(func(ctx context.Context, app *walletd.App) error {
			return lightning.Retry(ctx, lightning.DefaultAttempts, func() error {
				return app.Channels.ConnectPeer(ctx, pubkey, host)
			})
		})
	},
}

var nodeInfoCommand = cli.Command{
	Name:      "nodeinfo",
	Usage:     "Show graph info for a node.",
	ArgsUsage: "pubkey",
	Action: func(cliCtx *cli.Context) error {
		return withApp(func(ctx context.Context, app *walletd.App) error {
			info, err := app.Channels.NodeInfo(ctx, cliCtx.Args().First())
			if err != nil {
				return err
			}
			if info == nil {
				fmt.Println("node not found")
				return nil
			}

			fmt.Printf("alias:    %v\n", info.Alias)
			fmt.Printf("channels: %d, capacity %d sat\n", info.NumChannels, info.TotalCapacitySat)
			return nil
		})
	},
}

var addInvoiceCommand = cli.Command{
	Name:  "addinvoice",
	Usage: "Create an invoice.",
	Flags: []cli.Flag{
		cli.Int64Flag{Name: "amount", Usage: "Amount in satoshi.", Required: true},
		cli.StringFlag{Name: "memo"},
	},
	Action: func(cliCtx *cli.Context) error {
		return withApp(func(ctx context.Context, app *walletd.App) error {
			invoice, err := app.Invoices.Create(ctx, cliCtx.Int64("amount"), cliCtx.String("memo"))
			if err != nil {
				return err
			}

			fmt.Println(invoice.PaymentRequest)
			return nil
		})
	},
}

var payInvoiceCommand = cli.Command{
	Name:      "payinvoice",
	Usage:     "Decode and pay a payment request.",
	ArgsUsage: "paymentrequest",
	Action: func(cliCtx *cli.Context) error {
		return withApp(func(ctx context.Context, app *walletd.App) error {
			payer := app.NewPayer()
			if err := payer.Decode(ctx, cliCtx.Args().First()); err != nil {
				return err
			}

			decoded := payer.Decoded()
			if err := payer.RequestPay(); err != nil {
				return err
			}

			if !confirm(fmt.Sprintf("pay %d sat for %q?", decoded.AmountSat, decoded.Description)) {
				payer.Reset()
				return nil
			}

			if err := payer.Confirm(ctx); err != nil {
				return err
			}

			result, _ := payer.Result()
			fmt.Printf("paid, preimage %v\n", result.PaymentPreimage)
			return nil
		})
	},
}

var historyCommand = cli.Command{
	Name:  "history",
	Usage: "List invoices and payments, most recent first.",
	Action: func(cliCtx *cli.Context) error {
		return withApp(func(ctx context.Context, app *walletd.App) error {
			var payables []lightning.Payable
			err := lightning.Retry(ctx, lightning.DefaultAttempts, func() error {
				var err error
				payables, err = app.Invoices.All(ctx)
				return err
			})
			if err != nil {
				return err
			}

			for _, p := range payables {
				switch p.Kind {
				case lightning.PayableInvoice:
					settled := " "
					if p.Invoice.Settled {
						settled = "*"
					}
					fmt.Printf("%v  in%v %10d sat  %v\n",
						p.Timestamp().Format("2006-01-02 15:04"), settled,
						p.Invoice.AmountSat, p.Invoice.Memo)
				case lightning.PayablePayment:
					fmt.Printf("%v  out %10d sat  fee %d\n",
						p.Timestamp().Format("2006-01-02 15:04"),
						p.Payment.AmountSat, p.Payment.FeeSat)
				}
			}
			return nil
		})
	},
}

var rateCommand = cli.Command{
	Name:      "rate",
	Usage:     "Show the bitcoin spot price.",
	ArgsUsage: "currency",
	Action: func(cliCtx *cli.Context) error {
		currency := cliCtx.Args().First()
		if currency == "" {
			currency = "USD"
		}

		return withApp(func(ctx context.Context, app *walletd.App) error {
			if app.Rates == nil {
				return fmt.Errorf("RATES_API_BASE_URL is not configured")
			}

			rate, err := app.Rates.Rate(ctx, currency)
			if err != nil {
				return err
			}

			fmt.Printf("1 BTC = %.2f %v\n", rate, strings.ToUpper(currency))
			return nil
		})
	},
}

func confirm(prompt string) bool {
	fmt.Printf("%v [y/N] ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

package main

import (
	"fmt"

	ecies "github.com/ecies/go/v2"
	"github.com/urfave/cli"
)

var genKeyCommand = cli.Command{
	Name:   "genkey",
	Usage:  "Generate a secret store key for the SECRET_KEY environment variable.",
	Action: genKey,
}

func genKey(cliCtx *cli.Context) error {
	k, err := ecies.GenerateKey()
	if err != nil {
		return fmt.Errorf("ecies.GenerateKey() error: %w", err)
	}
	fmt.Printf("SECRET_KEY=\"%s\"\n", k.Hex())
	return nil
}

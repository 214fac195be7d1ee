package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/attestedmedia/mediaverifier/cmd"
)

func main() {
	app := &cli.Command{
		Name:  "mediaverifier",
		Usage: "Hardware-attested media verification",
		Commands: []*cli.Command{
			cmd.ServeCommand(),
			cmd.VerifyCommand(),
			cmd.DecodeCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

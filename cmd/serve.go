package cmd

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/attestedmedia/mediaverifier/certchain"
	"github.com/attestedmedia/mediaverifier/config"
	"github.com/attestedmedia/mediaverifier/policy"
	"github.com/attestedmedia/mediaverifier/server"
	"github.com/attestedmedia/mediaverifier/verify"
)

// ServeCommand creates the serve command
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the media attestation verification server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to the YAML configuration file",
				Value: "config.yaml",
			},
		},
		Action: runServeCommand,
	}
}

func runServeCommand(ctx context.Context, cmd *cli.Command) error {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Trust-anchor loading is startup-fatal: serving with an empty or partial
	// trust store is worse than not serving at all.
	anchors, err := certchain.LoadTrustAnchors(cfg.TrustStorePath)
	if err != nil {
		return fmt.Errorf("trust store load failed: %w", err)
	}
	log.WithFields(logrus.Fields{
		"trust_store": cfg.TrustStorePath,
		"anchors":     anchors.Len(),
	}).Info("trust anchors loaded")

	if cfg.Policy.MinPatchLevel > 0 {
		log.WithField("min_patch_level", cfg.Policy.MinPatchLevel).
			Warn("min_patch_level is configured but not enforced: the record parser does not decode patch-level fields yet")
	}

	svc := verify.NewService(anchors, policy.Config{
		RequireHardwareBacked: cfg.Policy.RequireHardwareBacked,
		ExpectedAppID:         cfg.Policy.ExpectedAppID,
		MinPatchLevel:         cfg.Policy.MinPatchLevel,
	}, verify.WithMaxMediaBytes(cfg.MaxMediaBytes))

	srv := server.New(svc, log, cfg.MaxMediaBytes)
	return srv.ListenAndServe(cfg.ListenAddr)
}

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/attestedmedia/mediaverifier/certchain"
	"github.com/attestedmedia/mediaverifier/policy"
	"github.com/attestedmedia/mediaverifier/verify"
)

// VerifyCommand creates the verify command
func VerifyCommand() *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "Verify a media attestation submission end-to-end",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "payload",
				Usage:    "Path to the canonical payload file (exact signed bytes)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "signature-b64",
				Usage:    "Base64-encoded signature over the canonical payload",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "chain",
				Usage:    "Path to a JSON array of base64 DER certificates, leaf first",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "media",
				Usage:    "Path to the media file whose hash the payload claims",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "trust-store",
				Usage:    "Path to the trust-store file (JSON array of PEM roots or a PEM bundle)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "app-id",
				Usage:    "Expected app_id claim",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "require-hardware-backed",
				Usage: "Reject software-level attestation records",
				Value: true,
			},
		},
		Action: runVerifyCommand,
	}
}

func runVerifyCommand(ctx context.Context, cmd *cli.Command) error {
	payloadBytes, err := os.ReadFile(cmd.String("payload"))
	if err != nil {
		return fmt.Errorf("failed to read payload: %w", err)
	}

	chainJSON, err := os.ReadFile(cmd.String("chain"))
	if err != nil {
		return fmt.Errorf("failed to read chain: %w", err)
	}
	var x5c []string
	if err := json.Unmarshal(chainJSON, &x5c); err != nil {
		return fmt.Errorf("failed to parse chain file: %w", err)
	}

	media, err := os.ReadFile(cmd.String("media"))
	if err != nil {
		return fmt.Errorf("failed to read media: %w", err)
	}

	anchors, err := certchain.LoadTrustAnchors(cmd.String("trust-store"))
	if err != nil {
		return fmt.Errorf("trust store load failed: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✓ Loaded %d trust anchor(s)\n", anchors.Len())

	svc := verify.NewService(anchors, policy.Config{
		RequireHardwareBacked: cmd.Bool("require-hardware-backed"),
		ExpectedAppID:         cmd.String("app-id"),
	})

	verdict := svc.Verify(&verify.Request{
		PayloadCanonical: payloadBytes,
		SignatureB64:     cmd.String("signature-b64"),
		CertChainB64:     x5c,
		Media:            media,
	})

	if verdict.OK {
		fmt.Fprintf(os.Stderr, "✓ Content hash matches media (%d bytes)\n", len(media))
		fmt.Fprintf(os.Stderr, "✓ Signature verified over canonical payload\n")
		fmt.Fprintf(os.Stderr, "✓ Certificate chain terminates at a trust anchor\n")
		fmt.Fprintf(os.Stderr, "✓ Attestation security level: %s\n", verdict.Attestation.SecurityLevelName)
	} else {
		fmt.Fprintf(os.Stderr, "✗ Verification failed: %s\n", verdict.Category)
	}

	output, err := json.MarshalIndent(verdict, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal verdict: %w", err)
	}
	fmt.Println(string(output))

	if !verdict.OK {
		return cli.Exit("", 1)
	}
	return nil
}

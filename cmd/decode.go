package cmd

import (
	"context"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/attestedmedia/mediaverifier/keyattest"
)

// DecodeCommand creates the decode-attestation command
func DecodeCommand() *cli.Command {
	return &cli.Command{
		Name:  "decode-attestation",
		Usage: "Decode the key-attestation record from a certificate",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "cert",
				Usage:    "Path to a certificate (PEM or DER)",
				Required: true,
			},
		},
		Action: runDecodeCommand,
	}
}

func runDecodeCommand(ctx context.Context, cmd *cli.Command) error {
	data, err := os.ReadFile(cmd.String("cert"))
	if err != nil {
		return fmt.Errorf("failed to read certificate: %w", err)
	}

	der := data
	if block, _ := pem.Decode(data); block != nil {
		der = block.Bytes
	}

	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return fmt.Errorf("failed to parse certificate: %w", err)
	}

	rec, err := keyattest.Parse(cert)
	if err != nil {
		return fmt.Errorf("failed to decode attestation record: %w", err)
	}

	out := map[string]any{
		"attestationVersion":         rec.Version,
		"attestationSecurityLevel":   int(rec.SecurityLevel),
		"securityLevelName":          rec.SecurityLevel.String(),
		"keymasterVersion":           rec.KeymasterVersion,
		"keymasterSecurityLevel":     int(rec.KeymasterSecurityLevel),
		"attestationChallengeB64":    base64.StdEncoding.EncodeToString(rec.Challenge),
		"uniqueIdB64":                base64.StdEncoding.EncodeToString(rec.UniqueID),
		"softwareEnforcedBytes":      len(rec.SoftwareEnforced),
		"teeEnforcedBytes":           len(rec.TEEEnforced),
	}

	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(encoded))
	return nil
}

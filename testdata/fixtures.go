// Package testdata builds certificate-chain fixtures shared by the test
// packages: a generated root (optionally with an intermediate) and a leaf
// certificate carrying a fabricated key-attestation extension.
package testdata

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"math/big"
	"time"

	"github.com/attestedmedia/mediaverifier/keyattest"
	"github.com/attestedmedia/mediaverifier/signature"
)

// ChainSpec controls fixture generation. The zero value produces an EC leaf
// with a hardware-backed attestation record and no intermediate.
type ChainSpec struct {
	// KeyAlgorithm is "ec" (default) or "rsa".
	KeyAlgorithm string

	AttestationVersion int // default 3

	// SecurityLevel defaults to trusted-environment. Software must be set to
	// build a software-level record, since that level is the zero value.
	SecurityLevel keyattest.SecurityLevel
	Software      bool

	Challenge []byte

	WithIntermediate bool
	OmitAttestation  bool

	NotBefore, NotAfter time.Time
}

// Chain is a generated fixture chain, leaf first in ChainB64.
type Chain struct {
	ECKey  *ecdsa.PrivateKey
	RSAKey *rsa.PrivateKey

	Leaf     *x509.Certificate
	Root     *x509.Certificate
	RootPEM  []byte
	ChainB64 []string
}

// Sign signs payload with the leaf key in the format the verifier expects for
// that key type.
func (c *Chain) Sign(payload []byte) ([]byte, error) {
	if c.RSAKey != nil {
		return signature.SignRSA(c.RSAKey, payload)
	}
	return signature.SignECDSA(c.ECKey, payload)
}

// TrustStoreJSON renders the chain's root as a trust-store file body (JSON
// array of PEM strings, the production format).
func (c *Chain) TrustStoreJSON() []byte {
	body, err := json.Marshal([]string{string(c.RootPEM)})
	if err != nil {
		panic(err)
	}
	return body
}

// BuildChain generates a fixture chain per spec.
func BuildChain(spec ChainSpec) (*Chain, error) {
	if spec.AttestationVersion == 0 {
		spec.AttestationVersion = 3
	}
	if spec.SecurityLevel == keyattest.SecurityLevelSoftware && !spec.Software {
		spec.SecurityLevel = keyattest.SecurityLevelTrustedEnvironment
	}
	if spec.Challenge == nil {
		spec.Challenge = []byte("fixture-challenge")
	}
	if spec.NotBefore.IsZero() {
		spec.NotBefore = time.Now().Add(-time.Hour)
	}
	if spec.NotAfter.IsZero() {
		spec.NotAfter = time.Now().Add(24 * time.Hour)
	}

	rootKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate root key: %w", err)
	}
	rootTmpl := caTemplate("Fixture Attestation Root", spec, -1)
	rootDER, err := x509.CreateCertificate(rand.Reader, rootTmpl, rootTmpl, &rootKey.PublicKey, rootKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create root: %w", err)
	}
	root, err := x509.ParseCertificate(rootDER)
	if err != nil {
		return nil, err
	}

	issuerCert, issuerKey := root, rootKey
	var interDER []byte
	if spec.WithIntermediate {
		interKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("failed to generate intermediate key: %w", err)
		}
		interTmpl := caTemplate("Fixture Attestation Intermediate", spec, 0)
		interDER, err = x509.CreateCertificate(rand.Reader, interTmpl, root, &interKey.PublicKey, rootKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create intermediate: %w", err)
		}
		issuerCert, err = x509.ParseCertificate(interDER)
		if err != nil {
			return nil, err
		}
		issuerKey = interKey
	}

	out := &Chain{Root: root}

	var leafPub any
	switch spec.KeyAlgorithm {
	case "", "ec":
		out.ECKey, err = ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("failed to generate leaf key: %w", err)
		}
		leafPub = &out.ECKey.PublicKey
	case "rsa":
		out.RSAKey, err = rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			return nil, fmt.Errorf("failed to generate leaf key: %w", err)
		}
		leafPub = &out.RSAKey.PublicKey
	default:
		return nil, fmt.Errorf("unknown key algorithm %q", spec.KeyAlgorithm)
	}

	leafTmpl := &x509.Certificate{
		SerialNumber:          newSerial(),
		Subject:               pkix.Name{CommonName: "Fixture Attested Key"},
		NotBefore:             spec.NotBefore,
		NotAfter:              spec.NotAfter,
		KeyUsage:              x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
	}
	if !spec.OmitAttestation {
		rec := &keyattest.Record{
			Version:                spec.AttestationVersion,
			SecurityLevel:          spec.SecurityLevel,
			KeymasterVersion:       4,
			KeymasterSecurityLevel: spec.SecurityLevel,
			Challenge:              spec.Challenge,
		}
		recDER, err := rec.Marshal()
		if err != nil {
			return nil, err
		}
		leafTmpl.ExtraExtensions = []pkix.Extension{{Id: keyattest.KeyDescriptionOID, Value: recDER}}
	}

	leafDER, err := x509.CreateCertificate(rand.Reader, leafTmpl, issuerCert, leafPub, issuerKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create leaf: %w", err)
	}
	out.Leaf, err = x509.ParseCertificate(leafDER)
	if err != nil {
		return nil, err
	}

	out.ChainB64 = append(out.ChainB64, base64.StdEncoding.EncodeToString(leafDER))
	if interDER != nil {
		out.ChainB64 = append(out.ChainB64, base64.StdEncoding.EncodeToString(interDER))
	}
	out.ChainB64 = append(out.ChainB64, base64.StdEncoding.EncodeToString(rootDER))

	out.RootPEM = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: rootDER})

	return out, nil
}

func caTemplate(cn string, spec ChainSpec, maxPathLen int) *x509.Certificate {
	tmpl := &x509.Certificate{
		SerialNumber:          newSerial(),
		Subject:               pkix.Name{CommonName: cn},
		NotBefore:             spec.NotBefore,
		NotAfter:              spec.NotAfter,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		IsCA:                  true,
		BasicConstraintsValid: true,
	}
	if maxPathLen == 0 {
		tmpl.MaxPathLen = 0
		tmpl.MaxPathLenZero = true
	}
	return tmpl
}

func newSerial() *big.Int {
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		panic(err)
	}
	return serial
}

package certchain

import (
	"crypto/x509"
	"fmt"
	"time"
)

// Validate walks the chain from leaf toward the root and checks that every
// certificate is inside its validity interval at time at, that each link's
// signature verifies against the next certificate's public key, that issuer
// certificates honor their basic constraints, and that the final certificate
// either is a trust anchor or was signed by one.
//
// Revocation (CRL/OCSP) is not checked; that is a stated limitation of this
// validator, not an oversight. Callers relying on revocation must layer it on
// separately.
func (c *Chain) Validate(anchors *TrustAnchors, at time.Time) error {
	for i, cert := range c.certs {
		if err := checkValidity(cert, at); err != nil {
			return fmt.Errorf("certificate %d (%s): %w", i, cert.Subject.CommonName, err)
		}
	}

	for i := 0; i < len(c.certs)-1; i++ {
		child, issuer := c.certs[i], c.certs[i+1]
		// CheckSignatureFrom also rejects issuers that are not CAs.
		if err := child.CheckSignatureFrom(issuer); err != nil {
			return fmt.Errorf("signature mismatch between chain links %d and %d: %w", i, i+1, err)
		}
	}

	for i := 1; i < len(c.certs); i++ {
		if err := checkPathLen(c.certs[i], i-1); err != nil {
			return fmt.Errorf("certificate %d (%s): %w", i, c.certs[i].Subject.CommonName, err)
		}
	}

	last := c.certs[len(c.certs)-1]
	if anchors.Contains(last) {
		return nil
	}
	anchor := anchors.issuerOf(last)
	if anchor == nil {
		return fmt.Errorf("path does not terminate at trust anchor (chain root %q)", last.Subject.CommonName)
	}
	if err := checkValidity(anchor, at); err != nil {
		return fmt.Errorf("trust anchor %q: %w", anchor.Subject.CommonName, err)
	}
	return nil
}

func checkValidity(cert *x509.Certificate, at time.Time) error {
	if at.Before(cert.NotBefore) {
		return fmt.Errorf("certificate not yet valid (notBefore %s)", cert.NotBefore.UTC().Format(time.RFC3339))
	}
	if at.After(cert.NotAfter) {
		return fmt.Errorf("certificate expired (notAfter %s)", cert.NotAfter.UTC().Format(time.RFC3339))
	}
	return nil
}

// checkPathLen enforces the pathLenConstraint of an issuer certificate.
// intermediatesBelow counts the issuer certificates between this CA and the
// leaf, exclusive of both.
func checkPathLen(ca *x509.Certificate, intermediatesBelow int) error {
	if !ca.BasicConstraintsValid {
		return nil
	}
	limited := ca.MaxPathLen > 0 || (ca.MaxPathLen == 0 && ca.MaxPathLenZero)
	if limited && intermediatesBelow > ca.MaxPathLen {
		return fmt.Errorf("path length constraint %d exceeded (%d intermediates below)", ca.MaxPathLen, intermediatesBelow)
	}
	return nil
}

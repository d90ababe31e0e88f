// Generates an RSA key pair for a checker. The private key goes to stdout
// in PKCS#1 PEM; the public fingerprint is printed to stderr for reference.
package main

import (
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"

	"treasury/internal/approval"
)

func main() {
	key, err := approval.GenerateKeyPair()
	if err != nil {
		fmt.Fprintf(os.Stderr, "key generation failed: %v\n", err)
		os.Exit(1)
	}

	block := &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}
	if err := pem.Encode(os.Stdout, block); err != nil {
		fmt.Fprintf(os.Stderr, "pem encoding failed: %v\n", err)
		os.Exit(1)
	}

	fingerprint, err := approval.Fingerprint(&key.PublicKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fingerprint failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "fingerprint: %s\n", fingerprint)
}

// Package approval implements the cryptographic four-eyes approval protocol:
// RSA PKCS#1 v1.5 signatures over a canonical payment payload.
package approval

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "treasury/pkg/errors"
)

// MinKeyBits is the smallest RSA modulus accepted for approval signatures.
const MinKeyBits = 2048

// GenerateKeyPair creates a fresh RSA key pair for a checker.
func GenerateKeyPair() (*rsa.PrivateKey, error) {
	return rsa.GenerateKey(rand.Reader, MinKeyBits)
}

// CanonicalPayload builds the exact byte sequence that is signed:
// "{payment_id}|{amount}|{approval_timestamp}" in UTF-8. The amount is
// rendered with the storage precision of 8 fractional digits and the
// timestamp as RFC 3339, so the payload survives a database round-trip
// byte for byte. Signing and verification must produce identical bytes or
// the signature is rejected.
func CanonicalPayload(paymentID string, amount decimal.Decimal, approvedAt time.Time) []byte {
	return []byte(fmt.Sprintf("%s|%s|%s", paymentID, amount.StringFixed(8), approvedAt.UTC().Format(time.RFC3339)))
}

// Sign signs the canonical payload with SHA-256 and PKCS#1 v1.5 padding and
// returns the raw signature bytes.
func Sign(paymentID string, amount decimal.Decimal, approvedAt time.Time, key *rsa.PrivateKey) ([]byte, error) {
	if key == nil {
		return nil, errors.New("signing key is required")
	}
	if key.N.BitLen() < MinKeyBits {
		return nil, fmt.Errorf("signing key too small: %d bits (minimum %d)", key.N.BitLen(), MinKeyBits)
	}
	digest := sha256.Sum256(CanonicalPayload(paymentID, amount, approvedAt))
	return rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
}

// Verify recomputes the canonical payload and checks the base64 signature
// against the PEM public key. Any mismatch, wrong key, altered amount or
// timestamp, or corrupt signature bytes, fails with the same
// InvalidSignatureError; the cause is never disclosed.
func Verify(paymentID string, amount decimal.Decimal, approvedAt time.Time, signatureB64, publicKeyPEM string) error {
	pub, err := ParsePublicKeyPEM(publicKeyPEM)
	if err != nil {
		return &pkgerrors.InvalidSignatureError{PaymentID: paymentID}
	}
	sig, err := base64.StdEncoding.DecodeString(signatureB64)
	if err != nil {
		return &pkgerrors.InvalidSignatureError{PaymentID: paymentID}
	}
	digest := sha256.Sum256(CanonicalPayload(paymentID, amount, approvedAt))
	if err := rsa.VerifyPKCS1v15(pub, crypto.SHA256, digest[:], sig); err != nil {
		return &pkgerrors.InvalidSignatureError{PaymentID: paymentID}
	}
	return nil
}

// EncodeSignature renders raw signature bytes in the stored base64 form.
func EncodeSignature(sig []byte) string {
	return base64.StdEncoding.EncodeToString(sig)
}

// PublicKeyPEM encodes the public key as a PEM SubjectPublicKeyInfo block.
func PublicKeyPEM(pub *rsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", err
	}
	block := &pem.Block{Type: "PUBLIC KEY", Bytes: der}
	return string(pem.EncodeToMemory(block)), nil
}

// ParsePublicKeyPEM decodes a PEM SubjectPublicKeyInfo RSA public key.
func ParsePublicKeyPEM(pemStr string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(pemStr))
	if block == nil {
		return nil, errors.New("no PEM block found")
	}
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	pub, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("not an RSA public key")
	}
	return pub, nil
}

// ParsePrivateKeyPEM decodes a PEM RSA private key in either PKCS#1 or
// PKCS#8 form. Keys below MinKeyBits are rejected.
func ParsePrivateKeyPEM(pemStr string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(pemStr))
	if block == nil {
		return nil, errors.New("no PEM block found")
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		if key.N.BitLen() < MinKeyBits {
			return nil, fmt.Errorf("key size %d below minimum %d bits", key.N.BitLen(), MinKeyBits)
		}
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("not an RSA private key")
	}
	if key.N.BitLen() < MinKeyBits {
		return nil, fmt.Errorf("key size %d below minimum %d bits", key.N.BitLen(), MinKeyBits)
	}
	return key, nil
}

// Fingerprint returns the SHA-256 hex digest of the DER-encoded
// SubjectPublicKeyInfo.
func Fingerprint(pub *rsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(der)
	return hex.EncodeToString(sum[:]), nil
}

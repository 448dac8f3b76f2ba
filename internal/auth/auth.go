// Package auth signs Kalshi API requests with RSA-PSS.
package auth

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Header names carried by every authenticated request.
const (
	HeaderKey       = "KALSHI-ACCESS-KEY"
	HeaderSignature = "KALSHI-ACCESS-SIGNATURE"
	HeaderTimestamp = "KALSHI-ACCESS-TIMESTAMP"
)

// CredentialError reports a key id or private key that cannot be used.
// It is only returned while loading, never while signing.
type CredentialError struct {
	Reason string
	Err    error
}

func (e *CredentialError) Error() string {
	if e.Err != nil {
		return "credential: " + e.Reason + ": " + e.Err.Error()
	}
	return "credential: " + e.Reason
}

func (e *CredentialError) Unwrap() error { return e.Err }

// Credentials holds the API key and private key for signing requests.
// Immutable after load, so a single value may be shared by concurrent callers.
type Credentials struct {
	KeyID      string          // API key ID from Kalshi dashboard
	PrivateKey *rsa.PrivateKey // RSA private key for signing
}

// LoadCredentials loads credentials from key ID and private key file path.
func LoadCredentials(keyID, privateKeyPath string) (*Credentials, error) {
	if keyID == "" {
		return nil, &CredentialError{Reason: "API key ID is required"}
	}
	if privateKeyPath == "" {
		return nil, &CredentialError{Reason: "private key path is required"}
	}

	privateKey, err := LoadPrivateKey(privateKeyPath)
	if err != nil {
		return nil, err
	}

	return &Credentials{
		KeyID:      keyID,
		PrivateKey: privateKey,
	}, nil
}

// LoadPrivateKey loads an RSA private key from a PEM file.
func LoadPrivateKey(path string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &CredentialError{Reason: "read key file", Err: err}
	}
	return ParsePrivateKey(data)
}

// ParsePrivateKey decodes a PEM-encoded RSA key in PKCS#8 or PKCS#1 form.
func ParsePrivateKey(data []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, &CredentialError{Reason: "failed to decode PEM block"}
	}

	// Try PKCS#8 first (newer format)
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err == nil {
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, &CredentialError{Reason: "key is not an RSA private key"}
		}
		return rsaKey, nil
	}

	// Fall back to PKCS#1 (older format)
	rsaKey, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, &CredentialError{Reason: "parse private key", Err: err}
	}

	return rsaKey, nil
}

// Sign returns the base64 RSA-PSS signature of timestamp_ms + method + path.
// Any query string on path is stripped before signing.
func (c *Credentials) Sign(method, path string, timestampMs int64) (string, error) {
	message := strconv.FormatInt(timestampMs, 10) + method + StripQuery(path)

	hashed := sha256.Sum256([]byte(message))

	signature, err := rsa.SignPSS(
		rand.Reader,
		c.PrivateKey,
		crypto.SHA256,
		hashed[:],
		&rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash},
	)
	if err != nil {
		return "", fmt.Errorf("sign message: %w", err)
	}

	return base64.StdEncoding.EncodeToString(signature), nil
}

// SignRequest generates authentication headers for a request issued at now.
func (c *Credentials) SignRequest(method, path string, now time.Time) (map[string]string, error) {
	if c == nil || c.PrivateKey == nil {
		return nil, errors.New("credentials not loaded")
	}
	timestampMs := now.UnixMilli()

	signature, err := c.Sign(method, path, timestampMs)
	if err != nil {
		return nil, err
	}

	return map[string]string{
		HeaderKey:       c.KeyID,
		HeaderTimestamp: strconv.FormatInt(timestampMs, 10),
		HeaderSignature: signature,
	}, nil
}

// StripQuery drops everything from the first '?'.
func StripQuery(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}

// Package gcs implements the vana.Signer contract against a Google Cloud
// Storage style XML API using the canonical-string signed URL scheme: a
// newline-delimited canonical string is signed with the service account's
// RSA key and the signature is carried in the URL query.
package gcs

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sagarc03/vana"
)

const (
	copySourceHeader = "x-goog-copy-source"
	resumableHeader  = "x-goog-resumable"

	// syncProbeValidity bounds the signed URLs the signer issues for its own
	// synchronous delete and existence calls.
	syncProbeValidity = 2 * time.Minute
)

// Config holds the construction parameters for one named backend block.
type Config struct {
	Endpoint   string // e.g. https://storage.googleapis.com
	Bucket     string
	AccessID   string // service account email
	PrivateKey *rsa.PrivateKey
	ReadOnly   bool
	HTTPClient *http.Client // nil uses http.DefaultClient
}

// Signer signs URLs for one bucket with one credential.
type Signer struct {
	endpoint string
	bucket   string
	accessID string
	key      *rsa.PrivateKey
	readOnly bool
	client   *http.Client
}

// NewSigner creates a Signer from the given configuration.
func NewSigner(cfg Config) (*Signer, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("new gcs signer: endpoint is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("new gcs signer: bucket is required")
	}
	if cfg.AccessID == "" {
		return nil, errors.New("new gcs signer: access id is required")
	}
	if cfg.PrivateKey == nil {
		return nil, errors.New("new gcs signer: private key is required")
	}

	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	return &Signer{
		endpoint: strings.TrimSuffix(cfg.Endpoint, "/"),
		bucket:   cfg.Bucket,
		accessID: cfg.AccessID,
		key:      cfg.PrivateKey,
		readOnly: cfg.ReadOnly,
		client:   client,
	}, nil
}

// LoadPrivateKey parses a PEM-encoded RSA private key file (PKCS#1 or PKCS#8).
func LoadPrivateKey(path string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load private key: %w", err)
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("load private key: no PEM block in %s", path)
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("load private key: %w", err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("load private key: %s is not an RSA key", path)
	}
	return key, nil
}

// ReadOnly reports whether this backend refuses mutating operations.
func (s *Signer) ReadOnly() bool {
	return s.readOnly
}

// Resolve produces a signed URL performing verb against key until expiry.
// contentMD5 and contentType, when given, are part of the canonical string,
// so a request presenting different values is rejected by the backend.
func (s *Signer) Resolve(ctx context.Context, key, verb string, expiry time.Time, contentType, contentMD5 string) (string, error) {
	return s.signedURL(verb, key, expiry, contentMD5, contentType, nil)
}

// Copy produces a URL that, when PUT with no body and the copy source
// header, duplicates sourceRef into destKey server side.
func (s *Signer) Copy(ctx context.Context, destKey, sourceRef string, expiry time.Time) (string, error) {
	headers := []extensionHeader{{copySourceHeader, sourceRef}}
	return s.signedURL(http.MethodPut, destKey, expiry, "", "", headers)
}

// StartResumableUpload signs the session-initiation URL for key. The client
// POSTs it with the resumable header to obtain the upload session.
func (s *Signer) StartResumableUpload(ctx context.Context, key string) (string, error) {
	headers := []extensionHeader{{resumableHeader, "start"}}
	return s.signedURL(http.MethodPut, key, expiryFromNow(syncProbeValidity), "", "", headers)
}

// Delete removes key synchronously. An already absent key is success.
func (s *Signer) Delete(ctx context.Context, key string) error {
	signed, err := s.signedURL(http.MethodDelete, key, expiryFromNow(syncProbeValidity), "", "", nil)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, signed, nil)
	if err != nil {
		return fmt.Errorf("gcs delete %s: %w", key, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("gcs delete %s: %w", key, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	default:
		return fmt.Errorf("gcs delete %s: unexpected status %d", key, resp.StatusCode)
	}
}

// Exists probes key with a zero-body HEAD request against a signed URL.
func (s *Signer) Exists(ctx context.Context, key string) (bool, error) {
	signed, err := s.signedURL(http.MethodHead, key, expiryFromNow(syncProbeValidity), "", "", nil)
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, signed, nil)
	if err != nil {
		return false, fmt.Errorf("gcs exists %s: %w", key, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("gcs exists %s: %w", key, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return true, nil
	default:
		return false, fmt.Errorf("gcs exists %s: unexpected status %d", key, resp.StatusCode)
	}
}

type extensionHeader struct {
	name  string
	value string
}

// signedURL builds the canonical string
//
//	{verb}\n{contentMD5}\n{contentType}\n{expiresEpoch}\n{extHeaders}{resource}
//
// signs it with RSA-SHA256 and assembles the query-authenticated URL.
func (s *Signer) signedURL(verb, key string, expiry time.Time, contentMD5, contentType string, headers []extensionHeader) (string, error) {
	resource := "/" + s.bucket + "/" + key
	epoch := strconv.FormatInt(expiry.Unix(), 10)

	var canonical strings.Builder
	canonical.WriteString(verb)
	canonical.WriteString("\n")
	canonical.WriteString(contentMD5)
	canonical.WriteString("\n")
	canonical.WriteString(contentType)
	canonical.WriteString("\n")
	canonical.WriteString(epoch)
	canonical.WriteString("\n")
	for _, h := range headers {
		canonical.WriteString(h.name)
		canonical.WriteString(":")
		canonical.WriteString(h.value)
		canonical.WriteString("\n")
	}
	canonical.WriteString(resource)

	digest := sha256.Sum256([]byte(canonical.String()))
	sig, err := rsa.SignPKCS1v15(rand.Reader, s.key, crypto.SHA256, digest[:])
	if err != nil {
		return "", fmt.Errorf("gcs sign %s %s: %w", verb, key, err)
	}

	signature := url.QueryEscape(base64.StdEncoding.EncodeToString(sig))

	return fmt.Sprintf("%s%s?GoogleAccessId=%s&Expires=%s&Signature=%s",
		s.endpoint, resource, url.QueryEscape(s.accessID), epoch, signature), nil
}

func expiryFromNow(d time.Duration) time.Time {
	return time.Now().Add(d)
}

var _ vana.Signer = (*Signer)(nil)

// Package memory implements the vana.Signer contract over an in-process
// byte map. It exists for local round-trip testing: resolved URLs point back
// at the store's own HTTP handler instead of carrying a signature.
package memory

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sagarc03/vana"
)

// Store is a concurrent key to bytes map that doubles as a Signer and as the
// HTTP service its resolved URLs point at.
type Store struct {
	mu       sync.RWMutex
	objects  map[string][]byte
	baseURL  string
	readOnly bool
}

// NewStore creates an empty store. baseURL is where the store's Handler is
// mounted; it may be set later with SetBaseURL once a test server is up.
func NewStore(baseURL string) *Store {
	return &Store{
		objects: make(map[string][]byte),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// SetBaseURL rebinds the URL prefix resolved URLs are built from.
func (s *Store) SetBaseURL(baseURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baseURL = strings.TrimSuffix(baseURL, "/")
}

// SetReadOnly toggles refusal of mutating operations.
func (s *Store) SetReadOnly(readOnly bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readOnly = readOnly
}

// ReadOnly reports whether this backend refuses mutating operations.
func (s *Store) ReadOnly() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readOnly
}

// Resolve returns a URL against the embedded handler. The expiry and content
// constraints are carried as query parameters so tests can assert on them;
// nothing is cryptographically signed.
func (s *Store) Resolve(ctx context.Context, key, verb string, expiry time.Time, contentType, contentMD5 string) (string, error) {
	q := url.Values{}
	q.Set("verb", verb)
	q.Set("expires", strconv.FormatInt(expiry.Unix(), 10))
	if contentType != "" {
		q.Set("contentType", contentType)
	}
	if contentMD5 != "" {
		q.Set("contentMD5", contentMD5)
	}
	return s.objectURL(key, q), nil
}

// Copy duplicates the bytes at sourceRef into destKey immediately, copy on
// write, and returns the destination URL.
func (s *Store) Copy(ctx context.Context, destKey, sourceRef string, expiry time.Time) (string, error) {
	s.mu.Lock()

	src, ok := s.objects[sourceRef]
	if !ok {
		s.mu.Unlock()
		return "", fmt.Errorf("memory copy: source %q: %w", sourceRef, vana.ErrNotFound)
	}

	dup := make([]byte, len(src))
	copy(dup, src)
	s.objects[destKey] = dup
	s.mu.Unlock()

	q := url.Values{}
	q.Set("expires", strconv.FormatInt(expiry.Unix(), 10))
	return s.objectURL(destKey, q), nil
}

// StartResumableUpload returns an upload URL flagged as a resumable session.
func (s *Store) StartResumableUpload(ctx context.Context, key string) (string, error) {
	q := url.Values{}
	q.Set("resumable", "start")
	return s.objectURL(key, q), nil
}

// Delete removes key. An already absent key is success.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// Exists reports whether key holds bytes.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok, nil
}

// Put seeds key with content. Intended for test setup.
func (s *Store) Put(key string, content []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dup := make([]byte, len(content))
	copy(dup, content)
	s.objects[key] = dup
}

// Handler serves the byte map over HTTP: GET/HEAD read, PUT writes, DELETE
// removes. The key is the URL path with the leading slash stripped.
func (s *Store) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(r.URL.Path, "/")
		if key == "" {
			http.Error(w, "missing key", http.StatusBadRequest)
			return
		}

		switch r.Method {
		case http.MethodGet, http.MethodHead:
			s.mu.RLock()
			content, ok := s.objects[key]
			s.mu.RUnlock()
			if !ok {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Content-Length", strconv.Itoa(len(content)))
			if r.Method == http.MethodGet {
				_, _ = w.Write(content)
			}

		case http.MethodPut:
			if s.ReadOnly() {
				http.Error(w, "read-only backend", http.StatusForbidden)
				return
			}
			content, err := io.ReadAll(r.Body)
			if err != nil {
				http.Error(w, "read body", http.StatusBadRequest)
				return
			}
			s.mu.Lock()
			s.objects[key] = content
			s.mu.Unlock()
			w.WriteHeader(http.StatusOK)

		case http.MethodDelete:
			if s.ReadOnly() {
				http.Error(w, "read-only backend", http.StatusForbidden)
				return
			}
			s.mu.Lock()
			delete(s.objects, key)
			s.mu.Unlock()
			w.WriteHeader(http.StatusNoContent)

		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
}

func (s *Store) objectURL(key string, q url.Values) string {
	s.mu.RLock()
	base := s.baseURL
	s.mu.RUnlock()
	u := base + "/" + key
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}
	return u
}

var _ vana.Signer = (*Store)(nil)

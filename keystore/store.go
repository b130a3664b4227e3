// Package keystore provides credential resolution for named storage
// backends. Credentials can live inline in the configuration or in a
// separate JSON file kept out of version control.
package keystore

import (
	"errors"
	"fmt"
)

// ErrCredentialNotFound is returned when no credential exists for a backend name.
var ErrCredentialNotFound = errors.New("backend credential not found")

// Credential holds the signing material for one named backend. Exactly one
// of Secret or PrivateKeyFile is expected depending on the backend type.
type Credential struct {
	AccessID       string `json:"access_id" mapstructure:"access_id"`
	Secret         string `json:"secret" mapstructure:"secret"`
	PrivateKeyFile string `json:"private_key_file" mapstructure:"private_key_file"`
}

// NamedCredential pairs a backend name with its credential, the shape used
// in the credentials file.
type NamedCredential struct {
	Backend string `json:"backend" mapstructure:"backend"`
	Credential
}

// Config holds configuration for loading backend credentials.
type Config struct {
	Inline []NamedCredential `mapstructure:"inline"` // credentials from the config file itself
	File   string            `mapstructure:"file"`   // path to a JSON credentials file
}

// Store resolves a named backend's signing credential.
type Store struct {
	creds map[string]Credential
}

// NewStore creates a Store from the given configuration. Credentials from
// the file take precedence over inline ones with the same backend name.
func NewStore(cfg Config) (*Store, error) {
	creds := make(map[string]Credential)

	for _, c := range cfg.Inline {
		if c.Backend != "" {
			creds[c.Backend] = c.Credential
		}
	}

	if cfg.File != "" {
		fileCreds, err := LoadCredentialsFromFile(cfg.File)
		if err != nil {
			return nil, err
		}
		for name, c := range fileCreds {
			creds[name] = c
		}
	}

	return &Store{creds: creds}, nil
}

// Lookup returns the credential recorded for the named backend.
func (s *Store) Lookup(backend string) (Credential, error) {
	c, ok := s.creds[backend]
	if !ok {
		return Credential{}, fmt.Errorf("backend %q: %w", backend, ErrCredentialNotFound)
	}
	return c, nil
}

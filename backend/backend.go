// Package backend builds the configured set of storage backend signers.
// Each named configuration block becomes one vana.Signer, and the set of
// names defines the legal storage platform values.
package backend

import (
	"context"
	"fmt"

	"github.com/sagarc03/vana"
	"github.com/sagarc03/vana/backend/gcs"
	"github.com/sagarc03/vana/backend/memory"
	"github.com/sagarc03/vana/backend/s3"
	"github.com/sagarc03/vana/keystore"
)

// Config is one named backend block. Credentials are resolved separately
// through the keystore, keyed by the block's name.
type Config struct {
	// Type selects the signer implementation: "gcs", "s3" or "memory".
	Type            string `mapstructure:"type" validate:"required,oneof=gcs s3 memory"`
	Endpoint        string `mapstructure:"endpoint"`
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	PathStyleAccess bool   `mapstructure:"path_style_access"`
	ReadOnly        bool   `mapstructure:"read_only"`
}

// Build constructs a signer per configured block. The reserved opaque-URI
// platform name may not be configured as a backend.
func Build(ctx context.Context, blocks map[string]Config, creds *keystore.Store) (vana.SignerSet, error) {
	signers := make(vana.SignerSet, len(blocks))

	for name, block := range blocks {
		if vana.StoragePlatform(name) == vana.PlatformOpaqueURI {
			return nil, fmt.Errorf("build backends: %q is a reserved platform name", name)
		}

		signer, err := build(ctx, name, block, creds)
		if err != nil {
			return nil, fmt.Errorf("build backend %q: %w", name, err)
		}
		signers[vana.StoragePlatform(name)] = signer
	}

	return signers, nil
}

func build(ctx context.Context, name string, block Config, creds *keystore.Store) (vana.Signer, error) {
	switch block.Type {
	case "gcs":
		cred, err := creds.Lookup(name)
		if err != nil {
			return nil, err
		}
		key, err := gcs.LoadPrivateKey(cred.PrivateKeyFile)
		if err != nil {
			return nil, err
		}
		return gcs.NewSigner(gcs.Config{
			Endpoint:   block.Endpoint,
			Bucket:     block.Bucket,
			AccessID:   cred.AccessID,
			PrivateKey: key,
			ReadOnly:   block.ReadOnly,
		})

	case "s3":
		cred, err := creds.Lookup(name)
		if err != nil {
			return nil, err
		}
		return s3.NewSigner(ctx, s3.Config{
			Endpoint:        block.Endpoint,
			Bucket:          block.Bucket,
			Region:          block.Region,
			AccessKeyID:     cred.AccessID,
			SecretAccessKey: cred.Secret,
			PathStyleAccess: block.PathStyleAccess,
			ReadOnly:        block.ReadOnly,
		})

	case "memory":
		store := memory.NewStore(block.Endpoint)
		store.SetReadOnly(block.ReadOnly)
		return store, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", block.Type)
	}
}

// Package s3 implements the vana.Signer contract for S3-compatible storage.
// All signing is delegated to the AWS SDK's presigning client; verb, expiry,
// content type and MD5 are passed as native presign parameters.
package s3

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/sagarc03/vana"
)

// Config holds the construction parameters for one named backend block.
type Config struct {
	Endpoint        string
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	PathStyleAccess bool
	ReadOnly        bool
}

// Signer presigns URLs for one bucket with one credential.
type Signer struct {
	bucket   string
	readOnly bool
	client   *s3.Client
	presign  *s3.PresignClient
}

// NewSigner initializes the S3 client with a custom endpoint resolver so
// S3-compatible stores work as well as AWS itself.
func NewSigner(ctx context.Context, cfg Config) (*Signer, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("new s3 signer: bucket is required")
	}

	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	sdkCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("new s3 signer: load sdk config: %w", err)
	}

	client := s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyleAccess
	})

	return &Signer{
		bucket:   cfg.Bucket,
		readOnly: cfg.ReadOnly,
		client:   client,
		presign:  s3.NewPresignClient(client),
	}, nil
}

// ReadOnly reports whether this backend refuses mutating operations.
func (s *Signer) ReadOnly() bool {
	return s.readOnly
}

// Resolve presigns a URL performing verb against key until expiry. For PUT
// the content type and MD5, when given, are bound into the signature by the
// SDK so a mismatched upload is rejected by the store.
func (s *Signer) Resolve(ctx context.Context, key, verb string, expiry time.Time, contentType, contentMD5 string) (string, error) {
	validity := time.Until(expiry)

	switch verb {
	case vana.VerbGet:
		resp, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		}, s3.WithPresignExpires(validity))
		if err != nil {
			return "", fmt.Errorf("s3 presign get %s: %w", key, err)
		}
		return resp.URL, nil

	case vana.VerbPut:
		input := &s3.PutObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		}
		if contentType != "" {
			input.ContentType = aws.String(contentType)
		}
		if contentMD5 != "" {
			input.ContentMD5 = aws.String(contentMD5)
		}
		resp, err := s.presign.PresignPutObject(ctx, input, s3.WithPresignExpires(validity))
		if err != nil {
			return "", fmt.Errorf("s3 presign put %s: %w", key, err)
		}
		return resp.URL, nil

	case vana.VerbHead:
		resp, err := s.presign.PresignHeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		}, s3.WithPresignExpires(validity))
		if err != nil {
			return "", fmt.Errorf("s3 presign head %s: %w", key, err)
		}
		return resp.URL, nil

	default:
		return "", fmt.Errorf("s3 presign: verb %q: %w", verb, vana.ErrInvalidInput)
	}
}

// Copy is not offered by the presigning surface of this backend.
func (s *Signer) Copy(ctx context.Context, destKey, sourceRef string, expiry time.Time) (string, error) {
	return "", fmt.Errorf("s3 backend has no presigned copy: %w", vana.ErrUnsupported)
}

// StartResumableUpload is not offered by this backend.
func (s *Signer) StartResumableUpload(ctx context.Context, key string) (string, error) {
	return "", fmt.Errorf("s3 backend has no resumable session initiation: %w", vana.ErrUnsupported)
}

// Delete removes key from the bucket. S3 delete is idempotent: deleting an
// absent key succeeds.
func (s *Signer) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s: %w", key, err)
	}
	return nil
}

// Exists probes key with a HeadObject call.
func (s *Signer) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return false, nil
		}
		return false, fmt.Errorf("s3 exists %s: %w", key, err)
	}
	return true, nil
}

var _ vana.Signer = (*Signer)(nil)

package upload

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/nhsdigital/cgp-client/drs"
)

// Pusher pushes a local file's bytes to the object store named by a
// negotiated upload method.
type Pusher interface {
	Push(ctx context.Context, path string, method *Method) error
}

// S3Pusher uploads whole files to S3 with the short-lived credentials
// returned by the upload negotiation. There are no automatic retries:
// the negotiated credentials cannot be assumed safe to reuse, so
// retrying means re-negotiating, which is the caller's call.
type S3Pusher struct {
	// DryRun skips the network push entirely and reports success, for
	// rehearsing the rest of the pipeline without touching live storage.
	DryRun bool
	Logger *slog.Logger
}

func NewS3Pusher(dryRun bool, logger *slog.Logger) *S3Pusher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &S3Pusher{DryRun: dryRun, Logger: logger}
}

func (p *S3Pusher) Push(ctx context.Context, path string, method *Method) error {
	if method.Type != MethodS3 {
		return drs.NewError(drs.KindUnsupportedMethod,
			fmt.Sprintf("unsupported upload method type: %s", method.Type), nil)
	}

	if p.DryRun {
		p.Logger.Info("dry run, skipping uploading S3 object", "path", path)
		return nil
	}

	bucket, key, err := ParseS3URL(method.AccessURL.URL)
	if err != nil {
		return err
	}

	client, err := p.newS3Client(ctx, method)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return drs.NewError(drs.KindLocalIO, fmt.Sprintf("opening %s for upload", path), err)
	}
	defer f.Close()

	p.Logger.Info("uploading file", "path", path, "bucket", bucket, "key", key)
	uploader := manager.NewUploader(client)
	if _, err := uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   f,
	}); err != nil {
		return drs.NewError(drs.KindNetwork, fmt.Sprintf("uploading %s to s3://%s/%s", path, bucket, key), err)
	}
	p.Logger.Info("uploaded successfully", "url", method.AccessURL.URL)
	return nil
}

// newS3Client builds a short-lived S3 client from the credentials in
// the upload method. Missing required credential fields are a
// configuration error, distinct from any transient network failure.
func (p *S3Pusher) newS3Client(ctx context.Context, method *Method) (*s3.Client, error) {
	accessKey, ok := method.Credentials[CredentialAccessKeyID]
	if !ok || accessKey == "" {
		return nil, drs.NewError(drs.KindCredentials, "upload method missing AccessKeyId", nil)
	}
	secretKey, ok := method.Credentials[CredentialSecretAccessKey]
	if !ok || secretKey == "" {
		return nil, drs.NewError(drs.KindCredentials, "upload method missing SecretAccessKey", nil)
	}
	sessionToken := method.Credentials[CredentialSessionToken]

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, sessionToken)),
	}
	if method.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(method.Region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, drs.NewError(drs.KindCredentials, "error creating S3 client", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// ParseS3URL splits an s3://bucket/key URL into bucket and key.
func ParseS3URL(s3URL string) (bucket string, key string, err error) {
	trimmed, ok := strings.CutPrefix(s3URL, "s3://")
	if !ok {
		return "", "", drs.NewError(drs.KindURLFormat, fmt.Sprintf("not an s3 URL: %s", s3URL), nil)
	}
	bucket, key, ok = strings.Cut(trimmed, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", drs.NewError(drs.KindURLFormat, fmt.Sprintf("cannot parse s3 URL: %s", s3URL), nil)
	}
	return bucket, key, nil
}

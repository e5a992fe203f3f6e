package backup

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/writer/internal/common"
	"github.com/dmitrijs2005/writer/internal/netx"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
	listObjectsV2 = func(c *s3.Client, ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
		return c.ListObjectsV2(ctx, in, optFns...)
	}
)

const defaultPresignTTL = 15 * time.Minute

// S3Options configures an S3-compatible bucket (AWS, MinIO, ...).
type S3Options struct {
	Bucket       string        `yaml:"bucket"`
	Region       string        `yaml:"region"`
	BaseEndpoint string        `yaml:"base_endpoint"`
	AccessKey    string        `yaml:"access_key"`
	SecretKey    string        `yaml:"secret_key"`
	Prefix       string        `yaml:"prefix"`
	PathStyle    bool          `yaml:"path_style"`
	PresignTTL   time.Duration `yaml:"presign_ttl"`
}

func (o S3Options) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Region, validation.When(o.Bucket != "", validation.Required)),
		validation.Field(&o.BaseEndpoint, is.URL),
		validation.Field(&o.PresignTTL, validation.Min(time.Duration(0))),
	)
}

// Configured reports whether enough is set to reach a bucket.
func (o S3Options) Configured() bool {
	return o.Bucket != "" && o.Region != ""
}

// S3Remote stores backups as objects under Prefix. Transfers go through
// presigned URLs so the payload never passes through the SDK.
type S3Remote struct {
	opts S3Options
}

func NewS3Remote(opts S3Options) *S3Remote {
	if opts.PresignTTL <= 0 {
		opts.PresignTTL = defaultPresignTTL
	}
	return &S3Remote{opts: opts}
}

func (r *S3Remote) Name() string { return "s3" }

func (r *S3Remote) key(name string) string { return r.opts.Prefix + name }

func (r *S3Remote) client(ctx context.Context) (*s3.Client, error) {
	if !r.opts.Configured() {
		return nil, common.ErrRemoteNotConfigured
	}

	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(r.opts.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			r.opts.AccessKey,
			r.opts.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if r.opts.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(r.opts.BaseEndpoint)
		}
		o.UsePathStyle = r.opts.PathStyle
	}), nil
}

func (r *S3Remote) Upload(ctx context.Context, name string, body io.Reader) error {
	c, err := r.client(ctx)
	if err != nil {
		return err
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("failed to read backup: %w", err)
	}

	req, err := presignPutObject(newS3PresignClient(c), ctx, &s3.PutObjectInput{
		Bucket: aws.String(r.opts.Bucket),
		Key:    aws.String(r.key(name)),
	}, s3.WithPresignExpires(r.opts.PresignTTL))
	if err != nil {
		return fmt.Errorf("failed to presign put: %w", err)
	}

	return netx.UploadToPresignedURL(ctx, req.URL, data)
}

func (r *S3Remote) Download(ctx context.Context, name string) (io.ReadCloser, error) {
	c, err := r.client(ctx)
	if err != nil {
		return nil, err
	}

	req, err := presignGetObject(newS3PresignClient(c), ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.opts.Bucket),
		Key:    aws.String(r.key(name)),
	}, s3.WithPresignExpires(r.opts.PresignTTL))
	if err != nil {
		return nil, fmt.Errorf("failed to presign get: %w", err)
	}

	data, err := netx.DownloadFromPresignedURL(ctx, req.URL)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (r *S3Remote) Latest(ctx context.Context) (string, error) {
	c, err := r.client(ctx)
	if err != nil {
		return "", err
	}

	var (
		keys  []string
		token *string
	)
	for {
		out, err := listObjectsV2(c, ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(r.opts.Bucket),
			Prefix:            aws.String(r.opts.Prefix + backupNamePrefix),
			ContinuationToken: token,
		})
		if err != nil {
			return "", fmt.Errorf("failed to list objects: %w", err)
		}
		for _, obj := range out.Contents {
			keys = append(keys, strings.TrimPrefix(aws.ToString(obj.Key), r.opts.Prefix))
		}
		if !aws.ToBool(out.IsTruncated) || out.NextContinuationToken == nil {
			break
		}
		token = out.NextContinuationToken
	}

	name := newest(keys)
	if name == "" {
		return "", common.ErrBackupNotFound
	}
	return name, nil
}

package upload

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3Config describes an S3-compatible bucket such as Cloudflare R2.
type S3Config struct {
	Endpoint        string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	PublicURL       string
	Region          string
}

func (c S3Config) complete() bool {
	return c.Endpoint != "" && c.Bucket != "" && c.AccessKeyID != "" &&
		c.SecretAccessKey != "" && c.PublicURL != ""
}

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 uploads images as public objects in a bucket.
type S3 struct {
	cfg    S3Config
	client putObjectAPI
	now    func() time.Time
}

// NewS3 creates an uploader. An incomplete config is reported on Upload.
func NewS3(cfg S3Config) *S3 {
	if cfg.Region == "" {
		cfg.Region = "auto"
	}
	cfg.PublicURL = strings.TrimRight(cfg.PublicURL, "/")

	u := &S3{cfg: cfg, now: time.Now}
	if cfg.complete() {
		u.client = s3.New(s3.Options{
			BaseEndpoint: aws.String(cfg.Endpoint),
			Credentials: credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			),
			Region:       cfg.Region,
			UsePathStyle: true,
		})
	}
	return u
}

// Upload puts the file at path into the bucket and returns its public URL.
func (u *S3) Upload(ctx context.Context, path string) (string, error) {
	if !u.cfg.complete() || u.client == nil {
		return "", fmt.Errorf("%w: set the GRUBMAP_S3_* variables", ErrNotConfigured)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	key := u.objectKey(path)
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.cfg.Bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType(path)),
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return fmt.Sprintf("%s/%s", u.cfg.PublicURL, key), nil
}

func (u *S3) objectKey(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	return fmt.Sprintf("restaurants/%d_%s%s", u.now().Unix(), uuid.New().String(), ext)
}

func contentType(path string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

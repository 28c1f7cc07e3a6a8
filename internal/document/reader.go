// Package document loads résumé and job description text from local files
// or S3-compatible object storage.
package document

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"

	"atscore/internal/config"
	"atscore/internal/errors"
	"atscore/internal/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectGetter is the slice of the S3 API the reader uses.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Reader reads documents by path or s3:// URI.
type Reader struct {
	maxSize int64
	logger  *errors.Logger

	s3Config config.S3Config
	s3Once   sync.Once
	s3       ObjectGetter
	s3Err    error
}

// Option configures a Reader
type Option func(*Reader)

// WithObjectGetter injects the S3 client, skipping lazy construction.
func WithObjectGetter(g ObjectGetter) Option {
	return func(r *Reader) {
		r.s3 = g
		r.s3Once.Do(func() {})
	}
}

// NewReader creates a reader that rejects documents over maxSize bytes.
func NewReader(cfg config.DocumentConfig, maxSize int64, logger *errors.Logger, opts ...Option) *Reader {
	if logger == nil {
		logger = errors.Discard()
	}
	r := &Reader{maxSize: maxSize, logger: logger, s3Config: cfg.S3}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Read returns the plain text of source.
func (r *Reader) Read(ctx context.Context, source string) (string, error) {
	var (
		data []byte
		err  error
	)
	if bucket, key, ok := utils.ParseS3URI(source); ok {
		data, err = r.download(ctx, bucket, key)
	} else {
		data, err = r.readFile(source)
	}
	if err != nil {
		return "", err
	}

	text, err := Extract(source, data)
	if err != nil {
		return "", err
	}
	r.logger.Debug("Document loaded",
		"source", source,
		"bytes", len(data),
		"characters", len(text))
	return text, nil
}

func (r *Reader) readFile(filename string) ([]byte, error) {
	if _, err := utils.ValidateInputFile(filename, r.maxSize); err != nil {
		code := errors.ErrCodeFileNotReadable
		switch {
		case stderrors.Is(err, fs.ErrNotExist):
			code = errors.ErrCodeFileNotFound
		case stderrors.Is(err, utils.ErrFileTooLarge):
			code = errors.ErrCodeFileTooLarge
		}
		return nil, errors.NewIOError(code, fmt.Sprintf("Invalid file %s", filename), err)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}
	return data, nil
}

func (r *Reader) download(ctx context.Context, bucket, key string) ([]byte, error) {
	client, err := r.client(ctx)
	if err != nil {
		return nil, err
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.NewNetworkError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to get object s3://%s/%s", bucket, key), err)
	}
	defer func() {
		if cerr := out.Body.Close(); cerr != nil {
			r.logger.Warn("Failed to close object body", "bucket", bucket, "key", key, "error", cerr)
		}
	}()

	body := io.Reader(out.Body)
	if r.maxSize > 0 {
		body = io.LimitReader(out.Body, r.maxSize+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, errors.NewNetworkError(errors.ErrCodeFileNotReadable,
			"Failed to read object body", err)
	}
	if r.maxSize > 0 && int64(len(data)) > r.maxSize {
		return nil, errors.NewIOError(errors.ErrCodeFileTooLarge,
			fmt.Sprintf("Object s3://%s/%s exceeds %s", bucket, key, utils.FormatFileSize(r.maxSize)), nil)
	}
	return data, nil
}

func (r *Reader) client(ctx context.Context) (ObjectGetter, error) {
	r.s3Once.Do(func() {
		r.s3, r.s3Err = NewS3Client(ctx, r.s3Config)
	})
	if r.s3Err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			"Failed to create S3 client", r.s3Err)
	}
	return r.s3, nil
}

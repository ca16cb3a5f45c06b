// Package archiver writes a day of records as gzip-compressed JSON lines and
// uploads the file to an S3 bucket, refusing to overwrite an existing object.
package archiver

import (
	"compress/gzip"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	FileExt             = ".jsonl.gz"
	LocalTempDirPattern = "runclub-archiver-*"
)

var ErrFileAlreadyExists = errors.New("file already exists")

// ObjectStore is the part of *s3.Client the archiver talks to.
type ObjectStore interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Emit appends one record to the archive.
type Emit func(record any) error

type Archiver struct {
	Store  ObjectStore
	Bucket string

	// Prefix is prepended to every object key, without a leading slash and
	// usually with a trailing one, e.g. "v1/".
	Prefix string

	Realm string
}

// Key is the object key of the archive of day (YYYY-MM-DD).
func (a *Archiver) Key(day string) string {
	return a.Prefix + a.Realm + "/" + a.Realm + "_" + day + FileExt
}

// Archive runs produce, which emits the records of day, and uploads the result.
// It returns the number of records written, or ErrFileAlreadyExists (wrapped)
// before producing anything when the day was already archived.
func (a *Archiver) Archive(ctx context.Context, day string, produce func(emit Emit) error) (int, error) {
	L := log.With().Str("module", "archiver").Str("realm", a.Realm).Str("day", day).Logger()
	key := a.Key(day)

	if err := a.assertNonExistence(ctx, key); err != nil {
		return 0, err
	}

	dir, err := os.MkdirTemp("", LocalTempDirPattern)
	if err != nil {
		return 0, errors.Wrap(err, "failed to create temporary directory")
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			L.Warn().Err(err).Msg("failed to remove temporary directory")
		}
	}()

	localPath := filepath.Join(dir, filepath.Base(key))
	count, err := writeLocal(localPath, produce)
	if err != nil {
		return 0, err
	}
	L.Debug().Int("count", count).Str("localPath", localPath).Msg("archive written locally")

	if err := a.upload(ctx, key, localPath); err != nil {
		return 0, err
	}
	L.Info().
		Str("evt.name", "archive.uploaded").
		Str("key", key).
		Int("count", count).
		Msg("archive uploaded")
	return count, nil
}

func (a *Archiver) assertNonExistence(ctx context.Context, key string) error {
	object, err := a.Store.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var ae smithy.APIError
		if errors.As(err, &ae) && ae.ErrorCode() == "NotFound" {
			return nil
		}
		return errors.Wrap(err, "failed to invoke HeadObject")
	}
	return errors.Wrap(ErrFileAlreadyExists, fmt.Sprintf("%q already exists with LastModified %v", key, aws.ToTime(object.LastModified)))
}

func writeLocal(path string, produce func(emit Emit) error) (count int, err error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, errors.Wrap(err, "failed to open file")
	}
	defer file.Close()

	gz := gzip.NewWriter(file)
	enc := json.NewEncoder(gz)
	err = produce(func(record any) error {
		if err := enc.Encode(record); err != nil {
			return errors.Wrap(err, "failed to encode record")
		}
		count++
		return nil
	})
	if err != nil {
		return 0, err
	}
	if err := gz.Close(); err != nil {
		return 0, errors.Wrap(err, "failed to flush gzip stream")
	}
	return count, nil
}

func (a *Archiver) upload(ctx context.Context, key, localPath string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return errors.Wrap(err, "failed to open file")
	}
	defer file.Close()

	if _, err := a.Store.PutObject(ctx, &s3.PutObjectInput{
		Bucket:            aws.String(a.Bucket),
		Key:               aws.String(key),
		Body:              file,
		ContentType:       aws.String("application/gzip"),
		StorageClass:      types.StorageClassGlacierIr,
		ChecksumAlgorithm: types.ChecksumAlgorithmSha256,
	}); err != nil {
		return errors.Wrap(err, "failed to invoke PutObject")
	}
	return nil
}

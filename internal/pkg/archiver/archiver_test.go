package archiver

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	objects map[string][]byte
}

func (m *memStore) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if _, ok := m.objects[aws.ToString(in.Key)]; !ok {
		return nil, &smithy.GenericAPIError{Code: "NotFound", Message: "Not Found"}
	}
	return &s3.HeadObjectOutput{LastModified: aws.Time(time.Unix(0, 0))}, nil
}

func (m *memStore) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	m.objects[aws.ToString(in.Key)] = b
	return &s3.PutObjectOutput{}, nil
}

func TestArchive(t *testing.T) {
	store := &memStore{objects: map[string][]byte{}}
	a := &Archiver{Store: store, Bucket: "bucket", Prefix: "v1/", Realm: "gift_logs"}
	ctx := context.Background()

	count, err := a.Archive(ctx, "2024-05-10", func(emit Emit) error {
		for i := 1; i <= 3; i++ {
			if err := emit(map[string]int{"id": i}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	body, ok := store.objects["v1/gift_logs/gift_logs_2024-05-10.jsonl.gz"]
	require.True(t, ok)
	gz, err := gzip.NewReader(bytes.NewReader(body))
	require.NoError(t, err)
	var lines []string
	sc := bufio.NewScanner(gz)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	assert.Equal(t, []string{`{"id":1}`, `{"id":2}`, `{"id":3}`}, lines)

	called := false
	_, err = a.Archive(ctx, "2024-05-10", func(emit Emit) error {
		called = true
		return nil
	})
	assert.True(t, errors.Is(err, ErrFileAlreadyExists))
	assert.False(t, called, "nothing is produced for an existing archive")
}

func TestArchiveProduceError(t *testing.T) {
	store := &memStore{objects: map[string][]byte{}}
	a := &Archiver{Store: store, Bucket: "bucket", Realm: "gift_logs"}

	boom := errors.New("boom")
	_, err := a.Archive(context.Background(), "2024-05-11", func(emit Emit) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, store.objects)
}

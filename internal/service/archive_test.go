package service

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
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"runclub.dev/backend/internal/model"
	"runclub.dev/backend/internal/pkg/archiver"
	"runclub.dev/backend/internal/pkg/rcerr"
	"runclub.dev/backend/internal/pkg/testentry"
	"runclub.dev/backend/internal/repo"
)

type memObjectStore map[string][]byte

func (m memObjectStore) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if _, ok := m[aws.ToString(in.Key)]; !ok {
		return nil, &smithy.GenericAPIError{Code: "NotFound"}
	}
	return &s3.HeadObjectOutput{LastModified: aws.Time(time.Now())}, nil
}

func (m memObjectStore) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	m[aws.ToString(in.Key)] = b
	return &s3.PutObjectOutput{}, nil
}

func TestArchiveGiftLogsDay(t *testing.T) {
	db := testentry.DB(t)
	ctx := context.Background()
	giftRepo := repo.NewGift(db)
	store := memObjectStore{}
	s := &Archive{
		GiftRepo: giftRepo,
		archiver: &archiver.Archiver{Store: store, Bucket: "b", Prefix: "v1/", Realm: RealmGiftLogs},
		now:      time.Now,
	}

	for _, at := range []time.Time{
		localTime(t, "2024-05-09", 23, 59, 59),
		localTime(t, "2024-05-10", 0, 0, 0),
		localTime(t, "2024-05-10", 23, 59, 59),
		localTime(t, "2024-05-11", 0, 0, 0),
	} {
		require.NoError(t, giftRepo.CreateLog(ctx, db, &model.GiftLog{
			ChallengeID: 1, FromUserID: 1, ToUserID: 2, Distance: 1, CreatedAt: at,
		}))
	}

	count, err := s.archiveDay(ctx, "2024-05-10")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	body, ok := store["v1/gift_logs/gift_logs_2024-05-10.jsonl.gz"]
	require.True(t, ok)
	gz, err := gzip.NewReader(bytes.NewReader(body))
	require.NoError(t, err)
	var ids []int
	sc := bufio.NewScanner(gz)
	for sc.Scan() {
		var l model.GiftLog
		require.NoError(t, json.Unmarshal(sc.Bytes(), &l))
		ids = append(ids, l.ID)
	}
	assert.Equal(t, []int{2, 3}, ids)

	count, err = s.archiveDay(ctx, "2024-05-10")
	require.NoError(t, err, "an existing archive is not an error")
	assert.Zero(t, count)

	_, err = s.archiveDay(ctx, "2024-13-01")
	assert.ErrorIs(t, err, rcerr.ErrInvalidReq)
}

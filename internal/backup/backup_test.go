package backup

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/helpkeeper/internal/common"
	"github.com/dmitrijs2005/helpkeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSink_PutGet(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "backups")
	sink, err := NewFileSink(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, sink.Put(ctx, "articles.json", []byte(`{"version":1}`)))
	got, err := sink.Get(ctx, "articles.json")
	require.NoError(t, err)
	assert.Equal(t, `{"version":1}`, string(got))

	// path components are stripped
	require.NoError(t, sink.Put(ctx, "../../escape.json", []byte("x")))
	_, err = os.Stat(filepath.Join(dir, "escape.json"))
	assert.NoError(t, err)

	_, err = sink.Get(ctx, "missing.json")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDocuments(t *testing.T) {
	doc := Articles{
		Version:   FormatVersion,
		CreatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Articles:  []models.Article{{ID: 3, Title: "Go", Body: "YQ==", Encrypted: true}},
	}
	data, err := Encode(doc)
	require.NoError(t, err)

	got, err := DecodeArticles(data)
	require.NoError(t, err)
	assert.Equal(t, doc.Articles, got.Articles)
	assert.True(t, doc.CreatedAt.Equal(got.CreatedAt))

	_, err = DecodeArticles([]byte(`{"version":2}`))
	assert.Error(t, err)
	_, err = DecodeArticles([]byte(`not json`))
	assert.Error(t, err)

	gdata, err := Encode(Groups{Version: FormatVersion, Groups: []GroupRecord{{
		Group:      models.Group{ID: "g1", Name: "G", Type: models.GroupSpecial},
		Members:    []models.Membership{{GroupID: "g1", Username: "ann", Role: "Instructor", Rights: models.Rights{CanAdmin: true}}},
		ArticleIDs: []int64{3},
	}}})
	require.NoError(t, err)
	assert.Contains(t, string(gdata), `"name": "G"`)

	groups, err := DecodeGroups(gdata)
	require.NoError(t, err)
	require.Len(t, groups.Groups, 1)
	assert.True(t, groups.Groups[0].Members[0].CanAdmin)

	_, err = DecodeGroups([]byte(`{"version":0}`))
	assert.Error(t, err)
}

type fakeS3 struct {
	objects map[string][]byte
	putErr  error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Bucket+"/"+*in.Key] = b
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	b, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(b))}, nil
}

func withSeams(t *testing.T, client s3API, loadErr error) *s3.Options {
	t.Helper()
	origLoad, origNew := loadDefaultAWSConfig, newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			if err := fn(&lo); err != nil {
				return aws.Config{}, err
			}
		}
		if loadErr != nil {
			return aws.Config{}, loadErr
		}
		return aws.Config{Region: lo.Region}, nil
	}

	captured := &s3.Options{}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) s3API {
		for _, fn := range optFns {
			fn(captured)
		}
		return client
	}
	return captured
}

func TestS3Sink_PutGet(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}}
	opts := withSeams(t, fake, nil)

	sink, err := NewS3Sink(context.Background(), S3Config{
		Bucket:       "helpkeeper",
		Region:       "us-east-1",
		BaseEndpoint: "http://127.0.0.1:9000",
		AccessKey:    "minioadmin",
		SecretKey:    "minioadmin",
		Prefix:       "backups",
	})
	require.NoError(t, err)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)

	ctx := context.Background()
	require.NoError(t, sink.Put(ctx, "groups.json", []byte("{}")))
	assert.Contains(t, fake.objects, "helpkeeper/backups/groups.json")

	got, err := sink.Get(ctx, "groups.json")
	require.NoError(t, err)
	assert.Equal(t, "{}", string(got))

	_, err = sink.Get(ctx, "nope.json")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestS3Sink_Errors(t *testing.T) {
	_, err := NewS3Sink(context.Background(), S3Config{})
	assert.Error(t, err, "bucket is required")

	withSeams(t, &fakeS3{}, errors.New("no creds"))
	_, err = NewS3Sink(context.Background(), S3Config{Bucket: "b"})
	assert.ErrorContains(t, err, "no creds")

	fake := &fakeS3{objects: map[string][]byte{}, putErr: errors.New("denied")}
	withSeams(t, fake, nil)
	sink, err := NewS3Sink(context.Background(), S3Config{Bucket: "b"})
	require.NoError(t, err)
	assert.ErrorContains(t, sink.Put(context.Background(), "a.json", nil), "denied")
}

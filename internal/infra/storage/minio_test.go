package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjects struct {
	bucket, key, contentType string
	body                     []byte
	exists                   bool
	err                      error
}

func (f *fakeObjects) PutObject(_ context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.err != nil {
		return minio.UploadInfo{}, f.err
	}
	f.bucket, f.key, f.contentType = bucket, key, opts.ContentType
	f.body, _ = io.ReadAll(r)
	if int64(len(f.body)) != size {
		return minio.UploadInfo{}, errors.New("size mismatch")
	}
	return minio.UploadInfo{Bucket: bucket, Key: key, Size: size}, nil
}

func (f *fakeObjects) BucketExists(context.Context, string) (bool, error) {
	return f.exists, f.err
}

func TestPut(t *testing.T) {
	objs := &fakeObjects{}
	s := &Store{client: objs, bucketName: "results"}

	err := s.Put(context.Background(), "20250114_093012", "step1_analysis", map[string]any{"entry_points": []string{"api"}})
	require.NoError(t, err)

	assert.Equal(t, "results", objs.bucket)
	assert.Equal(t, "20250114_093012/step1_analysis.json", objs.key)
	assert.Equal(t, "application/json", objs.contentType)
	assert.JSONEq(t, `{"entry_points":["api"]}`, string(objs.body))
}

func TestPut_Error(t *testing.T) {
	boom := errors.New("access denied")
	s := &Store{client: &fakeObjects{err: boom}, bucketName: "results"}

	err := s.Put(context.Background(), "s", "step", 1)
	assert.ErrorIs(t, err, boom)
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "abc/step3_threats_aws.json", ObjectKey("abc", "step3_threats_aws"))
	assert.Equal(t, ".._etc/step.json", ObjectKey("../etc", "step"))
	assert.Equal(t, "_/step.json", ObjectKey("", "step"))
	assert.Equal(t, "_/step.json", ObjectKey("..", "step"))
}

func TestCheck(t *testing.T) {
	s := &Store{client: &fakeObjects{exists: true}, bucketName: "results"}
	assert.NoError(t, s.Check(context.Background()))

	s = &Store{client: &fakeObjects{exists: false}, bucketName: "results"}
	assert.Error(t, s.Check(context.Background()))
}

package storage

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/port"
)

func TestLocalFileStorage(t *testing.T) {
	ctx := context.Background()
	s := NewLocalFileStorage(t.TempDir(), "http://localhost:8080/files/", zap.NewNop())

	u, err := s.Put(ctx, "bills/k1/note de frais.png", []byte("png"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/files/bills/k1/note%20de%20frais.png", u)

	data, err := s.Get(ctx, "bills/k1/note de frais.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)

	require.NoError(t, s.Delete(ctx, "bills/k1/note de frais.png"))
	require.NoError(t, s.Delete(ctx, "bills/k1/note de frais.png"), "delete is idempotent")

	_, err = s.Get(ctx, "bills/k1/note de frais.png")
	assert.ErrorIs(t, err, port.ErrNotFound)
}

func TestLocalFileStorage_PathEscape(t *testing.T) {
	s := NewLocalFileStorage(t.TempDir(), "http://localhost", zap.NewNop())

	_, err := s.Put(context.Background(), "../outside.png", []byte("x"), "image/png")
	assert.Error(t, err)

	_, err = s.Get(context.Background(), "../../etc/passwd")
	assert.Error(t, err)
}

type fakeS3 struct {
	objects map[string][]byte
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Storage(t *testing.T) {
	ctx := context.Background()
	client := &fakeS3{objects: map[string][]byte{}}
	s := NewS3Storage(client, "billed", "eu-west-3", "/receipts/", "", zap.NewNop())

	u, err := s.Put(ctx, "bills/k1/a.png", []byte("png"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "https://billed.s3.eu-west-3.amazonaws.com/receipts/bills/k1/a.png", u)
	assert.Contains(t, client.objects, "receipts/bills/k1/a.png")

	data, err := s.Get(ctx, "bills/k1/a.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)

	require.NoError(t, s.Delete(ctx, "bills/k1/a.png"))
	_, err = s.Get(ctx, "bills/k1/a.png")
	assert.ErrorIs(t, err, port.ErrNotFound)
}

func TestS3Storage_KeyCannotEscapePrefix(t *testing.T) {
	client := &fakeS3{objects: map[string][]byte{}}
	s := NewS3Storage(client, "billed", "eu-west-3", "receipts", "https://cdn.test", zap.NewNop())

	u, err := s.Put(context.Background(), "../../x.png", []byte("x"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/receipts/x.png", u)
}

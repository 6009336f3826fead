package filestore

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/require"

	"github.com/xxxsen/propinspect/internal/config"
	appErr "github.com/xxxsen/propinspect/internal/pkg/errors"
)

func TestLocalStoreSaveAndOpen(t *testing.T) {
	store, err := New(config.FileStoreConfig{Type: "local", Data: map[string]interface{}{"dir": t.TempDir()}})
	require.NoError(t, err)
	require.Equal(t, "local", store.Type())

	ctx := context.Background()
	payload := []byte("photo-bytes")
	require.NoError(t, store.Save(ctx, "insp_photo.jpg", bytes.NewReader(payload), int64(len(payload)), "image/jpeg"))

	rc, err := store.Open(ctx, "insp_photo.jpg")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, payload, data)

	_, err = store.Open(ctx, "missing.jpg")
	require.ErrorIs(t, err, appErr.ErrNotFound)

	require.NoError(t, store.Delete(ctx, "insp_photo.jpg"))
	_, err = store.Open(ctx, "insp_photo.jpg")
	require.ErrorIs(t, err, appErr.ErrNotFound)
	require.NoError(t, store.Delete(ctx, "insp_photo.jpg"))
}

func TestLocalStoreRejectsPathKeys(t *testing.T) {
	store, err := New(config.FileStoreConfig{Type: "local", Data: map[string]interface{}{"dir": t.TempDir()}})
	require.NoError(t, err)
	ctx := context.Background()
	for _, key := range []string{"", "..", "../etc/passwd", `a\b`, "a/b"} {
		require.ErrorIs(t, store.Save(ctx, key, strings.NewReader("x"), 1, "image/png"), ErrInvalidKey)
		_, err := store.Open(ctx, key)
		require.ErrorIs(t, err, ErrInvalidKey)
		require.ErrorIs(t, store.Delete(ctx, key), ErrInvalidKey)
	}
}

func TestNewUnknownType(t *testing.T) {
	_, err := New(config.FileStoreConfig{Type: "ftp"})
	require.Error(t, err)
	_, err = New(config.FileStoreConfig{Type: "local"})
	require.Error(t, err)
}

type fakeS3 struct {
	objects map[string][]byte
	types   map[string]string
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = data
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
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

func TestS3StoreUsesPrefix(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
	store := newS3Store(fake, "bucket", "/photos/")
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "a.png", strings.NewReader("png"), 3, "image/png"))
	require.Contains(t, fake.objects, "photos/a.png")
	require.Equal(t, "image/png", fake.types["photos/a.png"])

	rc, err := store.Open(ctx, "a.png")
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	require.Equal(t, "png", string(data))

	_, err = store.Open(ctx, "b.png")
	require.ErrorIs(t, err, appErr.ErrNotFound)

	require.NoError(t, store.Delete(ctx, "a.png"))
	require.NotContains(t, fake.objects, "photos/a.png")
}

package storage_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"portfolio-admin-backend/pkg/storage"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSupabaseStorageUpload(t *testing.T) {
	t.Run("Should post the object with upsert and cache headers", func(t *testing.T) {
		var gotPath, gotAuth, gotUpsert, gotCache, gotType string
		var gotBody []byte
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotAuth = r.Header.Get("Authorization")
			gotUpsert = r.Header.Get("x-upsert")
			gotCache = r.Header.Get("cache-control")
			gotType = r.Header.Get("Content-Type")
			gotBody, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		store := storage.NewSupabaseStorage(srv.URL+"/", "service-key", "portfolio")
		err := store.Upload(context.Background(), "skills/1_abc.jpg", []byte("jpeg"), storage.DefaultImageOptions)
		require.NoError(t, err)

		assert.Equal(t, "/storage/v1/object/portfolio/skills/1_abc.jpg", gotPath)
		assert.Equal(t, "Bearer service-key", gotAuth)
		assert.Equal(t, "true", gotUpsert)
		assert.Equal(t, "no-cache", gotCache)
		assert.Equal(t, "image/jpeg", gotType)
		assert.Equal(t, []byte("jpeg"), gotBody)
	})

	t.Run("Should surface the storage error body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"Bucket not found"}`))
		}))
		defer srv.Close()

		store := storage.NewSupabaseStorage(srv.URL, "k", "missing")
		err := store.Upload(context.Background(), "a.jpg", nil, storage.DefaultImageOptions)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Bucket not found")
	})
}

func TestSupabasePublicURL(t *testing.T) {
	store := storage.NewSupabaseStorage("https://abc.supabase.co", "k", "portfolio")
	assert.Equal(t, "https://abc.supabase.co/storage/v1/object/public/portfolio/projects/x.jpg", store.PublicURL("projects/x.jpg"))
}

type MockS3 struct {
	mock.Mock
}

func (m *MockS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

func TestS3Storage(t *testing.T) {
	t.Run("Should put the object in the configured bucket", func(t *testing.T) {
		client := new(MockS3)
		client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
			return aws.ToString(in.Bucket) == "media" &&
				aws.ToString(in.Key) == "contact/1.jpg" &&
				aws.ToString(in.CacheControl) == "no-cache" &&
				in.IfNoneMatch == nil
		})).Return(&s3.PutObjectOutput{}, nil)

		store := storage.NewS3StorageWithClient(client, storage.S3Config{Bucket: "media", Region: "eu-west-1"})
		require.NoError(t, store.Upload(context.Background(), "contact/1.jpg", []byte("x"), storage.DefaultImageOptions))
		client.AssertExpectations(t)
	})

	t.Run("Should build public urls for aws, endpoints and cdn", func(t *testing.T) {
		awsStore := storage.NewS3StorageWithClient(nil, storage.S3Config{Bucket: "media", Region: "eu-west-1"})
		assert.Equal(t, "https://media.s3.eu-west-1.amazonaws.com/a.jpg", awsStore.PublicURL("a.jpg"))

		compat := storage.NewS3StorageWithClient(nil, storage.S3Config{Bucket: "media", Endpoint: "https://s3.wasabisys.com/"})
		assert.Equal(t, "https://s3.wasabisys.com/media/a.jpg", compat.PublicURL("a.jpg"))

		cdn := storage.NewS3StorageWithClient(nil, storage.S3Config{Bucket: "media", PublicBaseURL: "https://cdn.example.com"})
		assert.Equal(t, "https://cdn.example.com/a.jpg", cdn.PublicURL("a.jpg"))
	})
}

package storage_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kirangautam45/userprofile/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupabaseStorage_URL(t *testing.T) {
	s := storage.NewSupabaseStorage(storage.SupabaseConfig{
		BaseURL: "https://proj.supabase.co/",
		Key:     "key",
		Bucket:  "avatars",
	})

	assert.Equal(t, "https://proj.supabase.co/storage/v1/object/public/avatars/alice_1.png", s.URL("alice_1.png"))
	assert.Empty(t, s.URL(""))
	assert.NoError(t, s.Remove(context.Background(), "alice_1.png"))
}

func TestSupabaseStorage_Store(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		expectedErr error
	}{
		{name: "Успешная загрузка", status: http.StatusOK},
		{name: "Отказ сервера", status: http.StatusBadRequest, expectedErr: storage.ErrUploadFailed},
		{name: "Создано, но не 200", status: http.StatusCreated, expectedErr: storage.ErrUploadFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				gotMethod, gotPath, gotBody string
				gotHeader                   http.Header
			)
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotMethod = r.Method
				gotPath = r.URL.Path
				gotHeader = r.Header.Clone()
				body, _ := io.ReadAll(r.Body)
				gotBody = string(body)
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			s := storage.NewSupabaseStorage(storage.SupabaseConfig{
				BaseURL: srv.URL,
				Key:     "secret-key",
				Bucket:  "avatars",
				Timeout: 5 * time.Second,
			})

			key, err := s.Store(context.Background(), strings.NewReader("png-bytes"), 9, "alice_1.png", "image/png")

			assert.Equal(t, http.MethodPost, gotMethod)
			assert.Equal(t, "/storage/v1/object/avatars/alice_1.png", gotPath)
			assert.Equal(t, "Bearer secret-key", gotHeader.Get("Authorization"))
			assert.Equal(t, "secret-key", gotHeader.Get("ApiKey"))
			assert.Equal(t, "image/png", gotHeader.Get("Content-Type"))
			assert.Equal(t, "true", gotHeader.Get("x-upsert"))
			assert.Equal(t, "png-bytes", gotBody)

			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				assert.Empty(t, key)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "alice_1.png", key)
		})
	}
}

func TestSupabaseStorage_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	s := storage.NewSupabaseStorage(storage.SupabaseConfig{BaseURL: baseURL, Key: "k", Bucket: "avatars", Timeout: time.Second})
	_, err := s.Store(context.Background(), strings.NewReader("x"), 1, "a_1.png", "image/png")
	require.ErrorIs(t, err, storage.ErrUploadFailed)
}

func TestSupabaseStorage_Timeout(t *testing.T) {
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	defer close(done)

	s := storage.NewSupabaseStorage(storage.SupabaseConfig{BaseURL: srv.URL, Key: "k", Bucket: "avatars", Timeout: 50 * time.Millisecond})
	_, err := s.Store(context.Background(), strings.NewReader("x"), 1, "a_1.png", "image/png")
	require.ErrorIs(t, err, storage.ErrUploadFailed)
}

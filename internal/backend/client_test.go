package backend

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testUser  = uuid.MustParse("0f0f0f0f-0000-4000-8000-00000000000f")
	testImage = uuid.MustParse("11111111-1111-4111-8111-111111111111")
	testTag   = uuid.MustParse("aaaaaaaa-aaaa-4aaa-8aaa-aaaaaaaaaaaa")
	testEdge  = uuid.MustParse("e1e1e1e1-0000-4000-8000-000000000001")
)

func newTestClient(t *testing.T, userID uuid.UUID, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Config{BaseURL: server.URL, UserID: userID, RatePerSecond: 1000, Burst: 1000},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return client
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	_, err := New(Config{BaseURL: "backend:8000/api"}, slog.Default())
	assert.Error(t, err)
}

func TestClient_ListImages(t *testing.T) {
	client := newTestClient(t, uuid.Nil, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/image/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		_, _ = io.WriteString(w, `[
			{"id":"11111111-1111-4111-8111-111111111111","source":"memes/cat.jpg","description":"a cat","owner":"x"},
			{"id":"22222222-2222-4222-8222-222222222222","source":"memes/clip.mp4","description":""}
		]`)
	})

	images, err := client.ListImages(context.Background())

	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, testImage, images[0].ID)
	assert.Equal(t, "memes/cat.jpg", images[0].Source)
	assert.Equal(t, "a cat", images[0].Description)
}

func TestClient_StatusMapping(t *testing.T) {
	tests := []struct {
		status  int
		wantErr error
	}{
		{http.StatusBadRequest, ErrBadRequest},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusMethodNotAllowed, ErrMethodNotAllowed},
		{http.StatusTooManyRequests, ErrRateLimited},
		{http.StatusInternalServerError, ErrServer},
		{http.StatusBadGateway, ErrServer},
		{http.StatusTeapot, ErrUnexpectedStatus},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			client := newTestClient(t, uuid.Nil, func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "nope", tt.status)
			})

			_, err := client.ListTags(context.Background())

			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)

			var backendErr *Error
			require.ErrorAs(t, err, &backendErr)
			assert.Equal(t, "listTags", backendErr.Op)
			assert.Equal(t, "/api/tag/", backendErr.Path)
			assert.Equal(t, tt.status, backendErr.Status)
		})
	}
}

func TestClient_MalformedJSON(t *testing.T) {
	client := newTestClient(t, uuid.Nil, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"not":"a list"`)
	})

	_, err := client.ListImageTags(context.Background())

	var backendErr *Error
	require.ErrorAs(t, err, &backendErr)
	assert.Contains(t, backendErr.Error(), "parse response")
}

func TestClient_ListImageTags(t *testing.T) {
	client := newTestClient(t, uuid.Nil, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/image-tag/", r.URL.Path)
		_, _ = io.WriteString(w, `[{"id":"e1e1e1e1-0000-4000-8000-000000000001","image":"11111111-1111-4111-8111-111111111111","tag":"aaaaaaaa-aaaa-4aaa-8aaa-aaaaaaaaaaaa"}]`)
	})

	edges, err := client.ListImageTags(context.Background())

	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, testEdge, edges[0].ID)
	assert.Equal(t, testImage, edges[0].Image)
	assert.Equal(t, testTag, edges[0].Tag)
}

func TestClient_CreateImageTag(t *testing.T) {
	client := newTestClient(t, testUser, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/image-tag/new", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, testUser.String(), r.PostForm.Get("user-id"))
		assert.Equal(t, testImage.String(), r.PostForm.Get("image-id"))
		assert.Equal(t, testTag.String(), r.PostForm.Get("tag-id"))
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"imagetag-id":"e1e1e1e1-0000-4000-8000-000000000001"}`)
	})

	edge, err := client.CreateImageTag(context.Background(), testImage, testTag)

	require.NoError(t, err)
	assert.Equal(t, testEdge, edge.ID)
	assert.Equal(t, testImage, edge.Image)
	assert.Equal(t, testTag, edge.Tag)
}

func TestClient_CreateImageTagForbidden(t *testing.T) {
	client := newTestClient(t, testUser, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := client.CreateImageTag(context.Background(), testImage, testTag)

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestClient_MutationsNeedUser(t *testing.T) {
	called := false
	client := newTestClient(t, uuid.Nil, func(http.ResponseWriter, *http.Request) {
		called = true
	})

	_, err := client.CreateImageTag(context.Background(), testImage, testTag)
	assert.ErrorIs(t, err, ErrNoUser)
	_, err = client.CreateTag(context.Background(), "cursed")
	assert.ErrorIs(t, err, ErrNoUser)
	assert.ErrorIs(t, client.DeleteImageTag(context.Background(), testEdge), ErrNoUser)

	assert.False(t, called, "no request should reach the backend")
	assert.False(t, client.CanMutate())
}

func TestClient_DeleteImageTag(t *testing.T) {
	client := newTestClient(t, testUser, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/image-tag/"+testEdge.String(), r.URL.Path)
		_, _ = io.WriteString(w, `{"imagetag-id":"`+testEdge.String()+`"}`)
	})

	assert.NoError(t, client.DeleteImageTag(context.Background(), testEdge))
}

func TestClient_CreateTag(t *testing.T) {
	client := newTestClient(t, testUser, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tag/new", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "deep fried", r.PostForm.Get("tag-name"))
		_, _ = io.WriteString(w, `{"tag-id":"aaaaaaaa-aaaa-4aaa-8aaa-aaaaaaaaaaaa","tag-name":"deep fried"}`)
	})

	tag, err := client.CreateTag(context.Background(), "  deep fried ")

	require.NoError(t, err)
	assert.Equal(t, testTag, tag.ID)
	assert.Equal(t, "deep fried", tag.Name)
}

func TestClient_CreateTagRejectsBlankName(t *testing.T) {
	client := newTestClient(t, testUser, func(http.ResponseWriter, *http.Request) {
		t.Error("blank names must not reach the backend")
	})

	_, err := client.CreateTag(context.Background(), "   ")

	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestClient_GetImageMedia(t *testing.T) {
	client := newTestClient(t, uuid.Nil, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/image/"+testImage.String(), r.URL.Path)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("\x89PNG fake"))
	})

	media, err := client.GetImageMedia(context.Background(), testImage)
	require.NoError(t, err)
	defer media.Body.Close()

	body, err := io.ReadAll(media.Body)
	require.NoError(t, err)
	assert.Equal(t, "image/png", media.ContentType)
	assert.Equal(t, []byte("\x89PNG fake"), body)
	assert.Equal(t, int64(len(body)), media.ContentLength)
}

func TestClient_GetImageMediaNotFound(t *testing.T) {
	client := newTestClient(t, uuid.Nil, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.GetImageMedia(context.Background(), testImage)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_MediaURL(t *testing.T) {
	client, err := New(Config{BaseURL: "http://backend:8000/"}, slog.Default())
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, "http://backend:8000/api/image/"+testImage.String(), client.MediaURL(testImage))
}

package api

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListImages_SkipsUnsupported(t *testing.T) {
	ts := setupTestServer(t)
	doge := ts.fake.AddImage("memes/doge.png", "such wow")
	clip := ts.fake.AddImage("memes/dance.mp4", "")
	ts.fake.AddImage("memes/notes.txt", "")

	resp := ts.api.Get("/api/v1/images")
	require.Equal(t, http.StatusOK, resp.Code)

	env := decodeEnvelope[ListImagesResponse](t, resp.Body.Bytes())
	assert.True(t, env.Success)
	require.Len(t, env.Data.Images, 2)

	byID := map[string]ImageResponse{}
	for _, img := range env.Data.Images {
		byID[img.ID] = img
	}
	assert.Equal(t, "image", byID[doge.String()].Kind)
	assert.Equal(t, "/thumbnails/image/"+doge.String(), byID[doge.String()].ThumbnailURL)
	assert.Equal(t, "video", byID[clip.String()].Kind)
	assert.Equal(t, "/media/"+clip.String(), byID[clip.String()].MediaURL)
}

func TestListImages_BackendDown(t *testing.T) {
	ts := setupTestServer(t)
	ts.fake.Fail(http.MethodGet, "/api/image/", http.StatusBadGateway)

	resp := ts.api.Get("/api/v1/images")

	assert.Equal(t, http.StatusBadGateway, resp.Code)
	env := decodeEnvelope[any](t, resp.Body.Bytes())
	assert.False(t, env.Success)
	assert.Equal(t, "UNAVAILABLE", env.Code)
}

func TestGetImage_OptionsMatchAssignments(t *testing.T) {
	ts := setupTestServer(t)
	img := ts.fake.AddImage("memes/cat.jpg", "")
	grumpy := ts.fake.AddTag("Grumpy")
	ts.fake.AddTag("Happy")
	ts.fake.AddTag("Cat")
	ts.fake.AddEdge(img, grumpy.ID)

	resp := ts.api.Get("/api/v1/images/" + img.String())
	require.Equal(t, http.StatusOK, resp.Code)

	env := decodeEnvelope[ImageDetailResponse](t, resp.Body.Bytes())
	require.Len(t, env.Data.Tags, 3)
	assert.Equal(t, 3, env.Data.TotalTags)
	assert.Equal(t, []string{"Cat", "Grumpy", "Happy"},
		[]string{env.Data.Tags[0].Name, env.Data.Tags[1].Name, env.Data.Tags[2].Name})
	for _, opt := range env.Data.Tags {
		assert.Equal(t, opt.ID == grumpy.ID.String(), opt.Checked, opt.Name)
	}
	require.Len(t, env.Data.Assigned, 1)
	assert.Equal(t, "grumpy", env.Data.Assigned[0].Slug)
}

func TestGetImage_FiltersOptions(t *testing.T) {
	ts := setupTestServer(t)
	img := ts.fake.AddImage("memes/cat.jpg", "")
	ts.fake.AddTag("Grumpy")
	ts.fake.AddTag("Happy")

	resp := ts.api.Get("/api/v1/images/" + img.String() + "?q=grum")
	require.Equal(t, http.StatusOK, resp.Code)

	env := decodeEnvelope[ImageDetailResponse](t, resp.Body.Bytes())
	require.Len(t, env.Data.Tags, 1)
	assert.Equal(t, "Grumpy", env.Data.Tags[0].Name)
	assert.Equal(t, 2, env.Data.TotalTags)
}

func TestGetImage_ReportsDuplicates(t *testing.T) {
	ts := setupTestServer(t)
	img := ts.fake.AddImage("memes/cat.jpg", "")
	tag := ts.fake.AddTag("Cat")
	ts.fake.AddEdge(img, tag.ID)
	ts.fake.AddEdge(img, tag.ID)

	resp := ts.api.Get("/api/v1/images/" + img.String())
	require.Equal(t, http.StatusOK, resp.Code)

	env := decodeEnvelope[ImageDetailResponse](t, resp.Body.Bytes())
	assert.Equal(t, []string{tag.ID.String()}, env.Data.DuplicateTagIDs)
}

func TestGetImage_NotFound(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/images/" + uuid.New().String())

	assert.Equal(t, http.StatusNotFound, resp.Code)
	env := decodeEnvelope[any](t, resp.Body.Bytes())
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestGetImage_MalformedID(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/images/not-a-uuid")

	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	env := decodeEnvelope[any](t, resp.Body.Bytes())
	assert.Equal(t, "VALIDATION", env.Code)
	assert.NotEmpty(t, env.Details)
}

func TestGetImageTags(t *testing.T) {
	ts := setupTestServer(t)
	img := ts.fake.AddImage("memes/cat.jpg", "")
	tag := ts.fake.AddTag("Cat")
	ts.fake.AddTag("Dog")
	ts.fake.AddEdge(img, tag.ID)

	resp := ts.api.Get("/api/v1/images/" + img.String() + "/tags")
	require.Equal(t, http.StatusOK, resp.Code)

	env := decodeEnvelope[ListTagsResponse](t, resp.Body.Bytes())
	require.Len(t, env.Data.Tags, 1)
	assert.Equal(t, tag.ID.String(), env.Data.Tags[0].ID)
}

func TestSetImageTags_AppliesDiff(t *testing.T) {
	ts := setupTestServer(t)
	img := ts.fake.AddImage("memes/cat.jpg", "")
	keep := ts.fake.AddTag("Keep")
	drop := ts.fake.AddTag("Drop")
	add := ts.fake.AddTag("Add")
	ts.fake.AddEdge(img, keep.ID)
	dropped := ts.fake.AddEdge(img, drop.ID)

	resp := ts.api.Put("/api/v1/images/"+img.String()+"/tags", map[string]any{
		"tag_ids": []string{keep.ID.String(), add.ID.String()},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decodeEnvelope[TagChangeResponse](t, resp.Body.Bytes())
	require.Len(t, env.Data.Added, 1)
	assert.Equal(t, add.ID.String(), env.Data.Added[0].TagID)
	assert.Equal(t, []string{dropped.ID.String()}, env.Data.Removed)

	edges := ts.fake.Edges()
	require.Len(t, edges, 2)
	tagIDs := []uuid.UUID{edges[0].Tag, edges[1].Tag}
	assert.ElementsMatch(t, []uuid.UUID{keep.ID, add.ID}, tagIDs)
}

func TestSetImageTags_UnknownTag(t *testing.T) {
	ts := setupTestServer(t)
	img := ts.fake.AddImage("memes/cat.jpg", "")

	resp := ts.api.Put("/api/v1/images/"+img.String()+"/tags", map[string]any{
		"tag_ids": []string{uuid.New().String()},
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	env := decodeEnvelope[any](t, resp.Body.Bytes())
	assert.Equal(t, "VALIDATION", env.Code)
	assert.Empty(t, ts.fake.Edges())
}

func TestSetImageTags_MalformedTagID(t *testing.T) {
	ts := setupTestServer(t)
	img := ts.fake.AddImage("memes/cat.jpg", "")

	resp := ts.api.Put("/api/v1/images/"+img.String()+"/tags", map[string]any{
		"tag_ids": []string{"nope"},
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	env := decodeEnvelope[any](t, resp.Body.Bytes())
	assert.Equal(t, "VALIDATION", env.Code)
}

func TestSetImageTags_ReadOnly(t *testing.T) {
	ts := setupTestServer(t, readOnly())
	img := ts.fake.AddImage("memes/cat.jpg", "")
	tag := ts.fake.AddTag("Cat")

	resp := ts.api.Put("/api/v1/images/"+img.String()+"/tags", map[string]any{
		"tag_ids": []string{tag.ID.String()},
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Empty(t, ts.fake.Edges())
}

func TestSetImageTags_PartialFailureReportsApplied(t *testing.T) {
	ts := setupTestServer(t)
	img := ts.fake.AddImage("memes/cat.jpg", "")
	add := ts.fake.AddTag("Add")
	drop := ts.fake.AddTag("Drop")
	edge := ts.fake.AddEdge(img, drop.ID)
	ts.fake.Fail(http.MethodDelete, "/api/image-tag/"+edge.ID.String(), http.StatusInternalServerError)

	resp := ts.api.Put("/api/v1/images/"+img.String()+"/tags", map[string]any{
		"tag_ids": []string{add.ID.String()},
	})

	assert.Equal(t, http.StatusBadGateway, resp.Code)
	env := decodeEnvelope[any](t, resp.Body.Bytes())
	assert.False(t, env.Success)
	assert.Equal(t, "UNAVAILABLE", env.Code)

	details, ok := env.Details.(map[string]any)
	require.True(t, ok, "details: %v", env.Details)
	applied, ok := details["applied"].(map[string]any)
	require.True(t, ok)
	added, ok := applied["added"].([]any)
	require.True(t, ok)
	require.Len(t, added, 1)
	assert.Equal(t, add.ID.String(), added[0].(map[string]any)["tag_id"])
	assert.Empty(t, applied["removed"])
}

func TestClearImageTags(t *testing.T) {
	ts := setupTestServer(t)
	img := ts.fake.AddImage("memes/cat.jpg", "")
	other := ts.fake.AddImage("memes/dog.jpg", "")
	tag := ts.fake.AddTag("Pet")
	ts.fake.AddEdge(img, tag.ID)
	kept := ts.fake.AddEdge(other, tag.ID)

	resp := ts.api.Delete("/api/v1/images/" + img.String() + "/tags")
	require.Equal(t, http.StatusOK, resp.Code)

	env := decodeEnvelope[TagChangeResponse](t, resp.Body.Bytes())
	assert.Len(t, env.Data.Removed, 1)
	assert.Equal(t, []uuid.UUID{kept.ID}, []uuid.UUID{ts.fake.Edges()[0].ID})
}

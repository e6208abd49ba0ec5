package api

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tagCheckbox = map[string]string{"type": "checkbox", "name": "tag"}

func TestGalleryPage(t *testing.T) {
	ts := setupTestServer(t)
	doge := ts.fake.AddImage("memes/doge.png", "such wow")
	clip := ts.fake.AddImage("memes/dance.webm", "")
	ts.fake.AddImage("memes/readme.md", "")

	rec := ts.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	doc := parseHTML(t, rec.Body.Bytes())
	tiles := findAll(doc, "a", map[string]string{"class": "tile"})
	require.Len(t, tiles, 2)

	imgs := findAll(doc, "img", map[string]string{"src": "/thumbnails/image/" + doge.String()})
	assert.Len(t, imgs, 1)

	// Video frames are disabled, so the tile falls back to the media itself.
	videos := findAll(doc, "video", map[string]string{"src": "/media/" + clip.String() + "#t=0"})
	assert.Len(t, videos, 1)
}

func TestGalleryPage_Empty(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No memes catalogued yet.")
}

func TestGalleryPage_BackendDown(t *testing.T) {
	ts := setupTestServer(t)
	ts.fake.Fail(http.MethodGet, "/api/image/", http.StatusInternalServerError)

	rec := ts.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
}

func TestDetailPage_OneCheckboxPerTag(t *testing.T) {
	ts := setupTestServer(t)
	img := ts.fake.AddImage("memes/cat.jpg", "grumpy cat")
	var assigned []uuid.UUID
	for i, name := range []string{"Cat", "Grumpy", "Monday", "Coffee", "No"} {
		tag := ts.fake.AddTag(name)
		if i%2 == 0 {
			ts.fake.AddEdge(img, tag.ID)
			assigned = append(assigned, tag.ID)
		}
	}

	rec := ts.do(t, http.MethodGet, "/image/"+img.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	doc := parseHTML(t, rec.Body.Bytes())
	boxes := findAll(doc, "input", tagCheckbox)
	require.Len(t, boxes, 5)

	var checked []string
	for _, box := range boxes {
		if _, ok := attr(box, "checked"); ok {
			value, _ := attr(box, "value")
			checked = append(checked, value)
		}
		_, disabled := attr(box, "disabled")
		assert.False(t, disabled)
	}
	want := make([]string, 0, len(assigned))
	for _, id := range assigned {
		want = append(want, id.String())
	}
	assert.ElementsMatch(t, want, checked)

	dialogs := findAll(doc, "dialog", map[string]string{"id": "tag-popper"})
	require.Len(t, dialogs, 1)
	_, open := attr(dialogs[0], "open")
	assert.False(t, open)
}

func TestDetailPage_DuplicateEdgeIsOneCheckbox(t *testing.T) {
	ts := setupTestServer(t)
	img := ts.fake.AddImage("memes/cat.jpg", "")
	tag := ts.fake.AddTag("Cat")
	ts.fake.AddEdge(img, tag.ID)
	ts.fake.AddEdge(img, tag.ID)

	rec := ts.do(t, http.MethodGet, "/image/"+img.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	boxes := findAll(parseHTML(t, rec.Body.Bytes()), "input", tagCheckbox)
	require.Len(t, boxes, 1)
	_, checked := attr(boxes[0], "checked")
	assert.True(t, checked)
}

func TestDetailPage_PopperOpen(t *testing.T) {
	ts := setupTestServer(t)
	img := ts.fake.AddImage("memes/cat.jpg", "")

	rec := ts.do(t, http.MethodGet, "/image/"+img.String()+"?popper=open&done=saved", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	doc := parseHTML(t, rec.Body.Bytes())
	dialogs := findAll(doc, "dialog", map[string]string{"id": "tag-popper"})
	require.Len(t, dialogs, 1)
	_, open := attr(dialogs[0], "open")
	assert.True(t, open)
	assert.Contains(t, rec.Body.String(), "Tags saved.")
}

func TestDetailPage_SearchKeepsHiddenAssignments(t *testing.T) {
	ts := setupTestServer(t)
	img := ts.fake.AddImage("memes/cat.jpg", "")
	grumpy := ts.fake.AddTag("Grumpy")
	happy := ts.fake.AddTag("Happy")
	ts.fake.AddEdge(img, happy.ID)

	rec := ts.do(t, http.MethodGet, "/image/"+img.String()+"?q=grum", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	doc := parseHTML(t, rec.Body.Bytes())
	boxes := findAll(doc, "input", tagCheckbox)
	require.Len(t, boxes, 1)
	value, _ := attr(boxes[0], "value")
	assert.Equal(t, grumpy.ID.String(), value)

	hidden := findAll(doc, "input", map[string]string{"type": "hidden", "name": "tag"})
	require.Len(t, hidden, 1)
	value, _ = attr(hidden[0], "value")
	assert.Equal(t, happy.ID.String(), value)

	// A search opens the popper.
	_, open := attr(findAll(doc, "dialog", map[string]string{"id": "tag-popper"})[0], "open")
	assert.True(t, open)
}

func TestDetailPage_ReadOnlyDisablesEditing(t *testing.T) {
	ts := setupTestServer(t, readOnly())
	img := ts.fake.AddImage("memes/cat.jpg", "")
	ts.fake.AddTag("Cat")

	rec := ts.do(t, http.MethodGet, "/image/"+img.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	boxes := findAll(parseHTML(t, rec.Body.Bytes()), "input", tagCheckbox)
	require.Len(t, boxes, 1)
	_, disabled := attr(boxes[0], "disabled")
	assert.True(t, disabled)
	assert.Contains(t, rec.Body.String(), "Tag editing is disabled")
}

func TestDetailPage_MalformedID(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodGet, "/image/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "is not a valid image ID")
}

func TestDetailPage_NotFound(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodGet, "/image/"+uuid.New().String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitTags_RedirectsAndApplies(t *testing.T) {
	ts := setupTestServer(t)
	img := ts.fake.AddImage("memes/cat.jpg", "")
	keep := ts.fake.AddTag("Keep")
	drop := ts.fake.AddTag("Drop")
	ts.fake.AddEdge(img, drop.ID)

	rec := ts.do(t, http.MethodPost, "/image/"+img.String()+"/tags", url.Values{
		"tag": {keep.ID.String()},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/image/"+img.String(), location.Path)
	assert.Equal(t, "open", location.Query().Get("popper"))
	assert.Equal(t, "saved", location.Query().Get("done"))

	edges := ts.fake.Edges()
	require.Len(t, edges, 1)
	assert.Equal(t, keep.ID, edges[0].Tag)
}

func TestSubmitTags_InvalidTagID(t *testing.T) {
	ts := setupTestServer(t)
	img := ts.fake.AddImage("memes/cat.jpg", "")

	rec := ts.do(t, http.MethodPost, "/image/"+img.String()+"/tags", url.Values{
		"tag": {"bogus"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClearTags(t *testing.T) {
	ts := setupTestServer(t)
	img := ts.fake.AddImage("memes/cat.jpg", "")
	a := ts.fake.AddTag("A")
	b := ts.fake.AddTag("B")
	ts.fake.AddEdge(img, a.ID)
	ts.fake.AddEdge(img, b.ID)

	rec := ts.do(t, http.MethodPost, "/image/"+img.String()+"/tags/clear", url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "done=cleared")
	assert.Empty(t, ts.fake.Edges())
}

func TestNewTag(t *testing.T) {
	ts := setupTestServer(t)
	img := ts.fake.AddImage("memes/cat.jpg", "")

	rec := ts.do(t, http.MethodPost, "/image/"+img.String()+"/tags/new", url.Values{
		"tag-name": {"Caturday"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "done=created")

	tags := ts.fake.Tags()
	require.Len(t, tags, 1)
	assert.Equal(t, "Caturday", tags[0].Name)
	edges := ts.fake.Edges()
	require.Len(t, edges, 1)
	assert.Equal(t, tags[0].ID, edges[0].Tag)
}

func TestNewTag_BlankName(t *testing.T) {
	ts := setupTestServer(t)
	img := ts.fake.AddImage("memes/cat.jpg", "")

	rec := ts.do(t, http.MethodPost, "/image/"+img.String()+"/tags/new", url.Values{
		"tag-name": {""},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, ts.fake.Tags())
}

package confluence

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docpublish/internal/errors"
)

func TestNewClient_NormalizesBaseAddress(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(contentListResponse{Size: 0})
	}))
	defer server.Close()

	client := NewClient(server.URL, "user", "pass")
	_, err := client.ListPages(context.Background())
	require.NoError(t, err)
	require.Equal(t, "/rest/api/content", gotPath)

	// An address already carrying the REST suffix is left alone.
	client = NewClient(server.URL+"/rest/api/", "user", "pass")
	_, err = client.ListPages(context.Background())
	require.NoError(t, err)
	require.Equal(t, "/rest/api/content", gotPath)
}

func TestListPages_PaginatesAndFiltersMetadata(t *testing.T) {
	var starts []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "user", user)
		require.Equal(t, "pass", pass)

		start := r.URL.Query().Get("start")
		starts = append(starts, start)

		if start != "0" {
			_ = json.NewEncoder(w).Encode(contentListResponse{Size: 0})
			return
		}
		_ = json.NewEncoder(w).Encode(contentListResponse{
			Size: 2,
			Results: []contentListResult{
				{
					ID: "100",
					Metadata: contentMetadata{Properties: map[string]docfxProperty{
						"docfx": {Value: docfxPropertyValue{Content: docfxPropertyContent{UID: "a", Href: "a.html"}}},
					}},
				},
				// Page without the docfx property is invisible to reconciliation.
				{ID: "999", Metadata: contentMetadata{}},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "user", "pass")
	pages, err := client.ListPages(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"0", "50"}, starts)
	require.Equal(t, []RemotePage{{ID: "100", UID: "a", Href: "a.html"}}, pages)
}

func TestCreatePage_AttachesMetadataAndReturnsID(t *testing.T) {
	var propertyBody propertyRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/rest/api/content":
			var body createContentRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "page", body.Type)
			require.Equal(t, "TEST", body.Space.Key)
			require.Equal(t, "storage", body.Body.Storage.Representation)
			_ = json.NewEncoder(w).Encode(contentResponse{ID: "200"})
		case r.Method == http.MethodPost && r.URL.Path == "/rest/api/content/200/property":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&propertyBody))
			w.WriteHeader(http.StatusOK)
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "user", "pass")
	id, err := client.CreatePage(context.Background(), "TEST", "Title", "<p>c</p>", "uid-1", "a.html")
	require.NoError(t, err)
	require.Equal(t, "200", id)
	require.Equal(t, "docfx", propertyBody.Key)
	require.Equal(t, "uid-1", propertyBody.Value.Content.UID)
	require.Equal(t, "a.html", propertyBody.Value.Content.Href)
}

func TestCreatePage_MissingIDSurfacesServerMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(contentResponse{Message: "a page with this title already exists"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "user", "pass")
	_, err := client.CreatePage(context.Background(), "TEST", "Title", "c", "uid", "a.html")
	require.Error(t, err)
	require.True(t, errors.IsCategory(err, errors.CategoryConfluence))

	var pe *errors.PublishError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, "a page with this title already exists", pe.Context["server_message"])
}

func TestUpdatePage_SubmitsVersionPlusOne(t *testing.T) {
	var updateBody updateContentRequest
	var propertyDeleted bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/rest/api/content/123":
			_ = json.NewEncoder(w).Encode(contentResponse{
				ID:      "123",
				Space:   spaceDescriptor{Key: "TEST"},
				Version: versionNumber{Number: 4},
			})
		case r.Method == http.MethodPut && r.URL.Path == "/rest/api/content/123":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&updateBody))
			_ = json.NewEncoder(w).Encode(contentResponse{ID: "123"})
		case r.Method == http.MethodDelete && r.URL.Path == "/rest/api/content/123/property/docfx":
			propertyDeleted = true
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodPost && r.URL.Path == "/rest/api/content/123/property":
			require.True(t, propertyDeleted, "property must be deleted before recreation")
			w.WriteHeader(http.StatusOK)
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "user", "pass")
	err := client.UpdatePage(context.Background(), "123", "Title", "<p>new</p>", "uid", "a.html")
	require.NoError(t, err)
	require.Equal(t, 5, updateBody.Version.Number)
	require.Equal(t, "TEST", updateBody.Space.Key)
	require.Equal(t, "<p>new</p>", updateBody.Body.Storage.Value)
}

func TestUpdatePage_FetchWithoutIDIsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(contentResponse{Message: "no content with id"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "user", "pass")
	err := client.UpdatePage(context.Background(), "999", "Title", "c", "uid", "a.html")
	require.Error(t, err)
	require.True(t, errors.IsCategory(err, errors.CategoryNotFound))
}

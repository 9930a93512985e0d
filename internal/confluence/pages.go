package confluence

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"git.home.luguber.info/inful/docpublish/internal/errors"
	"git.home.luguber.info/inful/docpublish/internal/logfields"
)

// listPageSize is the fixed page size for the listing endpoint. Pagination is
// offset-based and stops at the first page reporting zero results.
const listPageSize = 50

const docfxPropertyKey = "docfx"

const docfxPropertyDescription = "DocFX page properties"

// ListPages returns every page that carries DocFX origin metadata. Pages
// without the docfx property are filtered out, not errors.
func (c *Client) ListPages(ctx context.Context) ([]RemotePage, error) {
	var pages []RemotePage

	for offset := 0; ; offset += listPageSize {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		endpoint := fmt.Sprintf("content?type=page&expand=metadata.properties.%s&start=%d&limit=%d",
			docfxPropertyKey, offset, listPageSize)
		req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}

		var resp contentListResponse
		if err := c.doJSON(req, &resp); err != nil {
			return nil, err
		}
		if resp.Size == 0 {
			break
		}

		for _, result := range resp.Results {
			prop, ok := result.Metadata.Properties[docfxPropertyKey]
			if !ok {
				continue
			}
			pages = append(pages, RemotePage{
				ID:   result.ID,
				UID:  prop.Value.Content.UID,
				Href: prop.Value.Content.Href,
			})
		}
	}

	slog.Debug("Listed Confluence pages with DocFX metadata", logfields.Count(len(pages)))
	return pages, nil
}

// CreatePage creates a page in the given space and attaches the DocFX origin
// metadata in a second call. Returns the new page id.
//
// The two calls are not atomic: a page created without its property is
// invisible to the next run's listing and will be created again. Callers
// treat that as a recoverable inconsistency, not something to roll back.
func (c *Client) CreatePage(ctx context.Context, spaceKey, title, content, uid, href string) (string, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "content", createContentRequest{
		Type:  "page",
		Title: title,
		Space: spaceDescriptor{Key: spaceKey},
		Body:  storageRepresentation(content),
	})
	if err != nil {
		return "", err
	}

	var resp contentResponse
	if err := c.doJSON(req, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", errors.RemoteRequest("create", resp.Message)
	}

	if err := c.attachProperty(ctx, resp.ID, uid, href); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// UpdatePage replaces a page's title and content, bumping the stored version
// by one, and refreshes the DocFX metadata property.
//
// The current version and the immutable space key are re-fetched immediately
// before the PUT; the version field is what makes concurrent human edits
// surface as conflicts instead of silent overwrites. The property has no
// atomic upsert, so it is deleted and recreated.
func (c *Client) UpdatePage(ctx context.Context, pageID, title, content, uid, href string) error {
	pageEndpoint := "content/" + pageID

	req, err := c.newRequest(ctx, http.MethodGet, pageEndpoint, nil)
	if err != nil {
		return err
	}
	var current contentResponse
	if err := c.doJSON(req, &current); err != nil {
		return err
	}
	if current.ID == "" {
		return errors.RemoteNotFound(pageID)
	}

	req, err = c.newRequest(ctx, http.MethodPut, pageEndpoint, updateContentRequest{
		ID:      pageID,
		Type:    "page",
		Title:   title,
		Space:   spaceDescriptor{Key: current.Space.Key},
		Body:    storageRepresentation(content),
		Version: versionNumber{Number: current.Version.Number + 1},
	})
	if err != nil {
		return err
	}
	var updated contentResponse
	if err := c.doJSON(req, &updated); err != nil {
		return err
	}
	if updated.ID == "" {
		return errors.RemoteRequest("update", updated.Message)
	}

	if err := c.deleteProperty(ctx, pageID); err != nil {
		return err
	}
	return c.attachProperty(ctx, pageID, uid, href)
}

func (c *Client) attachProperty(ctx context.Context, pageID, uid, href string) error {
	req, err := c.newRequest(ctx, http.MethodPost, "content/"+pageID+"/property", propertyRequest{
		Key: docfxPropertyKey,
		Value: propertyValue{
			Description: docfxPropertyDescription,
			Content:     docfxPropertyContent{UID: uid, Href: href},
		},
	})
	if err != nil {
		return err
	}

	var resp propertyResponse
	if err := c.doJSON(req, &resp); err != nil {
		return err
	}
	if resp.Message != "" {
		return errors.RemoteRequest("attach property", resp.Message).WithContext("page_id", pageID)
	}
	return nil
}

func (c *Client) deleteProperty(ctx context.Context, pageID string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "content/"+pageID+"/property/"+docfxPropertyKey, nil)
	if err != nil {
		return err
	}

	var resp propertyResponse
	if err := c.doJSON(req, &resp); err != nil {
		return err
	}
	if resp.Message != "" {
		return errors.RemoteRequest("delete property", resp.Message).WithContext("page_id", pageID)
	}
	return nil
}

func storageRepresentation(content string) contentBody {
	return contentBody{Storage: storageBody{Value: content, Representation: "storage"}}
}

// Package mapping holds the run-scoped lookup tables joining DocFX units to
// Confluence pages: one by stable UID (create-vs-update decisions) and one by
// site path (link-target resolution).
//
// The index is derived state. It is built from a full listing at run start,
// extended in memory as pages are created, and discarded at run end; the
// remote store is the source of truth for the next run.
package mapping

import (
	"strings"

	"git.home.luguber.info/inful/docpublish/internal/confluence"
	"git.home.luguber.info/inful/docpublish/internal/docfx"
)

// Index is the two-level lookup table. It is passed explicitly to every
// component that resolves against remote state; nothing holds it globally.
type Index struct {
	byUID  map[string]string
	byHref map[string]string
}

// Build folds a remote page listing into a fresh Index. Duplicate UIDs or
// hrefs should not occur; if they do, later entries in listing order shadow
// earlier ones. Href keys are stored with leading slashes stripped, matching
// how link targets are resolved.
func Build(pages []confluence.RemotePage) *Index {
	idx := &Index{
		byUID:  make(map[string]string, len(pages)),
		byHref: make(map[string]string, len(pages)),
	}
	for _, page := range pages {
		idx.byUID[page.UID] = page.ID
		idx.byHref[strings.TrimLeft(page.Href, "/")] = page.ID
	}
	return idx
}

// Extend inserts a freshly created page into both tables so link rewrites
// later in the same run can resolve references to it.
func (i *Index) Extend(unit docfx.Unit, pageID string) {
	i.byUID[unit.UID] = pageID
	i.byHref[strings.TrimLeft(unit.Href, "/")] = pageID
}

// PageIDForUID returns the Confluence page id for a DocFX UID, if known.
func (i *Index) PageIDForUID(uid string) (string, bool) {
	id, ok := i.byUID[uid]
	return id, ok
}

// PageIDForHref returns the Confluence page id for a site-relative path, if
// known. The path is matched with leading slashes stripped.
func (i *Index) PageIDForHref(href string) (string, bool) {
	id, ok := i.byHref[strings.TrimLeft(href, "/")]
	return id, ok
}

// Len returns the number of UID mappings held.
func (i *Index) Len() int {
	return len(i.byUID)
}

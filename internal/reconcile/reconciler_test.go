package reconcile

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docpublish/internal/confluence"
	"git.home.luguber.info/inful/docpublish/internal/docfx"
	"git.home.luguber.info/inful/docpublish/internal/mapping"
)

type createCall struct {
	Space, Title, Content, UID, Href string
}

type updateCall struct {
	PageID, Title, Content, UID, Href string
}

// fakeStore records mutations and hands out sequential page ids.
type fakeStore struct {
	nextID  int
	creates []createCall
	updates []updateCall
	failOn  string // UID whose create fails, "" for none
}

func (s *fakeStore) CreatePage(_ context.Context, space, title, content, uid, href string) (string, error) {
	if s.failOn != "" && uid == s.failOn {
		return "", fmt.Errorf("create rejected for %s", uid)
	}
	s.nextID++
	id := fmt.Sprintf("%d", 1000+s.nextID)
	s.creates = append(s.creates, createCall{space, title, content, uid, href})
	return id, nil
}

func (s *fakeStore) UpdatePage(_ context.Context, pageID, title, content, uid, href string) error {
	s.updates = append(s.updates, updateCall{pageID, title, content, uid, href})
	return nil
}

// mapContent serves markup from memory, keyed by href with leading slashes
// stripped.
type mapContent map[string]string

func (m mapContent) PageContent(href string) (string, error) {
	markup, ok := m[strings.TrimLeft(href, "/")]
	if !ok {
		return "", fmt.Errorf("no content for %s", href)
	}
	return markup, nil
}

func newReconciler(store Store, content ContentSource) *Reconciler {
	return New(store, content, Options{SpaceKey: "TEST"})
}

func TestRun_EndToEnd_CreateMissingThenUpdateAll(t *testing.T) {
	// Remote store already has a page for "a"; "b" must be created, then
	// both updated in input order with derived titles.
	store := &fakeStore{}
	content := mapContent{
		"a.html":     `<p>a</p>`,
		"sub/b.html": `<p>b</p>`,
	}
	units := []docfx.Unit{
		{UID: "a", Href: "a.html", Name: "A"},
		{UID: "b", Href: "sub/b.html", Name: "B"},
	}
	idx := mapping.Build([]confluence.RemotePage{{ID: "100", UID: "a", Href: "a.html"}})

	report, err := newReconciler(store, content).Run(context.Background(), units, idx)
	require.NoError(t, err)

	require.Len(t, store.creates, 1)
	require.Equal(t, "DocFX - B (b)", store.creates[0].Title)
	require.Equal(t, "TEST", store.creates[0].Space)
	require.Equal(t, "b", store.creates[0].UID)
	require.Equal(t, placeholderContent, store.creates[0].Content)

	require.Len(t, store.updates, 2)
	require.Equal(t, "DocFX - A (a)", store.updates[0].Title)
	require.Equal(t, "100", store.updates[0].PageID)
	require.Equal(t, "DocFX - B (b)", store.updates[1].Title)
	require.Equal(t, "1001", store.updates[1].PageID)

	require.Equal(t, 1, report.Created)
	require.Equal(t, 2, report.Updated)
	require.Equal(t, []string{"b"}, report.UnmatchedUIDs)
}

func TestRun_ForwardReferenceResolvesWithinSameRun(t *testing.T) {
	// Page "a" links to "b", which does not exist remotely yet. Creation
	// completes before any rewrite, so the link must resolve to the page id
	// minted in this run.
	store := &fakeStore{}
	content := mapContent{
		"a.html": `<a class="xref" href="b.html">B</a>`,
		"b.html": `<p>b</p>`,
	}
	units := []docfx.Unit{
		{UID: "a", Href: "a.html", Name: "A"},
		{UID: "b", Href: "b.html", Name: "B"},
	}
	idx := mapping.Build([]confluence.RemotePage{{ID: "100", UID: "a", Href: "a.html"}})

	report, err := newReconciler(store, content).Run(context.Background(), units, idx)
	require.NoError(t, err)
	require.Len(t, store.creates, 1)

	require.Contains(t, store.updates[0].Content, `href="/pages/viewpage.action?pageId=1001"`)
	require.Empty(t, report.UnresolvedLinks)
}

func TestRun_SecondRunCreatesNothing(t *testing.T) {
	store := &fakeStore{}
	content := mapContent{"a.html": `<p>a</p>`, "b.html": `<p>b</p>`}
	units := []docfx.Unit{
		{UID: "a", Href: "a.html", Name: "A"},
		{UID: "b", Href: "b.html", Name: "B"},
	}

	_, err := newReconciler(store, content).Run(context.Background(), units, mapping.Build(nil))
	require.NoError(t, err)
	require.Len(t, store.creates, 2)

	// Second run matches everything by UID from the remote listing: zero
	// creations, content still re-uploaded unconditionally.
	var remote []confluence.RemotePage
	for i, call := range store.creates {
		remote = append(remote, confluence.RemotePage{
			ID:   store.updates[i].PageID,
			UID:  call.UID,
			Href: call.Href,
		})
	}
	store2 := &fakeStore{}
	freshUnits := []docfx.Unit{
		{UID: "a", Href: "a.html", Name: "A"},
		{UID: "b", Href: "b.html", Name: "B"},
	}
	report, err := newReconciler(store2, content).Run(context.Background(), freshUnits, mapping.Build(remote))
	require.NoError(t, err)
	require.Empty(t, store2.creates)
	require.Len(t, store2.updates, 2)
	require.Equal(t, 0, report.Created)
}

func TestRun_UnresolvedLinkWarnsAndContinues(t *testing.T) {
	store := &fakeStore{}
	content := mapContent{"a.html": `<a class="xref" href="missing.html">gone</a>`}
	units := []docfx.Unit{{UID: "a", Href: "a.html", Name: "A"}}
	idx := mapping.Build([]confluence.RemotePage{{ID: "100", UID: "a", Href: "a.html"}})

	report, err := newReconciler(store, content).Run(context.Background(), units, idx)
	require.NoError(t, err)
	require.Len(t, store.updates, 1)
	require.Contains(t, store.updates[0].Content, `href="missing.html"`)
	require.Equal(t, []string{"/missing.html"}, report.UnresolvedLinks)
	require.Equal(t, 1, report.Warnings())
}

func TestRun_CreateFailureAborts(t *testing.T) {
	store := &fakeStore{failOn: "b"}
	content := mapContent{"a.html": `<p>a</p>`, "b.html": `<p>b</p>`}
	units := []docfx.Unit{
		{UID: "a", Href: "a.html", Name: "A"},
		{UID: "b", Href: "b.html", Name: "B"},
	}
	idx := mapping.Build([]confluence.RemotePage{{ID: "100", UID: "a", Href: "a.html"}})

	_, err := newReconciler(store, content).Run(context.Background(), units, idx)
	require.Error(t, err)
	// Nothing gets updated: creation completes for all units before any
	// content upload begins.
	require.Empty(t, store.updates)
}

func TestRun_CustomTitlePrefix(t *testing.T) {
	store := &fakeStore{}
	content := mapContent{"a.html": `<p>a</p>`}
	units := []docfx.Unit{{UID: "a", Href: "a.html", Name: "A"}}

	r := New(store, content, Options{SpaceKey: "TEST", TitlePrefix: "Docs"})
	_, err := r.Run(context.Background(), units, mapping.Build(nil))
	require.NoError(t, err)
	require.Equal(t, "Docs - A (a)", store.creates[0].Title)
}

func TestVerify_ReportsPlanWithoutMutating(t *testing.T) {
	store := &fakeStore{}
	content := mapContent{
		"a.html": `<a class="xref" href="b.html">B</a><a class="xref" href="gone.html">gone</a>`,
		"b.html": `<p>b</p>`,
	}
	units := []docfx.Unit{
		{UID: "a", Href: "a.html", Name: "A"},
		{UID: "b", Href: "b.html", Name: "B"},
	}
	idx := mapping.Build([]confluence.RemotePage{{ID: "100", UID: "a", Href: "a.html"}})

	report, err := newReconciler(store, content).Verify(units, idx)
	require.NoError(t, err)
	require.Empty(t, store.creates)
	require.Empty(t, store.updates)

	// "b" would be created, and the link to it counts as resolvable; only
	// the link to a page outside the plan stays unresolved.
	require.Equal(t, []string{"b"}, report.UnmatchedUIDs)
	require.Equal(t, []string{"/gone.html"}, report.UnresolvedLinks)
}

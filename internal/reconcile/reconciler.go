// Package reconcile drives a reconciliation run: it matches DocFX units to
// Confluence pages by stable UID, creates the pages that are missing, and
// uploads link-rewritten content for every unit.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docpublish/internal/docfx"
	"git.home.luguber.info/inful/docpublish/internal/logfields"
	"git.home.luguber.info/inful/docpublish/internal/mapping"
	"git.home.luguber.info/inful/docpublish/internal/rewrite"
)

// placeholderContent is the body pages are created with. Real content is
// uploaded in the second pass, once every page id is known.
const placeholderContent = "<h1>Placeholder</h1>\nThis page is a placeholder."

// DefaultTitlePrefix is the prefix of derived Confluence page titles.
const DefaultTitlePrefix = "DocFX"

// Store is the remote page store the reconciler mutates. *confluence.Client
// satisfies it.
type Store interface {
	CreatePage(ctx context.Context, spaceKey, title, content, uid, href string) (string, error)
	UpdatePage(ctx context.Context, pageID, title, content, uid, href string) error
}

// ContentSource loads a unit's rendered markup by its site-relative path.
type ContentSource interface {
	PageContent(href string) (string, error)
}

// SiteContent reads page content from a generated site directory on disk.
type SiteContent struct {
	Dir string
}

func (s SiteContent) PageContent(href string) (string, error) {
	return docfx.ReadPageContent(s.Dir, href)
}

// Options configures a reconciliation run.
type Options struct {
	SpaceKey    string
	TitlePrefix string // defaults to DefaultTitlePrefix
}

// Report summarizes one run. Warnings are accumulated, never aborting; any
// store failure aborts the run and the report covers what completed.
type Report struct {
	RunID    string
	Started  time.Time
	Duration time.Duration

	Created int
	Updated int

	// UnmatchedUIDs lists units that had no Confluence mapping and were
	// created during this run.
	UnmatchedUIDs []string
	// UnresolvedLinks lists cross-reference targets that could not be
	// resolved to a page id; the links were left untouched.
	UnresolvedLinks []string
}

// Warnings returns the total number of accumulated warnings.
func (r *Report) Warnings() int {
	return len(r.UnmatchedUIDs) + len(r.UnresolvedLinks)
}

// AbortedReport describes a run that failed before reconciliation could
// start, for example when the manifest or the remote listing could not be
// loaded. It carries a fresh run id so the failure is still attributable in
// metrics and the run journal.
func AbortedReport(started time.Time) *Report {
	return &Report{
		RunID:    uuid.NewString(),
		Started:  started,
		Duration: time.Since(started),
	}
}

// Reconciler performs runs against one store and one site.
type Reconciler struct {
	store   Store
	content ContentSource
	opts    Options
}

// New creates a Reconciler.
func New(store Store, content ContentSource, opts Options) *Reconciler {
	if opts.TitlePrefix == "" {
		opts.TitlePrefix = DefaultTitlePrefix
	}
	return &Reconciler{store: store, content: content, opts: opts}
}

// Run reconciles units against idx in two passes.
//
// Pass one creates a page for every unit whose UID has no mapping, extending
// idx as it goes. Creation completes for all units before any content is
// uploaded: link rewriting must see the final page id of every unit,
// including ones created in this same run, so a single pass would
// non-deterministically fail to resolve forward references.
//
// Pass two loads each unit's content, rewrites its cross-reference links
// against the now-complete index, and updates the page. Content is uploaded
// unconditionally on every run; idempotence is in the matching, which makes
// a re-run after partial failure skip the already-created pages.
//
// idx is extended in place with every page created.
func (r *Reconciler) Run(ctx context.Context, units []docfx.Unit, idx *mapping.Index) (*Report, error) {
	report := &Report{
		RunID:   uuid.NewString(),
		Started: time.Now(),
	}
	log := slog.With(logfields.RunID(report.RunID))

	log.Info("Starting reconciliation",
		logfields.Space(r.opts.SpaceKey),
		slog.Int("units", len(units)),
		slog.Int("remote_pages", idx.Len()))

	// Pass 1: create missing pages so every UID resolves to a page id.
	for i := range units {
		unit := &units[i]
		if pageID, ok := idx.PageIDForUID(unit.UID); ok {
			unit.PageID = pageID
			continue
		}

		log.Warn("No mapping in Confluence for DocFX UID, creating page",
			logfields.UID(unit.UID), logfields.Href(unit.Href))
		report.UnmatchedUIDs = append(report.UnmatchedUIDs, unit.UID)

		title := r.deriveTitle(*unit)
		pageID, err := r.store.CreatePage(ctx, r.opts.SpaceKey, title, placeholderContent, unit.UID, unit.Href)
		if err != nil {
			return report, err
		}
		unit.PageID = pageID
		idx.Extend(*unit, pageID)
		report.Created++

		log.Info("Created Confluence page",
			logfields.UID(unit.UID), logfields.PageID(pageID), logfields.Title(title))
	}

	// Pass 2: rewrite links and upload content for every unit, in input
	// order.
	for _, unit := range units {
		markup, err := r.content.PageContent(unit.Href)
		if err != nil {
			return report, err
		}

		result, err := rewrite.Rewrite(docfx.PageDir(unit.Href), markup, idx)
		if err != nil {
			return report, err
		}
		for _, target := range result.Unresolved {
			log.Warn("No mapping for xref link, leaving href untouched",
				logfields.Href(unit.Href), logfields.Path(target))
		}
		report.UnresolvedLinks = append(report.UnresolvedLinks, result.Unresolved...)

		title := r.deriveTitle(unit)
		if err := r.store.UpdatePage(ctx, unit.PageID, title, result.Markup, unit.UID, unit.Href); err != nil {
			return report, err
		}
		report.Updated++

		log.Info("Updated Confluence page",
			logfields.UID(unit.UID), logfields.PageID(unit.PageID), logfields.Title(title))
	}

	report.Duration = time.Since(report.Started)
	log.Info("Reconciliation complete",
		slog.Int("created", report.Created),
		slog.Int("updated", report.Updated),
		slog.Int("warnings", report.Warnings()),
		slog.Duration("duration", report.Duration))
	return report, nil
}

func (r *Reconciler) deriveTitle(unit docfx.Unit) string {
	return fmt.Sprintf("%s - %s (%s)", r.opts.TitlePrefix, unit.Name, unit.UID)
}

package reconcile

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docpublish/internal/docfx"
	"git.home.luguber.info/inful/docpublish/internal/logfields"
	"git.home.luguber.info/inful/docpublish/internal/mapping"
	"git.home.luguber.info/inful/docpublish/internal/rewrite"
)

// planResolver resolves link targets the way a real run would after its
// creation pass: against the remote index first, then against the set of
// units the run itself would create.
type planResolver struct {
	idx     *mapping.Index
	planned map[string]struct{}
}

func (p planResolver) PageIDForHref(href string) (string, bool) {
	if id, ok := p.idx.PageIDForHref(href); ok {
		return id, true
	}
	if _, ok := p.planned[normalizeHref(href)]; ok {
		// The id is not known yet; the caller only cares about resolvability.
		return "pending", true
	}
	return "", false
}

func normalizeHref(href string) string {
	for len(href) > 0 && href[0] == '/' {
		href = href[1:]
	}
	return href
}

// Verify reports what a run would do without mutating anything: which units
// would be created, and which cross-reference links would fail to resolve
// even after creation. Content is still read from disk so link targets are
// checked against real markup.
func (r *Reconciler) Verify(units []docfx.Unit, idx *mapping.Index) (*Report, error) {
	report := &Report{
		RunID:   uuid.NewString(),
		Started: time.Now(),
	}
	log := slog.With(logfields.RunID(report.RunID))

	planned := make(map[string]struct{}, len(units))
	for _, unit := range units {
		planned[normalizeHref(unit.Href)] = struct{}{}
	}
	resolver := planResolver{idx: idx, planned: planned}

	for _, unit := range units {
		if _, ok := idx.PageIDForUID(unit.UID); !ok {
			log.Warn("No mapping in Confluence for DocFX UID, page would be created",
				logfields.UID(unit.UID), logfields.Href(unit.Href))
			report.UnmatchedUIDs = append(report.UnmatchedUIDs, unit.UID)
		}

		markup, err := r.content.PageContent(unit.Href)
		if err != nil {
			return report, err
		}
		result, err := rewrite.Rewrite(docfx.PageDir(unit.Href), markup, resolver)
		if err != nil {
			return report, err
		}
		for _, target := range result.Unresolved {
			log.Warn("Xref link would not resolve",
				logfields.Href(unit.Href), logfields.Path(target))
		}
		report.UnresolvedLinks = append(report.UnresolvedLinks, result.Unresolved...)
	}

	report.Duration = time.Since(report.Started)
	log.Info("Verification complete",
		slog.Int("would_create", len(report.UnmatchedUIDs)),
		slog.Int("unresolved_links", len(report.UnresolvedLinks)),
		slog.Duration("duration", report.Duration))
	return report, nil
}

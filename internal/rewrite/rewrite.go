// Package rewrite transforms cross-reference hyperlinks in rendered DocFX
// HTML so they point at Confluence's native page viewer instead of
// site-relative file paths.
package rewrite

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/docpublish/internal/errors"
)

// xrefClass is the CSS class DocFX puts on cross-reference anchors. Only
// anchors carrying it are rewritten; every other link is left alone.
const xrefClass = "xref"

// viewerPath is Confluence's page-viewing endpoint.
const viewerPath = "/pages/viewpage.action"

// PageResolver resolves a site-relative path to a Confluence page id.
// *mapping.Index satisfies it.
type PageResolver interface {
	PageIDForHref(href string) (string, bool)
}

// Result is the outcome of rewriting one page's markup.
type Result struct {
	Markup string
	// Unresolved lists the site-relative paths of cross-reference links
	// whose target had no Confluence mapping. Those anchors keep their
	// original href.
	Unresolved []string
}

// Rewrite parses markup as an HTML fragment, rewrites every resolvable
// cross-reference anchor in place, and serializes the fragment back
// preserving element order.
//
// baseDir is the site-relative directory containing the page being
// rewritten, "" for the site root. Link paths resolve against it, mirroring
// how DocFX emits relative links. Anchors without an href are skipped;
// anchors whose target is not in the resolver are reported in
// Result.Unresolved and left untouched rather than failing the page.
func Rewrite(baseDir, markup string, resolver PageResolver) (Result, error) {
	container := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(markup), container)
	if err != nil {
		return Result{}, errors.Wrap(err, errors.CategoryRewrite, errors.SeverityError, "failed to parse HTML fragment")
	}

	var unresolved []string
	for _, node := range nodes {
		walk(node, func(n *html.Node) {
			if !isXrefAnchor(n) {
				return
			}
			if miss, changed := rewriteAnchor(n, baseDir, resolver); !changed && miss != "" {
				unresolved = append(unresolved, miss)
			}
		})
	}

	var sb strings.Builder
	for _, node := range nodes {
		if err := html.Render(&sb, node); err != nil {
			return Result{}, errors.Wrap(err, errors.CategoryRewrite, errors.SeverityError, "failed to serialize HTML fragment")
		}
	}
	return Result{Markup: sb.String(), Unresolved: unresolved}, nil
}

// rewriteAnchor rewrites a single cross-reference anchor. It returns the
// unresolved site path when the lookup missed, and whether the href changed.
func rewriteAnchor(n *html.Node, baseDir string, resolver PageResolver) (miss string, changed bool) {
	href, ok := attr(n, "href")
	if !ok {
		return "", false
	}

	u, err := url.Parse(href)
	if err != nil {
		// Unparseable hrefs degrade the same way as unmapped ones.
		return href, false
	}

	sitePath := baseDir + "/" + strings.TrimLeft(u.Path, "/")
	pageID, ok := resolver.PageIDForHref(sitePath)
	if !ok {
		return sitePath, false
	}

	// Replace only the path component; query and fragment survive. The
	// viewer's own pageId parameter goes first so the original query, if
	// any, trails it.
	u.Path = viewerPath
	if u.RawQuery != "" {
		u.RawQuery = "pageId=" + pageID + "&" + u.RawQuery
	} else {
		u.RawQuery = "pageId=" + pageID
	}
	setAttr(n, "href", u.String())
	return "", true
}

func isXrefAnchor(n *html.Node) bool {
	if n.Type != html.ElementNode || n.DataAtom != atom.A {
		return false
	}
	class, ok := attr(n, "class")
	if !ok {
		return false
	}
	for _, name := range strings.Fields(class) {
		if name == xrefClass {
			return true
		}
	}
	return false
}

func walk(n *html.Node, visit func(*html.Node)) {
	visit(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

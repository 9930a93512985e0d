// Package docfx loads the inputs of a reconciliation run from a generated
// DocFX web site: the site manifest, the cross-reference map, and the
// rendered page content on disk.
package docfx

// Unit is one page in the generated site. UID is the stable join key to
// remote state; Href is the site-relative path of the rendered file and the
// secondary join key for link targets. Both are unique within one run.
type Unit struct {
	UID  string
	Href string
	Name string

	// PageID is empty until the unit has been matched to, or created as, a
	// Confluence page.
	PageID string
}

package docfx

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docpublish/internal/errors"
)

func writeSite(t *testing.T, manifest, xrefmap string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.json"), []byte(manifest), 0o644))
	if xrefmap != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "xrefmap.yml"), []byte(xrefmap), 0o644))
	}
	return dir
}

func TestLoadUnits_ReadsManifestAndXrefMap(t *testing.T) {
	dir := writeSite(t,
		`{"xrefmap": "xrefmap.yml"}`,
		"references:\n- uid: a\n  href: a.html\n  name: A\n- uid: b\n  href: sub/b.html\n  name: B\n")

	units, siteDir, err := LoadUnits(filepath.Join(dir, "manifest.json"))
	require.NoError(t, err)
	require.Equal(t, dir, siteDir)
	require.Len(t, units, 2)
	require.Equal(t, Unit{UID: "a", Href: "a.html", Name: "A"}, units[0])
	require.Equal(t, Unit{UID: "b", Href: "sub/b.html", Name: "B"}, units[1])
}

func TestLoadUnits_MissingXrefMapEntry(t *testing.T) {
	dir := writeSite(t, `{"other": true}`, "")

	_, _, err := LoadUnits(filepath.Join(dir, "manifest.json"))
	require.Error(t, err)
	require.True(t, errors.IsCategory(err, errors.CategoryManifest))
}

func TestLoadManifest_FileMissing(t *testing.T) {
	_, err := LoadManifest(filepath.Join(t.TempDir(), "manifest.json"))
	require.Error(t, err)
	require.True(t, errors.IsCategory(err, errors.CategoryManifest))
}

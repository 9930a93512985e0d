package docfx

import (
	"encoding/json"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docpublish/internal/errors"
)

// Manifest is the subset of DocFX's manifest.json this tool consumes. The
// manifest names the cross-reference map file, relative to its own directory.
type Manifest struct {
	XRefMap string `json:"xrefmap"`
}

// xrefMap mirrors the cross-reference YAML file emitted by DocFX.
type xrefMap struct {
	References []xrefReference `yaml:"references"`
}

type xrefReference struct {
	UID  string `yaml:"uid"`
	Href string `yaml:"href"`
	Name string `yaml:"name"`
}

// LoadManifest reads and parses a DocFX manifest.json.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, errors.ManifestError(err, path)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.ManifestError(err, path)
	}
	if m.XRefMap == "" {
		return nil, errors.New(errors.CategoryManifest, errors.SeverityFatal,
			"manifest has no xrefmap entry").WithContext("path", path)
	}
	return &m, nil
}

// LoadUnits loads the manifest at manifestPath and the cross-reference map it
// names, returning one Unit per reference in file order. The returned site
// directory is the manifest's directory; all hrefs resolve against it.
func LoadUnits(manifestPath string) ([]Unit, string, error) {
	m, err := LoadManifest(manifestPath)
	if err != nil {
		return nil, "", err
	}

	siteDir := filepath.Dir(manifestPath)
	xrefPath := filepath.Join(siteDir, m.XRefMap)

	data, err := os.ReadFile(filepath.Clean(xrefPath))
	if err != nil {
		return nil, "", errors.ManifestError(err, xrefPath)
	}

	var xm xrefMap
	if err := yaml.Unmarshal(data, &xm); err != nil {
		return nil, "", errors.ManifestError(err, xrefPath)
	}

	units := make([]Unit, 0, len(xm.References))
	for _, ref := range xm.References {
		units = append(units, Unit{UID: ref.UID, Href: ref.Href, Name: ref.Name})
	}
	return units, siteDir, nil
}

package docfx

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"git.home.luguber.info/inful/docpublish/internal/errors"
)

// utf8BOM is the byte-order mark as it appears at line starts in files
// written one line at a time by a BOM-emitting encoder.
const utf8BOM = "\ufeff"

// ReadPageContent reads a unit's rendered HTML from the site tree.
//
// DocFX writes some output files with an encoding marker repeated on every
// line, so a leading BOM is stripped from the stream and from each
// individual line before the content is handed to the link rewriter.
func ReadPageContent(siteDir, href string) (string, error) {
	rel := strings.TrimLeft(href, "/")
	path := filepath.Join(siteDir, filepath.FromSlash(rel))

	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return "", errors.ContentError(err, path)
	}
	defer func() {
		_ = file.Close()
	}()

	var lines []string
	scanner := bufio.NewScanner(transform.NewReader(file, unicode.UTF8BOM.NewDecoder()))
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		lines = append(lines, strings.TrimPrefix(scanner.Text(), utf8BOM))
	}
	if err := scanner.Err(); err != nil {
		return "", errors.ContentError(err, path)
	}

	return strings.Join(lines, "\n"), nil
}

// PageDir returns the site-relative directory containing a unit's file, with
// the root directory represented as "" (not "/"). Link targets inside the
// page resolve against this directory.
func PageDir(href string) string {
	rel := strings.TrimLeft(href, "/")
	dir := filepath.ToSlash(filepath.Dir(rel))
	if dir == "." {
		return ""
	}
	return dir
}

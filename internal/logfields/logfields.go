package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID   = "run_id"
	KeyUID     = "docfx_uid"
	KeyHref    = "docfx_href"
	KeyPageID  = "page_id"
	KeySpace   = "space"
	KeyTitle   = "title"
	KeyPath    = "path"
	KeyCount   = "count"
	KeyError   = "error"
	KeyTrigger = "trigger"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr     { return slog.String(KeyRunID, id) }
func UID(uid string) slog.Attr      { return slog.String(KeyUID, uid) }
func Href(href string) slog.Attr    { return slog.String(KeyHref, href) }
func PageID(id string) slog.Attr    { return slog.String(KeyPageID, id) }
func Space(key string) slog.Attr    { return slog.String(KeySpace, key) }
func Title(t string) slog.Attr      { return slog.String(KeyTitle, t) }
func Path(p string) slog.Attr       { return slog.String(KeyPath, p) }
func Count(n int) slog.Attr         { return slog.Int(KeyCount, n) }
func Trigger(name string) slog.Attr { return slog.String(KeyTrigger, name) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

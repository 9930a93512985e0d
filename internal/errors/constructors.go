package errors

// Convenience constructors for the error kinds the reconciliation run can
// abort on.

// ConfigRequired reports a missing required configuration value. Fatal:
// nothing has touched the network yet.
func ConfigRequired(field, hint string) *PublishError {
	return New(CategoryConfig, SeverityFatal, "required configuration missing").
		WithContext("field", field).
		WithContext("hint", hint)
}

// RemoteRequest reports a Confluence mutation that returned no success
// payload. The server-supplied message is preserved verbatim.
func RemoteRequest(operation, serverMessage string) *PublishError {
	return New(CategoryConfluence, SeverityError, "confluence request failed").
		WithContext("operation", operation).
		WithContext("server_message", serverMessage)
}

// RemoteNotFound reports an update target that vanished between listing and
// fetch.
func RemoteNotFound(pageID string) *PublishError {
	return New(CategoryNotFound, SeverityError, "confluence page not found").
		WithContext("page_id", pageID)
}

// ManifestError wraps a failure to load or parse the DocFX manifest or its
// cross-reference map.
func ManifestError(cause error, path string) *PublishError {
	return Wrap(cause, CategoryManifest, SeverityFatal, "failed to load DocFX manifest").
		WithContext("path", path)
}

// ContentError wraps a failure to read a unit's rendered page from the site
// tree.
func ContentError(cause error, path string) *PublishError {
	return Wrap(cause, CategoryFileSystem, SeverityError, "failed to read page content").
		WithContext("path", path)
}

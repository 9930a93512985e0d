package confluence

// Wire types for the Confluence REST surface this tool consumes. Responses
// are deserialized into explicit records with required-field checks instead
// of dynamic attribute bags; a missing "id" on a mutation response is a typed
// error carrying the server's "message".

// RemotePage is a Confluence page carrying DocFX origin metadata. Pages
// without the docfx property are invisible to reconciliation.
type RemotePage struct {
	ID   string
	UID  string
	Href string
}

// contentListResponse is the paginated listing payload.
type contentListResponse struct {
	Size    int                 `json:"size"`
	Results []contentListResult `json:"results"`
}

type contentListResult struct {
	ID       string          `json:"id"`
	Metadata contentMetadata `json:"metadata"`
}

type contentMetadata struct {
	Properties map[string]docfxProperty `json:"properties"`
}

type docfxProperty struct {
	Value docfxPropertyValue `json:"value"`
}

type docfxPropertyValue struct {
	Content docfxPropertyContent `json:"content"`
}

type docfxPropertyContent struct {
	UID  string `json:"docfx_uid"`
	Href string `json:"docfx_href"`
}

// contentResponse covers create, fetch, and update responses. Confluence
// reports failures as JSON bodies with a "message" field, so both shapes are
// decoded from one struct and success is the presence of "id".
type contentResponse struct {
	ID      string          `json:"id"`
	Message string          `json:"message"`
	Space   spaceDescriptor `json:"space"`
	Version versionNumber   `json:"version"`
}

type spaceDescriptor struct {
	Key string `json:"key"`
}

type versionNumber struct {
	Number int `json:"number"`
}

// Request bodies.

type createContentRequest struct {
	Type  string          `json:"type"`
	Title string          `json:"title"`
	Space spaceDescriptor `json:"space"`
	Body  contentBody     `json:"body"`
}

type updateContentRequest struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Title   string          `json:"title"`
	Space   spaceDescriptor `json:"space"`
	Body    contentBody     `json:"body"`
	Version versionNumber   `json:"version"`
}

type contentBody struct {
	Storage storageBody `json:"storage"`
}

type storageBody struct {
	Value          string `json:"value"`
	Representation string `json:"representation"`
}

type propertyRequest struct {
	Key   string        `json:"key"`
	Value propertyValue `json:"value"`
}

type propertyValue struct {
	Description string               `json:"description"`
	Content     docfxPropertyContent `json:"content"`
}

type propertyResponse struct {
	Message string `json:"message"`
}

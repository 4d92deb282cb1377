package raven

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/custodia-labs/ravensource/internal/core/domain"
)

// HeaderIfNoneMatch carries the etag of the previous result.
const HeaderIfNoneMatch = "If-None-Match"

// HeaderETag carries the etag of the current result.
const HeaderETag = "ETag"

// QueryRequest describes one collection query before it is sent.
type QueryRequest struct {
	Method  string
	Path    string
	Payload QueryPayload
	Header  http.Header
}

// QueryPayload is the JSON body of a query request.
type QueryPayload struct {
	Query string `json:"Query"`
}

// NewQueryRequest builds the query for a collection. The If-None-Match
// header is only set when etag is non-empty.
func NewQueryRequest(database string, collection domain.Collection, etag string) QueryRequest {
	header := make(http.Header)
	if etag != "" {
		header.Set(HeaderIfNoneMatch, etag)
	}

	return QueryRequest{
		Method:  http.MethodPost,
		Path:    "/databases/" + url.PathEscape(database) + "/queries",
		Payload: QueryPayload{Query: BuildQuery(collection)},
		Header:  header,
	}
}

// BuildQuery returns the RQL selecting every document of the collection
// together with its declared includes.
func BuildQuery(collection domain.Collection) string {
	query := "from " + collection.Name

	includes := make([]string, 0, len(collection.Includes))
	for _, inc := range collection.Includes {
		if inc = strings.TrimSpace(inc); inc != "" {
			includes = append(includes, inc)
		}
	}
	if len(includes) > 0 {
		query += " include " + strings.Join(includes, ", ")
	}
	return query
}

// httpRequest converts the description into an *http.Request against baseURL.
func (q QueryRequest) httpRequest(baseURL *url.URL) (*http.Request, error) {
	body, err := json.Marshal(q.Payload)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	target := baseURL.JoinPath(strings.TrimPrefix(q.Path, "/"))
	req, err := http.NewRequest(q.Method, target.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header = q.Header.Clone()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// queryResponse is the subset of the server's query result that is used.
type queryResponse struct {
	Results    domain.Batch    `json:"Results"`
	Includes   domain.Includes `json:"Includes"`
	ResultEtag json.RawMessage `json:"ResultEtag"`
}

// parseEtag accepts the etag as a JSON number or string.
// Numbers keep their exact textual form.
func parseEtag(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("decode etag: %w", err)
		}
		return s, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("decode etag: %w", err)
	}
	return n.String(), nil
}

// errorBody is the JSON error document returned by the server.
type errorBody struct {
	Message string `json:"Message"`
	Error   string `json:"Error"`
}

// errorMessage extracts a readable message from an error response body.
func errorMessage(body []byte, status string) string {
	var e errorBody
	if err := json.Unmarshal(body, &e); err == nil {
		if e.Message != "" {
			return e.Message
		}
		if e.Error != "" {
			return e.Error
		}
	}
	if msg := strings.TrimSpace(string(body)); msg != "" {
		return msg
	}
	return status
}

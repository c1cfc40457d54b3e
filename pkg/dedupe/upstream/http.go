package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/OFFIS-RIT/wlo-dupe-detect/internal/apperr"
	"github.com/OFFIS-RIT/wlo-dupe-detect/pkg/dedupe"
	"github.com/OFFIS-RIT/wlo-dupe-detect/pkg/logger"
	"github.com/tidwall/gjson"
)

const (
	pageSize         = 100
	backoffStart     = 250 * time.Millisecond
	backoffCap       = 2 * time.Second
	propertyFilter   = "-all-"
	defaultRepo      = "-home-"
	ngsearchProperty = "ngsearchword"
)

// titleKeys, descriptionKeys and urlKeys mirror wlo_client.py's
// extract_content_metadata fallback lists: the first present property wins.
var (
	titleKeys       = []string{"cclom:title", "cm:name", "cm:title"}
	descriptionKeys = []string{"cclom:general_description", "cm:description"}
	urlKeys         = []string{"ccm:wwwurl", "cclom:location"}
	keywordKey      = "cclom:general_keyword"
)

// HTTPClient is the production Client implementation, talking to the
// upstream edu-sharing-style REST API over HTTP.
type HTTPClient struct {
	baseURL    string
	repository string
	timeout    time.Duration
	maxRetries int
	http       *http.Client
}

// NewHTTPClient builds an upstream client bound to baseURL, applying the
// per-call timeout and retry budget from configuration.
func NewHTTPClient(baseURL string, timeout time.Duration, maxRetries int) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		repository: defaultRepo,
		timeout:    timeout,
		maxRetries: maxRetries,
		http:       &http.Client{},
	}
}

func (c *HTTPClient) FetchMetadata(ctx context.Context, nodeID string) (dedupe.Metadata, bool, error) {
	endpoint := fmt.Sprintf("%s/node/v1/nodes/%s/%s/metadata?propertyFilter=%s",
		c.baseURL, c.repository, nodeID, propertyFilter)

	body, status, err := c.doWithRetry(ctx, http.MethodGet, endpoint, nil)
	if status == http.StatusNotFound {
		return dedupe.Metadata{}, false, nil
	}
	if err != nil {
		return dedupe.Metadata{}, false, err
	}

	node := gjson.GetBytes(body, "node")
	if !node.Exists() {
		node = gjson.ParseBytes(body)
	}
	return extractMetadata(node), true, nil
}

func (c *HTTPClient) Search(ctx context.Context, field dedupe.Field, query string, maxResults int) ([]SearchHit, error) {
	if maxResults <= 0 {
		return nil, nil
	}
	endpoint := fmt.Sprintf("%s/search/v1/queries/%s/mds_oeh/ngsearch", c.baseURL, c.repository)

	var hits []SearchHit
	skip := 0
	for len(hits) < maxResults {
		remaining := maxResults - len(hits)
		want := pageSize
		if remaining < want {
			want = remaining
		}

		reqBody, err := json.Marshal(map[string]any{
			"criteria": []map[string]any{
				{"property": ngsearchProperty, "values": []string{query}},
			},
		})
		if err != nil {
			return hits, apperr.Wrap(apperr.Internal, "marshal search request", err)
		}

		url := fmt.Sprintf("%s?contentType=FILES&maxItems=%d&skipCount=%d&propertyFilter=%s",
			endpoint, want, skip, propertyFilter)

		body, _, err := c.doWithRetry(ctx, http.MethodPost, url, reqBody)
		if err != nil {
			return hits, err
		}

		nodes := gjson.GetBytes(body, "nodes").Array()
		if len(nodes) == 0 {
			break
		}
		for _, n := range nodes {
			nodeID := n.Get("ref.id").String()
			if nodeID == "" {
				continue
			}
			hits = append(hits, SearchHit{NodeID: nodeID, Metadata: extractMetadata(n)})
		}
		if len(nodes) < want {
			break
		}
		skip += len(nodes)
	}
	return hits, nil
}

func (c *HTTPClient) CheckRedirect(ctx context.Context, rawURL string) string {
	if rawURL == "" || (!strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://")) {
		return rawURL
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodHead, rawURL, nil)
	if err != nil {
		return rawURL
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; wlo-dupe-detect/1.0)")

	resp, err := c.http.Do(req)
	if err != nil {
		return rawURL
	}
	defer resp.Body.Close()

	final := resp.Request.URL.String()
	if final == "" {
		return rawURL
	}
	return final
}

// doWithRetry issues one HTTP call, retrying network errors and 5xx
// responses with exponential backoff (250ms, capped at 2s) up to
// maxRetries times. 4xx responses are returned immediately, un-retried.
func (c *HTTPClient) doWithRetry(ctx context.Context, method, url string, body []byte) ([]byte, int, error) {
	attempts := c.maxRetries + 1
	backoff := backoffStart

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, 0, apperr.Wrap(apperr.UpstreamTransient, "context canceled during retry", ctx.Err())
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > backoffCap {
				backoff = backoffCap
			}
		}

		reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
		req, err := http.NewRequestWithContext(reqCtx, method, url, bodyReader(body))
		if err != nil {
			cancel()
			return nil, 0, apperr.Wrap(apperr.Internal, "build upstream request", err)
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			cancel()
			lastErr = err
			logger.Debug("upstream call failed, will retry", "url", url, "attempt", attempt, "err", err)
			continue
		}

		data, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		cancel()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("upstream returned %d", resp.StatusCode)
			continue
		}
		if resp.StatusCode >= 400 {
			return data, resp.StatusCode, apperr.Newf(apperr.UpstreamFatal, "upstream returned %d", resp.StatusCode)
		}
		return data, resp.StatusCode, nil
	}

	return nil, 0, apperr.Wrap(apperr.UpstreamTransient, "upstream call exhausted retries", errors.Join(lastErr))
}

func bodyReader(body []byte) io.Reader {
	if body == nil {
		return nil
	}
	return bytes.NewReader(body)
}

// isValidValue mirrors _is_valid_search_value / _is_valid_field: filters out
// blank strings and the Swagger placeholder literal "string" (§12 item 3).
func isValidValue(v string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(v))
	return trimmed != "" && trimmed != "string"
}

func extractMetadata(node gjson.Result) dedupe.Metadata {
	props := node.Get("properties")

	meta := dedupe.Metadata{
		Title:       firstProperty(props, titleKeys),
		Description: firstProperty(props, descriptionKeys),
		URL:         firstProperty(props, urlKeys),
		Keywords:    stringListProperty(props, keywordKey),
	}
	return meta
}

func firstProperty(props gjson.Result, keys []string) string {
	for _, key := range keys {
		val := props.Get(gjsonEscape(key))
		if !val.Exists() {
			continue
		}
		var s string
		if val.IsArray() {
			arr := val.Array()
			if len(arr) == 0 {
				continue
			}
			s = arr[0].String()
		} else {
			s = val.String()
		}
		if isValidValue(s) {
			return s
		}
	}
	return ""
}

func stringListProperty(props gjson.Result, key string) []string {
	val := props.Get(gjsonEscape(key))
	if !val.Exists() {
		return nil
	}

	var raw []string
	if val.IsArray() {
		for _, v := range val.Array() {
			raw = append(raw, v.String())
		}
	} else {
		raw = []string{val.String()}
	}

	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if isValidValue(v) {
			out = append(out, v)
		}
	}
	return out
}

// gjsonEscape escapes property keys like "cclom:title" so gjson's path
// syntax doesn't treat ':' or '.' as path separators.
func gjsonEscape(key string) string {
	return strings.NewReplacer(".", `\.`, ":", `\:`).Replace(key)
}

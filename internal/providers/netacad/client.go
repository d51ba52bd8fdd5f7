package netacad

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gradebook-sync/internal/concurrency"
	"gradebook-sync/internal/domain"
	"gradebook-sync/internal/httpx"
)

// fullListPageSize is the page size used when assembling the complete
// dataset (matches the server's default limit).
const fullListPageSize = 100

type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Token:   token,
		HTTP: &http.Client{
			Timeout: 2 * time.Minute, // per-request
		},
	}
}

/* -------- Listing -------- */

// ListCourses fetches one page of the catalog. status filters by course
// lifecycle state when non-empty.
func (c *Client) ListCourses(ctx context.Context, skip, limit int, status string) (*ListCoursesResponse, error) {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(skip))
	q.Set("limit", strconv.Itoa(limit))
	if status != "" {
		q.Set("status", status)
	}

	var out ListCoursesResponse
	if err := c.getJSON(ctx, "/courses/?"+q.Encode(), &out); err != nil {
		return nil, fmt.Errorf("netacad: list courses: %w", err)
	}
	return &out, nil
}

// ListAllCourses fetches the complete, unpaginated dataset. The first page
// reveals the total; remaining pages are fetched with a bounded worker
// pool. Any page failure fails the whole call, so callers always see
// either the full universe or an error.
func (c *Client) ListAllCourses(ctx context.Context, status string) ([]domain.Course, error) {
	first, err := c.ListCourses(ctx, 0, fullListPageSize, status)
	if err != nil {
		return nil, err
	}

	all := make([]domain.Course, 0, first.Total)
	all = append(all, first.Courses...)
	if !first.HasMore {
		return all, nil
	}

	var skips []int
	for skip := fullListPageSize; skip < first.Total; skip += fullListPageSize {
		skips = append(skips, skip)
	}

	pages, errs := concurrency.Map(ctx, skips, concurrency.DefaultOptions(),
		func(ctx context.Context, _ int, skip int) ([]domain.Course, error) {
			page, err := c.ListCourses(ctx, skip, fullListPageSize, status)
			if err != nil {
				return nil, err
			}
			return page.Courses, nil
		})
	if len(errs) > 0 {
		return nil, fmt.Errorf("netacad: list all courses: %w", errs[0])
	}

	for _, page := range pages {
		all = append(all, page...)
	}
	return all, nil
}

/* -------- Sync -------- */

func (c *Client) StartSync(ctx context.Context) (*StartSyncResponse, error) {
	var out StartSyncResponse
	if err := c.postJSON(ctx, "/courses/sync", nil, &out); err != nil {
		return nil, fmt.Errorf("netacad: start sync: %w", err)
	}
	return &out, nil
}

// GetSyncStatus fetches the status of syncID, or of the latest sync when
// syncID is empty.
func (c *Client) GetSyncStatus(ctx context.Context, syncID string) (*SyncStatus, error) {
	path := "/courses/sync/status"
	if syncID != "" {
		path += "?sync_id=" + url.QueryEscape(syncID)
	}

	var out SyncStatus
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, fmt.Errorf("netacad: sync status: %w", err)
	}
	return &out, nil
}

func (c *Client) GetSyncHistory(ctx context.Context, limit int) ([]SyncStatus, error) {
	if limit <= 0 {
		limit = 10
	}

	var out []SyncStatus
	if err := c.getJSON(ctx, "/courses/sync/history?limit="+strconv.Itoa(limit), &out); err != nil {
		return nil, fmt.Errorf("netacad: sync history: %w", err)
	}
	return out, nil
}

/* -------- Export -------- */

// ExportGradebook runs a single-course export and returns the CSV bytes.
func (c *Client) ExportGradebook(ctx context.Context, req ExportRequest) ([]byte, error) {
	body, contentType, err := c.postBinary(ctx, "/courses/gradebook/download", req)
	if err != nil {
		return nil, fmt.Errorf("netacad: export gradebook: %w", err)
	}
	if err := expectBinary(contentType, body); err != nil {
		return nil, fmt.Errorf("netacad: export gradebook: %w", err)
	}
	return body, nil
}

// ExportGradebooks runs a bulk export and returns the zip archive bytes.
func (c *Client) ExportGradebooks(ctx context.Context, reqs []ExportRequest) ([]byte, error) {
	body, contentType, err := c.postBinary(ctx, "/courses/gradebook/download/bulk", bulkExportRequest{Courses: reqs})
	if err != nil {
		return nil, fmt.Errorf("netacad: bulk export: %w", err)
	}
	if err := expectBinary(contentType, body); err != nil {
		return nil, fmt.Errorf("netacad: bulk export: %w", err)
	}
	return body, nil
}

// expectBinary rejects a success response whose body is clearly not an
// export payload. A stray JSON body here is an error document; decode it
// for its message instead of saving it to disk.
func expectBinary(contentType string, body []byte) error {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = ""
	}
	if mt == "application/json" {
		herr := &httpx.HTTPError{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{contentType}},
			Body:       body,
		}
		return fmt.Errorf("unexpected response: %s", herr.Message())
	}
	if len(body) == 0 {
		return fmt.Errorf("empty export payload")
	}
	return nil
}

/* -------- Plumbing -------- */

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequest(http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	return c.doJSON(ctx, req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(http.MethodPost, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.doJSON(ctx, req, out)
}

func (c *Client) doJSON(ctx context.Context, req *http.Request, out any) error {
	c.authorize(req)

	_, body, err := httpx.Do(ctx, c.HTTP, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) postBinary(ctx context.Context, path string, payload any) ([]byte, string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, "", err
	}

	req, err := http.NewRequest(http.MethodPost, c.BaseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, body, err := httpx.Do(ctx, c.HTTP, req)
	if err != nil {
		return nil, "", err
	}
	return body, resp.Header.Get("Content-Type"), nil
}

func (c *Client) authorize(req *http.Request) {
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
}

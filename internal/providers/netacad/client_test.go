package netacad

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"gradebook-sync/internal/domain"
	"gradebook-sync/internal/httpx"
)

const testToken = "test-token"

func TestNew(t *testing.T) {
	client := New("http://localhost:8000/api/", testToken)

	if client.BaseURL != "http://localhost:8000/api" {
		t.Errorf("expected trailing slash trimmed, got %q", client.BaseURL)
	}
	if client.Token != testToken {
		t.Errorf("Token = %q", client.Token)
	}
	if client.HTTP == nil || client.HTTP.Timeout != 2*time.Minute {
		t.Error("expected HTTP client with 2 minute timeout")
	}
}

// catalogServer simulates the paginated course listing endpoint.
func catalogServer(t *testing.T, total int, failSkips map[int]bool) *httptest.Server {
	t.Helper()

	courses := make([]domain.Course, total)
	for i := range courses {
		courses[i] = domain.Course{
			ID:       fmt.Sprintf("id-%03d", i),
			CourseID: fmt.Sprintf("c-%03d", i),
			Name:     fmt.Sprintf("Course %d", i),
			URL:      fmt.Sprintf("https://netacad.example/course/%d", i),
			Status:   domain.StatusActive,
		}
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer "+testToken {
			t.Errorf("Authorization = %q", got)
		}
		if !strings.HasPrefix(r.URL.Path, "/courses/") {
			http.NotFound(w, r)
			return
		}

		skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if failSkips[skip] {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"detail":"db gone"}`))
			return
		}

		end := skip + limit
		if end > total {
			end = total
		}
		page := []domain.Course{}
		if skip < total {
			page = courses[skip:end]
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ListCoursesResponse{
			Courses: page,
			Total:   total,
			Skip:    skip,
			Limit:   limit,
			HasMore: end < total,
		})
	}))
}

func TestListCoursesPage(t *testing.T) {
	server := catalogServer(t, 57, nil)
	defer server.Close()

	client := New(server.URL, testToken)
	resp, err := client.ListCourses(context.Background(), 20, 20, "")
	if err != nil {
		t.Fatalf("ListCourses: %v", err)
	}
	if resp.Total != 57 {
		t.Errorf("Total = %d, want 57", resp.Total)
	}
	if len(resp.Courses) != 20 {
		t.Errorf("page size = %d, want 20", len(resp.Courses))
	}
	if !resp.HasMore {
		t.Error("expected HasMore for middle page")
	}
	if resp.Courses[0].ID != "id-020" {
		t.Errorf("first id = %q, want id-020", resp.Courses[0].ID)
	}
}

func TestListCoursesStatusFilter(t *testing.T) {
	var gotStatus string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotStatus = r.URL.Query().Get("status")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ListCoursesResponse{})
	}))
	defer server.Close()

	client := New(server.URL, testToken)
	if _, err := client.ListCourses(context.Background(), 0, 10, "active"); err != nil {
		t.Fatalf("ListCourses: %v", err)
	}
	if gotStatus != "active" {
		t.Errorf("status param = %q, want active", gotStatus)
	}
}

func TestListAllCoursesAssemblesEveryPage(t *testing.T) {
	// 257 courses means one seed page plus two parallel fetches.
	server := catalogServer(t, 257, nil)
	defer server.Close()

	client := New(server.URL, testToken)
	all, err := client.ListAllCourses(context.Background(), "")
	if err != nil {
		t.Fatalf("ListAllCourses: %v", err)
	}
	if len(all) != 257 {
		t.Fatalf("got %d courses, want 257", len(all))
	}

	seen := map[string]bool{}
	for _, c := range all {
		if seen[c.ID] {
			t.Fatalf("duplicate id %q in assembled list", c.ID)
		}
		seen[c.ID] = true
	}
}

func TestListAllCoursesSinglePage(t *testing.T) {
	server := catalogServer(t, 57, nil)
	defer server.Close()

	client := New(server.URL, testToken)
	all, err := client.ListAllCourses(context.Background(), "")
	if err != nil {
		t.Fatalf("ListAllCourses: %v", err)
	}
	if len(all) != 57 {
		t.Errorf("got %d courses, want 57", len(all))
	}
}

func TestListAllCoursesPageFailureFailsWhole(t *testing.T) {
	server := catalogServer(t, 257, map[int]bool{200: true})
	defer server.Close()

	client := New(server.URL, testToken)
	if _, err := client.ListAllCourses(context.Background(), ""); err == nil {
		t.Fatal("expected error when one page fails")
	}
}

func TestStartSync(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/courses/sync" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"sync_id":"sync-1","message":"Course sync started.","status":"processing","started_at":1718000000}`))
	}))
	defer server.Close()

	client := New(server.URL, testToken)
	resp, err := client.StartSync(context.Background())
	if err != nil {
		t.Fatalf("StartSync: %v", err)
	}
	if resp.SyncID != "sync-1" || resp.Status != "processing" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestGetSyncStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/courses/sync/status" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("sync_id"); got != "sync-9" {
			t.Errorf("sync_id = %q, want sync-9", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"sync-9","status":"completed","started_at":1718000000,"completed_at":1718000120,"duration":120,"total_scraped":57,"new_courses":3,"existing_courses":50,"updated_courses":4,"failed_courses":0}`))
	}))
	defer server.Close()

	client := New(server.URL, testToken)
	st, err := client.GetSyncStatus(context.Background(), "sync-9")
	if err != nil {
		t.Fatalf("GetSyncStatus: %v", err)
	}
	if st.Status != "completed" || st.TotalScraped != 57 || st.Duration != 120 {
		t.Errorf("unexpected status: %+v", st)
	}
}

func TestGetSyncStatusLatestOmitsParam(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("sync_id") {
			t.Error("sync_id param should be omitted for latest")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"sync-latest","status":"processing","started_at":1718000000}`))
	}))
	defer server.Close()

	client := New(server.URL, testToken)
	st, err := client.GetSyncStatus(context.Background(), "")
	if err != nil {
		t.Fatalf("GetSyncStatus: %v", err)
	}
	if st.ID != "sync-latest" {
		t.Errorf("ID = %q", st.ID)
	}
}

func TestGetSyncHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("limit"); got != "5" {
			t.Errorf("limit = %q, want 5", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"s2","status":"completed"},{"id":"s1","status":"failed"}]`))
	}))
	defer server.Close()

	client := New(server.URL, testToken)
	history, err := client.GetSyncHistory(context.Background(), 5)
	if err != nil {
		t.Fatalf("GetSyncHistory: %v", err)
	}
	if len(history) != 2 || history[0].ID != "s2" {
		t.Errorf("unexpected history: %+v", history)
	}
}

func TestExportGradebook(t *testing.T) {
	csv := "id,name,grade\n1,alice,95\n"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/courses/gradebook/download" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var req ExportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.CourseID != "c-1" || req.CourseURL == "" {
			t.Errorf("unexpected request body: %+v", req)
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte(csv))
	}))
	defer server.Close()

	client := New(server.URL, testToken)
	body, err := client.ExportGradebook(context.Background(), ExportRequest{
		CourseID:   "c-1",
		CourseName: "Networking Basics",
		CourseURL:  "https://netacad.example/course/1",
	})
	if err != nil {
		t.Fatalf("ExportGradebook: %v", err)
	}
	if string(body) != csv {
		t.Errorf("body = %q", body)
	}
}

func TestExportGradebooksBulk(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/courses/gradebook/download/bulk" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var req bulkExportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Courses) != 3 {
			t.Errorf("got %d courses, want 3", len(req.Courses))
		}
		w.Header().Set("Content-Type", "application/zip")
		w.Write([]byte("PK\x03\x04fake-zip"))
	}))
	defer server.Close()

	client := New(server.URL, testToken)
	body, err := client.ExportGradebooks(context.Background(), []ExportRequest{
		{CourseID: "a"}, {CourseID: "b"}, {CourseID: "c"},
	})
	if err != nil {
		t.Fatalf("ExportGradebooks: %v", err)
	}
	if !strings.HasPrefix(string(body), "PK") {
		t.Errorf("body = %q", body)
	}
}

func TestExportErrorBodySurfacesDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"detail":"quota exceeded"}`))
	}))
	defer server.Close()

	client := New(server.URL, testToken)
	_, err := client.ExportGradebooks(context.Background(), []ExportRequest{{CourseID: "a"}})
	if err == nil {
		t.Fatal("expected error")
	}

	var herr *httpx.HTTPError
	if !errors.As(err, &herr) {
		t.Fatalf("expected *httpx.HTTPError in chain, got %v", err)
	}
	if got := herr.Message(); got != "quota exceeded" {
		t.Errorf("Message() = %q, want %q", got, "quota exceeded")
	}
}

func TestExportRejectsJSONSuccessBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"detail":"nothing to export"}`))
	}))
	defer server.Close()

	client := New(server.URL, testToken)
	_, err := client.ExportGradebook(context.Background(), ExportRequest{CourseID: "a"})
	if err == nil {
		t.Fatal("expected error for JSON body on export endpoint")
	}
	if !strings.Contains(err.Error(), "nothing to export") {
		t.Errorf("error should carry decoded message, got %v", err)
	}
}

package inat_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"taxonsort/internal/inat"
)

func writeTestImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "moth.jpg")
	if err := os.WriteFile(path, []byte("not-really-a-jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNewRequiresTokenAndBaseURL(t *testing.T) {
	if _, err := inat.New("", "https://api.example.test/v1"); err == nil {
		t.Fatal("expected error for missing token")
	}
	if _, err := inat.New("token", "  "); err == nil {
		t.Fatal("expected error for missing base url")
	}
}

func TestScoreImageUploadsMultipartWithBearerToken(t *testing.T) {
	var gotAuth, gotContentType, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotPath = r.URL.Path
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if _, _, err := r.FormFile("image"); err != nil {
			t.Errorf("missing image part: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{
					"combined_score": 87.5,
					"taxon": map[string]any{
						"id":                    47158,
						"name":                  "Spilosoma",
						"rank":                  "genus",
						"preferred_common_name": "tiger moths",
					},
				},
			},
		})
	}))
	defer server.Close()

	client, err := inat.New("secret", server.URL, inat.WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatal(err)
	}

	resp, err := client.ScoreImage(context.Background(), writeTestImage(t))
	if err != nil {
		t.Fatalf("ScoreImage failed: %v", err)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("unexpected Authorization header: %q", gotAuth)
	}
	if gotPath != "/computervision/score_image" {
		t.Fatalf("unexpected request path: %q", gotPath)
	}
	if gotContentType == "" || gotContentType == "application/json" {
		t.Fatalf("expected multipart content type, got %q", gotContentType)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("expected one candidate, got %d", len(resp.Results))
	}
	candidate := resp.Results[0]
	if candidate.Score != 87.5 || candidate.Taxon.ID != 47158 || candidate.Taxon.Name != "Spilosoma" {
		t.Fatalf("unexpected candidate: %+v", candidate)
	}
}

func TestScoreImageRejectsNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := inat.New("secret", server.URL, inat.WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := client.ScoreImage(context.Background(), writeTestImage(t)); err == nil {
		t.Fatal("expected error for 429 response")
	}
}

func TestTaxonByIDUnwrapsResultsEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/taxa/47158" {
			t.Errorf("unexpected path: %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{
					"id":   47158,
					"name": "Spilosoma",
					"rank": "genus",
					"ancestors": []map[string]any{
						{"id": 1, "name": "Erebidae", "rank": "family"},
						{"id": 2, "name": "Arctiini", "rank": "tribe"},
					},
				},
			},
		})
	}))
	defer server.Close()

	client, err := inat.New("secret", server.URL, inat.WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatal(err)
	}
	record, err := client.TaxonByID(context.Background(), 47158)
	if err != nil {
		t.Fatalf("TaxonByID failed: %v", err)
	}
	if record.Name != "Spilosoma" || len(record.Ancestors) != 2 {
		t.Fatalf("unexpected record: %+v", record)
	}
}

func TestTaxonByIDEmptyResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"results": []any{}})
	}))
	defer server.Close()

	client, err := inat.New("secret", server.URL, inat.WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := client.TaxonByID(context.Background(), 99); err == nil {
		t.Fatal("expected error for empty results")
	}
}

func TestVerifyToken(t *testing.T) {
	status := http.StatusOK
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/observations" {
			t.Errorf("unexpected path: %q", r.URL.Path)
		}
		w.WriteHeader(status)
	}))
	defer server.Close()

	client, err := inat.New("secret", server.URL, inat.WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatal(err)
	}
	if err := client.VerifyToken(context.Background()); err != nil {
		t.Fatalf("expected valid token, got %v", err)
	}

	status = http.StatusUnauthorized
	if err := client.VerifyToken(context.Background()); err == nil {
		t.Fatal("expected error for rejected token")
	}
}

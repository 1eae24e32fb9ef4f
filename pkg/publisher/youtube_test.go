package publisher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPPublisherSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/uploads" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req uploadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Channel != "Trap_Beats_Empire" || req.Title == "" {
			t.Errorf("incomplete upload request: %+v", req)
		}
		json.NewEncoder(w).Encode(uploadResponse{
			VideoID: "yt_abc123",
			URL:     "https://youtube.com/watch?v=yt_abc123",
		})
	}))
	defer srv.Close()

	p, err := NewHTTPPublisher(srv.URL)
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	res, err := p.Publish(context.Background(), Request{
		Channel:   "Trap_Beats_Empire",
		Title:     "Trap Heat",
		AudioPath: "/beats/2026-03/b1.mp3",
		Tags:      []string{"trap", "beats"},
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if res.VideoID != "yt_abc123" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestHTTPPublisherSurfacesUploaderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(uploadResponse{Error: "daily quota exceeded"})
	}))
	defer srv.Close()

	p, _ := NewHTTPPublisher(srv.URL)
	_, err := p.Publish(context.Background(), Request{Channel: "c", Title: "t", AudioPath: "a"})
	if err == nil {
		t.Fatalf("expected uploader error")
	}
}

func TestHTTPPublisherRejectsMissingVideoID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(uploadResponse{})
	}))
	defer srv.Close()

	p, _ := NewHTTPPublisher(srv.URL)
	if _, err := p.Publish(context.Background(), Request{Channel: "c", Title: "t", AudioPath: "a"}); err == nil {
		t.Fatalf("expected error for empty video id")
	}
}

func TestMockPublisherRecordsUploads(t *testing.T) {
	m := &Mock{}
	res, err := m.Publish(context.Background(), Request{Channel: "c", Title: "t"})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if res.VideoID == "" || len(m.Uploads) != 1 {
		t.Fatalf("mock must record the upload: %+v", m)
	}
}

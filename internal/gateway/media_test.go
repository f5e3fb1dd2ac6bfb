package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kingrea/storyforge/internal/config"
)

func newMediaTestClient(t *testing.T, handler http.Handler) (*MediaClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	cfg := config.Default()
	cfg.MediaURL = server.URL
	cfg.PollInterval = 5 * time.Millisecond
	client, err := NewMediaClient(cfg)
	if err != nil {
		t.Fatalf("new media client: %v", err)
	}
	return client, server
}

func TestGenerateCompletes(t *testing.T) {
	var polls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/prompt", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ClientID string         `json:"client_id"`
			Workflow string         `json:"workflow"`
			Prompt   map[string]any `json:"prompt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode submit: %v", err)
		}
		if body.ClientID == "" || body.Workflow != "scene_image" {
			t.Errorf("submit body = %+v", body)
		}
		json.NewEncoder(w).Encode(map[string]string{"job_id": "job-42"})
	})
	mux.HandleFunc("/history/", func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/job-42") {
			t.Errorf("poll path = %s", r.URL.Path)
		}
		status := JobStatus{Status: JobPending}
		if polls.Add(1) >= 3 {
			status = JobStatus{Status: JobCompleted, Outputs: []string{"out/scene_001.png"}}
		}
		json.NewEncoder(w).Encode(status)
	})
	client, _ := newMediaTestClient(t, mux)

	status, err := client.Generate(context.Background(), JobRequest{
		Kind:     KindImage,
		Workflow: "scene_image",
		Inputs:   map[string]any{"prompt": "a red door"},
	}, time.Second)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if status.JobID != "job-42" || len(status.Outputs) != 1 {
		t.Fatalf("status = %+v", status)
	}
}

func TestGenerateRemoteFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/prompt", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"job_id": "job-9"})
	})
	mux.HandleFunc("/history/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(JobStatus{Status: JobFailed, Error: "workflow node missing"})
	})
	client, _ := newMediaTestClient(t, mux)

	status, err := client.Generate(context.Background(), JobRequest{Kind: KindImage}, time.Second)
	if !IsRemote(err) {
		t.Fatalf("err = %v, want remote error", err)
	}
	if status.Status != JobFailed {
		t.Fatalf("status = %+v, want failed", status)
	}
	if !strings.Contains(err.Error(), "workflow node missing") {
		t.Fatalf("err = %v, want remote detail", err)
	}
}

func TestGenerateTimeout(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/prompt", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"job_id": "job-slow"})
	})
	mux.HandleFunc("/history/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(JobStatus{Status: JobPending})
	})
	client, _ := newMediaTestClient(t, mux)

	_, err := client.Generate(context.Background(), JobRequest{Kind: KindImage}, 20*time.Millisecond)
	if !IsTimeout(err) {
		t.Fatalf("err = %v, want timeout", err)
	}
}

func TestSubmitRemoteError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/prompt", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "queue full", http.StatusServiceUnavailable)
	})
	client, _ := newMediaTestClient(t, mux)

	_, err := client.Submit(context.Background(), JobRequest{Kind: KindImage})
	if !IsRemote(err) {
		t.Fatalf("err = %v, want remote error", err)
	}
	if !strings.Contains(err.Error(), "queue full") {
		t.Fatalf("err = %v, want body detail", err)
	}
}

func TestSubmitRetriesConnectionFailures(t *testing.T) {
	// Point at a closed server so every attempt is a connection failure.
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()
	cfg := config.Default()
	cfg.MediaURL = server.URL
	client, err := NewMediaClient(cfg)
	if err != nil {
		t.Fatalf("new media client: %v", err)
	}

	_, err = client.Submit(context.Background(), JobRequest{Kind: KindImage})
	var ge *Error
	if !errors.As(err, &ge) || ge.Kind != ErrConnection {
		t.Fatalf("err = %v, want connection error", err)
	}
}

func TestDefaultTimeoutPerKind(t *testing.T) {
	cfg := config.Default()
	cfg.MediaURL = "http://127.0.0.1:8188"
	client, err := NewMediaClient(cfg)
	if err != nil {
		t.Fatalf("new media client: %v", err)
	}
	if got := client.DefaultTimeout(KindImage); got != cfg.ImageTimeout {
		t.Fatalf("image timeout = %s", got)
	}
	if got := client.DefaultTimeout(KindVideo); got != cfg.VideoTimeout {
		t.Fatalf("video timeout = %s", got)
	}
}

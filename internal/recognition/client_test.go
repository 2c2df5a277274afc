package recognition

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRecognizePlate_OK(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Fatalf("method = %s, want GET", r.Method)
		}
		if r.URL.Path != "/api/plates" {
			t.Fatalf("path = %s, want /api/plates", r.URL.Path)
		}
		if got := r.URL.Query().Get("image"); got != "gate-cam/42.jpg" {
			t.Fatalf("image = %q, want gate-cam/42.jpg", got)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(plateResponse{Plate: "ka-01 ab 1234"})
	}))
	defer ts.Close()

	c := NewClient(ts.URL)

	plate, err := c.RecognizePlate(context.Background(), "gate-cam/42.jpg")
	if err != nil {
		t.Fatalf("RecognizePlate error: %v", err)
	}
	if plate != "ka-01 ab 1234" {
		t.Fatalf("plate = %q, want raw service text", plate)
	}
}

func TestRecognizePlate_NotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	c := NewClient(ts.URL)

	_, err := c.RecognizePlate(context.Background(), "missing.jpg")
	if !errors.Is(err, ErrPlateNotFound) {
		t.Fatalf("err = %v, want ErrPlateNotFound", err)
	}
}

func TestRecognizePlate_EmptyText(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(plateResponse{Plate: "   "})
	}))
	defer ts.Close()

	c := NewClient(ts.URL)

	_, err := c.RecognizePlate(context.Background(), "blank.jpg")
	if !errors.Is(err, ErrPlateNotFound) {
		t.Fatalf("err = %v, want ErrPlateNotFound", err)
	}
}

func TestRecognizePlate_NotConfigured(t *testing.T) {
	var c *Client

	if _, err := c.RecognizePlate(context.Background(), "plate.jpg"); err == nil {
		t.Fatalf("expected error for unconfigured client")
	}
}

package ygoprodeck

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"ydkpoints/internal/services"
)

func TestLookupByPasscode(t *testing.T) {
	var gotLang, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v7/cardinfo.php" {
			http.NotFound(w, r)
			return
		}
		gotLang = r.URL.Query().Get("language")
		gotUA = r.Header.Get("User-Agent")
		if r.URL.Query().Get("id") != "23434538" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"No card matching your query was found in the database."}`))
			return
		}
		name := "Maxx \"C\""
		if gotLang == "ko" {
			name = "증식의 G"
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":23434538,"name":` + strconv.Quote(name) + `,"type":"Effect Monster"}]}`))
	}))
	defer srv.Close()

	client, err := New(Config{BaseURL: srv.URL + "/api/v7", UserAgent: "ydkpoints-test"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	name, err := client.NameByPasscode(context.Background(), "23434538", "")
	if err != nil {
		t.Fatalf("NameByPasscode: %v", err)
	}
	if name != "Maxx \"C\"" {
		t.Fatalf("name = %q", name)
	}
	if gotLang != "" {
		t.Fatalf("english lookup should omit language, got %q", gotLang)
	}
	if gotUA != "ydkpoints-test" {
		t.Fatalf("user agent = %q", gotUA)
	}

	name, err = client.NameByPasscode(context.Background(), "23434538", "ko")
	if err != nil {
		t.Fatalf("localized lookup: %v", err)
	}
	if name != "증식의 G" || gotLang != "ko" {
		t.Fatalf("localized name = %q lang = %q", name, gotLang)
	}

	_, err = client.NameByPasscode(context.Background(), "1", "")
	if !services.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLookupByName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("name") != "Ash Blossom & Joyous Spring" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"id":14558127,"name":"하루 우라라"}]}`))
	}))
	defer srv.Close()

	client, err := New(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	name, err := client.NameByCanonical(context.Background(), "Ash Blossom & Joyous Spring", "ko")
	if err != nil {
		t.Fatalf("NameByCanonical: %v", err)
	}
	if name != "하루 우라라" {
		t.Fatalf("name = %q", name)
	}
}

func TestLookupClassifiesFailures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		marker   error
		notFound bool
	}{
		{name: "server error", status: http.StatusInternalServerError, body: "boom", marker: services.ErrTransient},
		{name: "empty data", status: http.StatusOK, body: `{"data":[]}`, marker: services.ErrNotFound, notFound: true},
		{name: "bad json", status: http.StatusOK, body: `{`, marker: services.ErrTransient},
		{name: "missing", status: http.StatusNotFound, body: ``, marker: services.ErrNotFound, notFound: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client, err := New(Config{BaseURL: srv.URL})
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			_, err = client.Lookup(context.Background(), Query{Passcode: "1"})
			if !errors.Is(err, tt.marker) {
				t.Fatalf("expected %v, got %v", tt.marker, err)
			}
			if services.IsNotFound(err) != tt.notFound {
				t.Fatalf("IsNotFound = %v, want %v", services.IsNotFound(err), tt.notFound)
			}
		})
	}
}

func TestLookupTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	client, err := New(Config{BaseURL: base})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = client.Lookup(context.Background(), Query{Passcode: "1"})
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func TestLookupRequiresQuery(t *testing.T) {
	client, err := New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := client.Lookup(context.Background(), Query{}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestServe(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen() error = %v", err)
	}

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, ln, newTestHandler(t, DefaultOption()), time.Second)
	}()

	resp, err := http.Post("http://"+ln.Addr().String()+"/graphql", "application/json",
		strings.NewReader(`{"query": "{ product(id: \"1\") { title } }"}`))
	if err != nil {
		t.Fatalf("http.Post() error = %v", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}

	if d := cmp.Diff(strings.TrimSpace(string(body)), `{"data":{"product":{"title":"Wooden Chair"}}}`); d != "" {
		t.Fatalf("body diff: %s", d)
	}
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Fatal("response has no request id")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}

func TestServe_ClosedListener(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen() error = %v", err)
	}
	ln.Close()

	if err := Serve(t.Context(), ln, http.NotFoundHandler(), time.Second); err == nil {
		t.Fatal("Serve() error = nil, want error for closed listener")
	}
}

func TestRun_InvalidCatalog(t *testing.T) {
	opt := DefaultOption()
	opt.Port = 0
	opt.CatalogFile = writeOption(t, `{"not": "an array"}`)

	if err := Run(opt); err == nil {
		t.Fatal("Run() error = nil, want catalog error")
	}
}

func TestLoadCatalog(t *testing.T) {
	c, err := LoadCatalog(DefaultOption())
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	if c.Len() == 0 {
		t.Fatal("embedded catalog is empty")
	}

	opt := DefaultOption()
	opt.CatalogFile = writeOption(t, `[{"id": 5, "title": "Desk"}]`)
	c, err = LoadCatalog(opt)
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
}

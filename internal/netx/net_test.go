package netx

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDoJSON(t *testing.T) {
	payload := []byte(`{"id":"a1"}`)

	t.Run("success 201", func(t *testing.T) {
		var gotBody []byte
		var gotCT string
		var gotMethod string

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotCT = r.Header.Get("Content-Type")
			gotBody, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusCreated)
		}))
		defer ts.Close()

		err := DoJSON(context.Background(), ts.Client(), http.MethodPost, ts.URL+"/api/assessment", payload)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotMethod != http.MethodPost {
			t.Fatalf("method = %q, want POST", gotMethod)
		}
		if gotCT != "application/json" {
			t.Fatalf("Content-Type = %q, want application/json", gotCT)
		}
		if string(gotBody) != string(payload) {
			t.Fatalf("body = %q, want %q", gotBody, payload)
		}
	})

	t.Run("nil body sends nothing", func(t *testing.T) {
		var gotCT string
		var gotLen int64
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotCT = r.Header.Get("Content-Type")
			gotLen = r.ContentLength
			w.WriteHeader(http.StatusNoContent)
		}))
		defer ts.Close()

		if err := DoJSON(context.Background(), ts.Client(), http.MethodDelete, ts.URL, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotCT != "" || gotLen != 0 {
			t.Fatalf("Content-Type = %q, length = %d, want none", gotCT, gotLen)
		}
	})

	t.Run("non-2xx -> StatusError", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusUnprocessableEntity)
		}))
		defer ts.Close()

		err := DoJSON(context.Background(), ts.Client(), http.MethodPost, ts.URL, payload)
		var se *StatusError
		if !errors.As(err, &se) {
			t.Fatalf("error = %v, want *StatusError", err)
		}
		if se.Code != http.StatusUnprocessableEntity {
			t.Fatalf("code = %d, want 422", se.Code)
		}
		if !strings.Contains(err.Error(), "nope") {
			t.Fatalf("error = %q, want body in message", err.Error())
		}
	})

	t.Run("network error", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		ts.Close()

		err := DoJSON(context.Background(), http.DefaultClient, http.MethodPost, ts.URL, payload)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		var se *StatusError
		if errors.As(err, &se) {
			t.Fatalf("got status error for a closed server: %v", err)
		}
	})
}

package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/users", "/users"},
		{"/users/42", "/users/{id}"},
		{"/posts/7/delete", "/posts/{id}/delete"},
		{"/eco-locations/123/delete", "/eco-locations/{id}/delete"},
		{"/", "/"},
	}

	for _, tt := range tests {
		if got := normalizePath(tt.path); got != tt.want {
			t.Errorf("normalizePath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestResponseWriterCapturesStatus(t *testing.T) {
	rw := newResponseWriter(httptest.NewRecorder())
	rw.WriteHeader(http.StatusNotFound)
	rw.WriteHeader(http.StatusOK) // second call must not overwrite

	if rw.statusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rw.statusCode)
	}
}

func TestResponseWriterDefaultsTo200(t *testing.T) {
	rw := newResponseWriter(httptest.NewRecorder())
	rw.Write([]byte("ok"))

	if rw.statusCode != http.StatusOK {
		t.Errorf("expected implicit 200, got %d", rw.statusCode)
	}
	if rw.bytesWritten != 2 {
		t.Errorf("expected 2 bytes written, got %d", rw.bytesWritten)
	}
}

package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePage(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want int
	}{
		{"missing", "/users", 1},
		{"valid", "/users?page=3", 3},
		{"zero", "/users?page=0", 1},
		{"negative", "/users?page=-2", 1},
		{"garbage", "/users?page=abc", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.url, nil)
			assert.Equal(t, tt.want, parsePage(r))
		})
	}
}

func TestFormPage(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/users/7/delete", strings.NewReader("page=4"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	assert.Equal(t, 4, formPage(r))

	r = httptest.NewRequest(http.MethodPost, "/users/7/delete", strings.NewReader(""))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	assert.Equal(t, 1, formPage(r))
}

func TestParseID(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		want   int64
		wantOK bool
	}{
		{"valid", "42", 42, true},
		{"zero", "0", 0, false},
		{"negative", "-1", 0, false},
		{"garbage", "abc", 0, false},
		{"empty", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/users/x", nil)
			r.SetPathValue("id", tt.value)

			id, ok := parseID(r)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestSafeReturnTo(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   string
	}{
		{"empty defaults to dashboard", "", "/dashboard"},
		{"local path", "/users?page=2", "/users?page=2"},
		{"absolute url rejected", "https://evil.example", "/dashboard"},
		{"protocol-relative rejected", "//evil.example", "/dashboard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, safeReturnTo(tt.target))
		})
	}
}

func TestListingURL(t *testing.T) {
	assert.Equal(t, "/eco-locations?page=2&q=park", listingURL("/eco-locations", 1, "park"))
	assert.Equal(t, "/posts?page=1", listingURL("/posts", 0, ""))
}

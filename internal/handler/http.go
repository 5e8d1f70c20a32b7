package handler

import (
	"net/http"
	"strconv"
	"strings"
)

// parsePage reads the 1-based page query parameter, defaulting to 1.
func parsePage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// formPage reads the 1-based page form value, defaulting to 1.
func formPage(r *http.Request) int {
	page, err := strconv.Atoi(r.FormValue("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// parseID reads the {id} path segment as a positive integer.
func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// safeReturnTo restricts the post-login redirect target to local paths
// so the login form cannot be used as an open redirect.
func safeReturnTo(target string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return "/dashboard"
	}
	return target
}

// listingURL builds a redirect target back into a listing, preserving
// page and query.
func listingURL(basePath string, pageIndex int, query string) string {
	p := PaginationData{BasePath: basePath, Query: query}
	return p.URL(pageIndex + 1)
}

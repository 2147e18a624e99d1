package general

import (
	"path/filepath"
	"testing"
)

func TestGetCurrentFilepath(t *testing.T) {
	path := GetCurrentFilepath()
	if path == "" {
		t.Error("Expected non-empty filepath")
	}
	if !filepath.IsAbs(path) {
		t.Error("Expected absolute path")
	}
}

func TestGetCurrentDir(t *testing.T) {
	dir := GetCurrentDir()
	if dir == "" {
		t.Error("Expected non-empty directory")
	}
	if !filepath.IsAbs(dir) {
		t.Error("Expected absolute path")
	}
}

func TestIsValidURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    bool
		wantMsg string
	}{
		{"Valid HTTP URL", "http://example.com", true, ""},
		{"Valid HTTPS URL", "https://stooq.com/q/d/l/?s=spy.us&i=d", true, ""},
		{"Empty URL", "", false, "URL is empty"},
		{"Missing Scheme", "example.com", false, "URL scheme is missing"},
		{"Invalid URL", "http://", false, "URL host is missing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, gotMsg := IsValidURL(tt.url)
			if got != tt.want {
				t.Errorf("IsValidURL() got = %v, want %v", got, tt.want)
			}
			if gotMsg != tt.wantMsg {
				t.Errorf("IsValidURL() gotMsg = %v, want %v", gotMsg, tt.wantMsg)
			}
		})
	}
}

func TestItemInSlice(t *testing.T) {
	slice := []string{"SPY", "QQQ", "IWM"}

	tests := []struct {
		name     string
		item     string
		expected bool
	}{
		{"Existing item", "QQQ", true},
		{"Non-existing item", "GLD", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ItemInSlice(slice, tt.item); got != tt.expected {
				t.Errorf("ItemInSlice() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNoDuplicateItemsInSlice(t *testing.T) {
	if !NoDuplicateItemsInSlice([]int{20, 40, 60}) {
		t.Error("Expected no duplicates")
	}
	if NoDuplicateItemsInSlice([]string{"SPY", "SPY"}) {
		t.Error("Expected duplicate detection")
	}
	if !NoDuplicateItemsInSlice([]string{}) {
		t.Error("Empty slice has no duplicates")
	}
}

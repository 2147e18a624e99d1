package general

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"

	"cloud.google.com/go/storage"
)

func GetCurrentFilepath() string {
	_, filename, _, _ := runtime.Caller(1)
	return filepath.Dir(filename)
}

func GetCurrentDir() string {
	return filepath.Dir(GetCurrentFilepath())
}

// IsValidURL checks if a string is a valid URL with allowed schemes
func IsValidURL(rawURL string) (bool, string) {

	// Trim spaces
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return false, "URL is empty"
	}

	// Parse the URL
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return false, fmt.Sprintf("Invalid URL format: %v", err)
	}

	// Check scheme
	scheme := strings.ToLower(parsedURL.Scheme)
	if scheme == "" {
		return false, "URL scheme is missing"
	}

	// Check host
	if parsedURL.Host == "" {
		return false, "URL host is missing"
	}

	return true, ""
}

func CopyURLToBucket(ctx context.Context, url, bucketName, objectPath string) error {
	// Create storage client
	client, err := storage.NewClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	// Get the file from URL
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// Create the bucket handle
	bucket := client.Bucket(bucketName)
	obj := bucket.Object(objectPath)

	// Create a new bucket writer
	writer := obj.NewWriter(ctx)

	// Copy the data
	if _, err := io.Copy(writer, resp.Body); err != nil {
		writer.Close()
		return err
	}

	// Close the writer
	if err := writer.Close(); err != nil {
		return err
	}

	return nil
}

func ItemInSlice[T comparable](slice []T, item T) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func NoDuplicateItemsInSlice[T comparable](slice []T) bool {
	seen := make(map[T]bool)
	for _, item := range slice {
		if seen[item] {
			return false
		}
		seen[item] = true
	}
	return true
}

package blobstore

import "testing"

func TestContentTypeForKnownExtension(t *testing.T) {
	if got := contentTypeFor("scan.png"); got != "image/png" {
		t.Fatalf("contentTypeFor(scan.png) = %q, want image/png", got)
	}
}

func TestContentTypeForUnknownExtensionFallsBack(t *testing.T) {
	if got := contentTypeFor("scan.weird"); got != "application/octet-stream" {
		t.Fatalf("contentTypeFor(scan.weird) = %q, want application/octet-stream", got)
	}
}

func TestURLFor(t *testing.T) {
	s := &Service{baseURL: "https://assets.example.com"}
	if got := s.urlFor("abc.png"); got != "https://assets.example.com/abc.png" {
		t.Fatalf("urlFor = %q", got)
	}
}

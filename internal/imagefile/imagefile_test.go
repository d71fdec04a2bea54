package imagefile

import "testing"

func TestClassification(t *testing.T) {
	tests := []struct {
		name     string
		image    bool
		animated bool
	}{
		{"page01.jpg", true, false},
		{"PAGE01.JPEG", true, false},
		{"scan.tiff", true, false},
		{"cover.webp", true, false},
		{"anim.GIF", true, true},
		{"ComicInfo.xml", false, false},
		{"readme", false, false},
		{"chapter1\\page.png", true, false},
		{"dir.jpg/notes.txt", false, false},
	}
	for _, tt := range tests {
		if got := IsImage(tt.name); got != tt.image {
			t.Errorf("IsImage(%q) = %v, want %v", tt.name, got, tt.image)
		}
		if got := IsAnimated(tt.name); got != tt.animated {
			t.Errorf("IsAnimated(%q) = %v, want %v", tt.name, got, tt.animated)
		}
	}
}

func TestBaseAndStem(t *testing.T) {
	tests := []struct {
		in, base, stem string
	}{
		{"a/b/page1.jpg", "page1.jpg", "page1"},
		{"a\\b\\page1.jpg", "page1.jpg", "page1"},
		{"page.tar.png", "page.tar.png", "page.tar"},
		{"noext", "noext", "noext"},
	}
	for _, tt := range tests {
		if got := Base(tt.in); got != tt.base {
			t.Errorf("Base(%q) = %q, want %q", tt.in, got, tt.base)
		}
		if got := Stem(tt.in); got != tt.stem {
			t.Errorf("Stem(%q) = %q, want %q", tt.in, got, tt.stem)
		}
	}
}

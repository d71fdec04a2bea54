package minify

import (
	"testing"

	"bookminify/internal/imageconv"
)

func testRouter() Router {
	return Router{
		MinBytes:  100,
		HugeBytes: 1000,
		Huge:      imageconv.Profile{Name: "huge", Quality: 60, ResizeMaxDimension: 2800, DestExtension: ".webp"},
		Middle:    imageconv.Profile{Name: "middle", Quality: 70, DestExtension: ".webp"},
	}
}

func TestRouterRoute(t *testing.T) {
	router := testRouter()
	tests := []struct {
		name    string
		entry   string
		size    int64
		action  Action
		profile string
	}{
		{"non-image small", "ComicInfo.xml", 1, ActionCopy, ""},
		{"non-image huge", "bonus.pdf", 1 << 30, ActionCopy, ""},
		{"animated huge", "intro.gif", 1 << 30, ActionCopy, ""},
		{"tiny image", "thumb.jpg", 99, ActionCopy, ""},
		{"at minimum", "page.jpg", 100, ActionConvert, "middle"},
		{"middle image", "page.png", 500, ActionConvert, "middle"},
		{"at huge threshold", "page.png", 1000, ActionConvert, "middle"},
		{"huge image", "page.JPG", 1001, ActionConvert, "huge"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := router.Route(tt.entry, tt.size)
			if d.Action != tt.action {
				t.Fatalf("Action = %v, want %v", d.Action, tt.action)
			}
			if d.Profile.Name != tt.profile {
				t.Fatalf("Profile = %q, want %q", d.Profile.Name, tt.profile)
			}
			if d.Reason == "" {
				t.Fatal("expected a reason")
			}
		})
	}
}

func TestRouterHugeProfileResizes(t *testing.T) {
	d := testRouter().Route("page.jpg", 5000)
	if d.Profile.ResizeMaxDimension != 2800 || d.Profile.Quality != 60 {
		t.Fatalf("unexpected huge profile %+v", d.Profile)
	}
	d = testRouter().Route("page.jpg", 500)
	if d.Profile.ResizeMaxDimension != 0 || d.Profile.Quality != 70 {
		t.Fatalf("unexpected middle profile %+v", d.Profile)
	}
}

func TestOutputName(t *testing.T) {
	convert := Decision{Action: ActionConvert, Profile: imageconv.Profile{DestExtension: ".webp"}}
	tests := []struct {
		entry string
		d     Decision
		want  string
	}{
		{"page1.jpg", convert, "page1.webp"},
		{"ch1/page1.png", convert, "ch1/page1.webp"},
		{"ch1/page1.png", Decision{Action: ActionCopy}, "ch1/page1.png"},
		{"v1.2.jpg", convert, "v1.2.webp"},
	}
	for _, tt := range tests {
		if got := OutputName(tt.entry, tt.d); got != tt.want {
			t.Errorf("OutputName(%q) = %q, want %q", tt.entry, got, tt.want)
		}
	}
}

package minify

import (
	"math/rand"
	"testing"
)

func TestSameImageSetReflexive(t *testing.T) {
	listings := [][]string{
		{},
		{"01.jpg"},
		{"01.jpg", "02.png", "ComicInfo.xml"},
		{"a/01.jpg", "b/01.jpg", "notes.txt"},
	}
	for _, l := range listings {
		for _, mode := range []NameMode{KeepExtension, StripExtension} {
			if !SameImageSet(l, l, mode) {
				t.Errorf("SameImageSet(%q, itself, %v) = false", l, mode)
			}
		}
	}
}

func TestSameImageSetKeepExtension(t *testing.T) {
	tests := []struct {
		name string
		got  []string
		want []string
		same bool
	}{
		{"ignores non-images", []string{"01.jpg", "extra.xml"}, []string{"01.jpg"}, true},
		{"ignores folders", []string{"ch1/01.jpg"}, []string{"ch2/01.jpg"}, true},
		{"missing page", []string{"01.jpg"}, []string{"01.jpg", "02.jpg"}, false},
		{"extension matters", []string{"01.webp"}, []string{"01.jpg"}, false},
		{"duplicate basenames count", []string{"a/01.jpg", "b/01.jpg"}, []string{"a/01.jpg", "b/02.jpg"}, false},
		{"nil got", nil, []string{}, false},
		{"nil want", []string{}, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SameImageSet(tt.got, tt.want, KeepExtension); got != tt.same {
				t.Fatalf("SameImageSet = %v, want %v", got, tt.same)
			}
		})
	}
}

func TestSameImageSetOrderIndependent(t *testing.T) {
	original := []string{"001.jpg", "002.jpg", "003.png", "004.gif", "cover.jpeg", "info.txt"}
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := append([]string(nil), original...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		if !SameImageSet(shuffled, original, KeepExtension) {
			t.Fatalf("shuffled listing %q did not match", shuffled)
		}
		if SameImageSet(shuffled, original[1:], KeepExtension) {
			t.Fatalf("shuffled listing %q matched a listing missing a page", shuffled)
		}
	}
}

func TestSameImageSetStripExtension(t *testing.T) {
	original := []string{"page1.jpg", "page2.png", "tiny.jpg", "ComicInfo.xml"}
	tests := []struct {
		name   string
		packed []string
		same   bool
	}{
		{"converted extensions", []string{"page1.webp", "page2.webp", "tiny.jpg", "ComicInfo.xml"}, true},
		{"missing page", []string{"page1.webp", "tiny.jpg"}, false},
		{"collapsed duplicate", []string{"page1.webp", "page1.webp", "tiny.jpg"}, false},
		{"extra page", []string{"page1.webp", "page2.webp", "page3.webp", "tiny.jpg"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SameImageSet(tt.packed, original, StripExtension); got != tt.same {
				t.Fatalf("SameImageSet = %v, want %v", got, tt.same)
			}
		})
	}
}

package resolver

import (
	"math/rand"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		in     string
		kind   Kind
		wantID string
	}{
		{"dQw4w9WgXcQ", DirectID, "dQw4w9WgXcQ"},
		{"  dQw4w9WgXcQ ", DirectID, "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", CanonicalURL, "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", CanonicalURL, "dQw4w9WgXcQ"},
		{"youtube.com/watch?v=dQw4w9WgXcQ", CanonicalURL, "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ", CanonicalURL, "dQw4w9WgXcQ"},
		{"http://youtube.com/embed/dQw4w9WgXcQ", CanonicalURL, "dQw4w9WgXcQ"},
		{"https://www.youtube.com/v/dQw4w9WgXcQ", CanonicalURL, "dQw4w9WgXcQ"},
		{"lofi hip hop radio", SearchTerm, ""},
		{"295", SearchTerm, ""},
		{"https://www.youtube.com/watch?v=short", SearchTerm, ""},
		{"https://vimeo.com/123456789", SearchTerm, ""},
		{"", SearchTerm, ""},
		// a URL shape only counts at the start of the query
		{"my notes about youtube.com/v/ and /abcdefghijk", SearchTerm, ""},
		{"songs like https://youtu.be/dQw4w9WgXcQ", SearchTerm, ""},
	}
	for _, tt := range tests {
		got := Classify(tt.in)
		if got.Kind != tt.kind || got.ID != tt.wantID {
			t.Errorf("Classify(%q) = {%v %q}, want {%v %q}", tt.in, got.Kind, got.ID, tt.kind, tt.wantID)
		}
	}
}

func TestClassify_AnyElevenURLSafeChars(t *testing.T) {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		b := make([]byte, 11)
		for j := range b {
			b[j] = alphabet[rng.Intn(len(alphabet))]
		}
		s := string(b)
		if got := Classify(s); got.Kind != DirectID || got.ID != s {
			t.Fatalf("Classify(%q) = %+v, want DirectID", s, got)
		}
	}
}

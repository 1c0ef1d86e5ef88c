package email

import (
	"strings"
	"testing"
)

func TestRenderer_ToHTML(t *testing.T) {
	r := NewRenderer()

	got, err := r.ToHTML("**urgent**\nsecond line")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "<strong>urgent</strong>") {
		t.Fatalf("expected bold markup, got %q", got)
	}
	if !strings.Contains(got, "<br") {
		t.Fatalf("expected hard wrap, got %q", got)
	}
}

func TestRenderer_StripsUnsafeHTML(t *testing.T) {
	r := NewRenderer()

	got, err := r.ToHTML(`hello <script>alert(1)</script> <a href="javascript:alert(1)" onclick="x()">link</a> <img src=x onerror=alert(1)>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, bad := range []string{"<script", "javascript:", "onclick", "onerror"} {
		if strings.Contains(got, bad) {
			t.Fatalf("unsafe %q survived: %q", bad, got)
		}
	}
}

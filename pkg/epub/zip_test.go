package epub

import "testing"

func TestResolveHref(t *testing.T) {
	tests := []struct {
		dir, href, want string
	}{
		{"OEBPS", "text/ch1.xhtml", "OEBPS/text/ch1.xhtml"},
		{"OEBPS", "ch1.xhtml#frag", "OEBPS/ch1.xhtml"},
		{"OEBPS", "Chapter%201.xhtml", "OEBPS/Chapter 1.xhtml"},
		{".", "ch1.xhtml", "ch1.xhtml"},
		{"OEBPS", "../../etc/passwd", ""},
		{"OEBPS", "/abs.xhtml", ""},
	}
	for _, tt := range tests {
		if got := resolveHref(tt.dir, tt.href); got != tt.want {
			t.Errorf("resolveHref(%q, %q) = %q, want %q", tt.dir, tt.href, got, tt.want)
		}
	}
}

func TestStripBOM(t *testing.T) {
	in := []byte{0xEF, 0xBB, 0xBF, '<', 'a', '>'}
	if got := string(stripBOM(in)); got != "<a>" {
		t.Errorf("stripBOM() = %q, want %q", got, "<a>")
	}
}

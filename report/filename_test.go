package report

import "testing"

func TestParseContentDisposition(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		ok     bool
	}{
		{
			name:   "utf-8 parameter",
			header: "attachment; filename*=UTF-8''r%C3%A9sum%C3%A9.pdf",
			want:   "résumé.pdf",
			ok:     true,
		},
		{
			name:   "quoted filename",
			header: `attachment; filename="quarterly.pdf"`,
			want:   "quarterly.pdf",
			ok:     true,
		},
		{
			name:   "unquoted filename",
			header: "attachment; filename=report.pdf",
			want:   "report.pdf",
			ok:     true,
		},
		{
			name:   "utf-8 preferred over ascii",
			header: `attachment; filename="fallback.pdf"; filename*=UTF-8''real.pdf`,
			want:   "real.pdf",
			ok:     true,
		},
		{
			name:   "empty header",
			header: "",
			ok:     false,
		},
		{
			name:   "no filename parameter",
			header: "attachment",
			ok:     false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseContentDisposition(tc.header)
			if ok != tc.ok {
				t.Fatalf("expected ok=%v, got %v", tc.ok, ok)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestNormalizeFilename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "", want: "document.pdf"},
		{input: "   ", want: "document.pdf"},
		{input: "report", want: "report.pdf"},
		{input: "report.pdf", want: "report.pdf"},
		{input: "Report.PDF", want: "Report.PDF"},
		{input: "  report  ", want: "report.pdf"},
	}

	for _, tc := range tests {
		if got := NormalizeFilename(tc.input); got != tc.want {
			t.Fatalf("NormalizeFilename(%q): expected %q, got %q", tc.input, tc.want, got)
		}
	}
}

func TestResolveFilename(t *testing.T) {
	if got := ResolveFilename(`attachment; filename="quarterly.pdf"`, ""); got != "quarterly.pdf" {
		t.Fatalf("expected header filename, got %q", got)
	}
	if got := ResolveFilename("", "report"); got != "report.pdf" {
		t.Fatalf("expected requested filename with suffix, got %q", got)
	}
	if got := ResolveFilename("", ""); got != DefaultFilename {
		t.Fatalf("expected default filename, got %q", got)
	}
}

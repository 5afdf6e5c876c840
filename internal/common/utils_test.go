package common

import "testing"

func TestSanitizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  https://example.com/sitemap.xml \n", "https://example.com/sitemap.xml"},
		{"[sitemap](https://example.com/sitemap.xml)", "https://example.com/sitemap.xml"},
		{"<https://example.com/sitemap.xml>", "https://example.com/sitemap.xml"},
		{"\"https://example.com/\",", "https://example.com/"},
	}
	for _, tt := range tests {
		if got := SanitizeURL(tt.in); got != tt.want {
			t.Errorf("SanitizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateSiteURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "sc-domain:example.com", want: "sc-domain:example.com"},
		{in: " https://example.com/ ", want: "https://example.com/"},
		{in: "sc-domain:", wantErr: true},
		{in: "sc-domain:example.com/path", wantErr: true},
		{in: "ftp://example.com/", wantErr: true},
		{in: "example.com", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ValidateSiteURL(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateSiteURL(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ValidateSiteURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

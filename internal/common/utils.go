package common

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/urfave/cli/v2"
)

// Exit codes returned by actions.
const (
	ExitUsage = 1
	ExitFatal = 2
)

// NewLogger builds the JSON stderr logger from the global --quiet/--verbose flags.
func NewLogger(c *cli.Context) *slog.Logger {
	logLevel := slog.LevelInfo
	if c.Bool("verbose") {
		logLevel = slog.LevelDebug
	}
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

var markdownLinkPattern = regexp.MustCompile(`^\[.*?\]\((https?://[^\)]+)\)$`)

// SanitizeURL performs basic cleanup on URLs to handle common copy-paste issues.
// Removes whitespace, markdown link syntax and surrounding punctuation.
func SanitizeURL(rawURL string) string {
	cleaned := strings.TrimSpace(rawURL)

	// [text](url) -> url
	if matches := markdownLinkPattern.FindStringSubmatch(cleaned); len(matches) > 1 {
		cleaned = matches[1]
	}

	cleaned = strings.TrimLeft(cleaned, "(<\"'")
	cleaned = strings.TrimRight(cleaned, ")>\"',;")

	return strings.TrimSpace(cleaned)
}

// ValidateHTTPURL sanitizes rawURL and checks it is an absolute http(s) URL.
func ValidateHTTPURL(rawURL string) (string, error) {
	cleaned := SanitizeURL(rawURL)
	if cleaned == "" {
		return "", fmt.Errorf("empty URL")
	}
	if strings.Contains(cleaned, " ") {
		return "", fmt.Errorf("URL %q contains spaces", rawURL)
	}
	parsed, err := url.Parse(cleaned)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("URL %q must use http or https", rawURL)
	}
	if parsed.Host == "" || strings.ContainsAny(parsed.Host, "{}[]<>\"'") {
		return "", fmt.Errorf("URL %q has no valid host", rawURL)
	}
	return cleaned, nil
}

// ValidateSiteURL checks a Search Console property identifier: either a
// domain property ("sc-domain:example.com") or a URL-prefix property.
func ValidateSiteURL(site string) (string, error) {
	site = strings.TrimSpace(site)
	if rest, ok := strings.CutPrefix(site, "sc-domain:"); ok {
		if rest == "" || strings.ContainsAny(rest, "/ ") {
			return "", fmt.Errorf("invalid domain property %q", site)
		}
		return site, nil
	}
	return ValidateHTTPURL(site)
}

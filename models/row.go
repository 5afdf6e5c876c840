package models

import "strings"

// ErrorMarker prefixes the verdict of a row whose inspection failed.
const ErrorMarker = "ERROR: "

// Columns is the fixed header of the output file, in order.
var Columns = []string{
	"url",
	"verdict",
	"coverageState",
	"indexingState",
	"pageFetchState",
	"robotsTxtState",
	"lastCrawlTime",
	"googleCanonical",
	"userCanonical",
	"referringUrls",
}

// Row is one output record per inspected URL.
type Row struct {
	URL             string
	Verdict         string
	CoverageState   string
	IndexingState   string
	PageFetchState  string
	RobotsTxtState  string
	LastCrawlTime   string
	GoogleCanonical string
	UserCanonical   string
	ReferringURLs   []string
}

// RowFromStatus maps an index status result onto a row for url.
func RowFromStatus(url string, idx IndexStatusResult) Row {
	return Row{
		URL:             url,
		Verdict:         idx.Verdict,
		CoverageState:   idx.CoverageState,
		IndexingState:   idx.IndexingState,
		PageFetchState:  idx.PageFetchState,
		RobotsTxtState:  idx.RobotsTxtState,
		LastCrawlTime:   idx.LastCrawlTime,
		GoogleCanonical: idx.GoogleCanonical,
		UserCanonical:   idx.UserCanonical,
		ReferringURLs:   idx.ReferringURLs,
	}
}

// ErrorRow returns the row recorded when inspecting url failed with err.
// Only url and verdict are set.
func ErrorRow(url string, err error) Row {
	return Row{URL: url, Verdict: ErrorMarker + err.Error()}
}

// Failed reports whether the row records a failed inspection.
func (r Row) Failed() bool {
	return strings.HasPrefix(r.Verdict, ErrorMarker)
}

// Record returns the row as CSV fields in Columns order.
func (r Row) Record() []string {
	return []string{
		r.URL,
		r.Verdict,
		r.CoverageState,
		r.IndexingState,
		r.PageFetchState,
		r.RobotsTxtState,
		r.LastCrawlTime,
		r.GoogleCanonical,
		r.UserCanonical,
		strings.Join(r.ReferringURLs, ","),
	}
}

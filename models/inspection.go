package models

// InspectRequest is the body of a URL Inspection call.
type InspectRequest struct {
	InspectionURL string `json:"inspectionUrl"`
	SiteURL       string `json:"siteUrl"`
	LanguageCode  string `json:"languageCode,omitempty"`
}

// InspectResponse is the top-level URL Inspection response.
type InspectResponse struct {
	InspectionResult InspectionResult `json:"inspectionResult"`
}

type InspectionResult struct {
	InspectionResultLink string            `json:"inspectionResultLink,omitempty"`
	IndexStatusResult    IndexStatusResult `json:"indexStatusResult"`
}

// IndexStatusResult is the index status section of an inspection.
// Only the fields written to the output file and a few useful extras are kept.
type IndexStatusResult struct {
	Verdict         string   `json:"verdict,omitempty"`
	CoverageState   string   `json:"coverageState,omitempty"`
	IndexingState   string   `json:"indexingState,omitempty"`
	PageFetchState  string   `json:"pageFetchState,omitempty"`
	RobotsTxtState  string   `json:"robotsTxtState,omitempty"`
	LastCrawlTime   string   `json:"lastCrawlTime,omitempty"`
	GoogleCanonical string   `json:"googleCanonical,omitempty"`
	UserCanonical   string   `json:"userCanonical,omitempty"`
	ReferringURLs   []string `json:"referringUrls,omitempty"`
	Sitemap         []string `json:"sitemap,omitempty"`
	CrawledAs       string   `json:"crawledAs,omitempty"`
}

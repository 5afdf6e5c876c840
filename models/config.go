// Package models defines data structures for configuration, inspection
// results and output rows.
package models

import "time"

// InspectConfig holds runtime configuration for an inspect run.
// All values come from CLI flags or their environment variables.
type InspectConfig struct {
	SiteURL          string
	SitemapURL       string
	CredentialsPath  string
	TokenPath        string
	OutputPath       string
	MaxURLs          int           // 0 means unlimited
	Delay            time.Duration // pause after each processed URL
	QueriesPerMinute int           // request quota; 0 disables it
	DBPath           string        // empty disables the run ledger
	SitemapCacheDir  string        // empty disables the sitemap cache
	SitemapCacheTTL  time.Duration
}

// PruneConfig holds runtime configuration for a prune run.
type PruneConfig struct {
	Root   string
	Routes []RouteSpec
	DryRun bool
}

// RouteSpec names one route directory to remove, relative to the prune root.
// Candidates are extra on-disk spellings tried after the generated ones.
type RouteSpec struct {
	Path       string   `yaml:"path"`
	Candidates []string `yaml:"candidates,omitempty"`
}

package help

const ColdstartYAML = `# gsc-inspect Quick Start

setup:
  - "Create an OAuth client (Desktop app) in Google Cloud and download it as credentials.json"
  - "Enable the Search Console API for that project"
  - "First run opens a browser for consent and stores token.json next to it"

commands:
  basic_inspect: |
    gsc-inspect inspect --site "https://example.com/" --sitemap "https://example.com/sitemap.xml"

  domain_property: |
    gsc-inspect inspect --site "sc-domain:example.com" --sitemap "https://example.com/sitemap_index.xml"

  first_100_slowly: |
    gsc-inspect inspect --site "https://example.com/" --sitemap "https://example.com/sitemap.xml" --max 100 --sleep 1

  with_run_ledger: |
    gsc-inspect inspect --site "https://example.com/" --sitemap "https://example.com/sitemap.xml" --db gsc-inspect.db
    gsc-inspect history --db gsc-inspect.db
    gsc-inspect history --db gsc-inspect.db 3

  prune_routes: |
    gsc-inspect prune --root app --dry-run "compliance/[slug]" "old-blog"
    gsc-inspect prune --manifest routes.yaml

environment:
  GSC_SITE: "--site"
  GSC_SITEMAP: "--sitemap"
  GSC_CREDENTIALS: "--creds"
  GSC_TOKEN: "--token"
  GSC_OUT: "--out"
  GSC_MAX: "--max"
  GSC_SLEEP: "--sleep"
  GSC_QPM: "--qpm"
  GSC_DB: "--db"
  GSC_SITEMAP_CACHE: "--sitemap-cache"
  note: "Variables may also be set in a .env file in the working directory"

sitemap_behavior:
  - "A urlset contributes its <loc> URLs in document order"
  - "A sitemap index is followed one level: each child urlset is fetched and concatenated"
  - "A child that is itself a sitemap index contributes nothing (logged as a warning)"
  - "Any other root element yields no URLs"

pacing:
  - "--sleep seconds are waited after every inspected URL, so calls are never closer than that"
  - "--qpm additionally keeps requests under the API quota (default 600 per minute)"

resume_behavior:
  - "Rows are appended to the CSV and flushed one at a time"
  - "URLs already in the CSV's url column are skipped on the next run"
  - "Failed inspections are written as rows whose verdict starts with 'ERROR: '"
  - "Delete those rows to retry them"
  - "Ctrl-C stops cleanly; rerun the same command to continue"

csv_columns:
  - url
  - verdict
  - coverageState
  - indexingState
  - pageFetchState
  - robotsTxtState
  - lastCrawlTime
  - googleCanonical
  - userCanonical
  - referringUrls

error_behavior:
  - "Bad flags or URLs: exit 1 before any network call"
  - "Auth failure, unreadable sitemap or unwritable CSV: exit 2"
  - "Interrupted: exit 130, CSV left consistent"
  - "Per-URL API errors never stop the run"
`

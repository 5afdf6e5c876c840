// Package prune removes conflicting route directories left behind by a
// file-based router. A route may exist on disk under several spellings
// (literal brackets, percent-encoded, different Unicode normalization); the
// first spelling present is removed and a route with none present is not an
// error, so pruning is idempotent.
package prune

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/dtnitsch/gsc-inspect/models"
)

// ErrOutsideRoot is returned for a candidate that would resolve outside the
// prune root, or to the root itself.
var ErrOutsideRoot = errors.New("candidate path escapes root")

type Status string

const (
	StatusRemoved     Status = "removed"
	StatusAbsent      Status = "absent"
	StatusWouldRemove Status = "would-remove"
)

// Outcome is the result for one route. Path is the candidate acted on,
// relative to the root, or empty when no candidate was present.
type Outcome struct {
	Route  string
	Path   string
	Status Status
}

var bracketEncoder = strings.NewReplacer("[", "%5B", "]", "%5D")

// Candidates lists the on-disk spellings to try for route, in order and
// without duplicates: as given, percent-decoded, brackets percent-encoded,
// NFC and NFD. extra spellings follow.
func Candidates(route string, extra ...string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(p string) {
		if p == "" || seen[p] {
			return
		}
		seen[p] = true
		out = append(out, p)
	}

	add(route)
	if decoded, err := url.PathUnescape(route); err == nil {
		add(decoded)
	}
	add(bracketEncoder.Replace(route))
	add(norm.NFC.String(route))
	add(norm.NFD.String(route))
	for _, e := range extra {
		add(e)
	}
	return out
}

type Pruner struct {
	root   string
	dryRun bool
	logger *slog.Logger
}

func New(root string, dryRun bool, logger *slog.Logger) *Pruner {
	if root == "" {
		root = "."
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pruner{root: root, dryRun: dryRun, logger: logger}
}

// resolve joins candidate onto the root, rejecting anything that does not
// stay strictly below it.
func (p *Pruner) resolve(candidate string) (string, error) {
	if filepath.IsAbs(candidate) {
		return "", fmt.Errorf("%s: %w", candidate, ErrOutsideRoot)
	}
	full := filepath.Join(p.root, filepath.FromSlash(candidate))
	rel, err := filepath.Rel(p.root, full)
	if err != nil {
		return "", fmt.Errorf("%s: %w", candidate, err)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s: %w", candidate, ErrOutsideRoot)
	}
	return full, nil
}

// Remove removes the first present candidate of route.
func (p *Pruner) Remove(route models.RouteSpec) (Outcome, error) {
	out := Outcome{Route: route.Path, Status: StatusAbsent}

	candidates := Candidates(route.Path, route.Candidates...)
	paths := make([]string, len(candidates))
	for i, c := range candidates {
		full, err := p.resolve(c)
		if err != nil {
			return out, err
		}
		paths[i] = full
	}

	for i, full := range paths {
		if _, err := os.Lstat(full); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return out, fmt.Errorf("error checking %s: %w", full, err)
		}

		out.Path = candidates[i]
		if p.dryRun {
			out.Status = StatusWouldRemove
			p.logger.Info("Would remove route", "route", route.Path, "path", full)
			return out, nil
		}
		if err := os.RemoveAll(full); err != nil {
			return out, fmt.Errorf("error removing %s: %w", full, err)
		}
		out.Status = StatusRemoved
		p.logger.Info("Removed route", "route", route.Path, "path", full)
		return out, nil
	}

	p.logger.Debug("Route not present", "route", route.Path, "candidates", len(candidates))
	return out, nil
}

// RemoveAll prunes every route, stopping at the first error.
func (p *Pruner) RemoveAll(routes []models.RouteSpec) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(routes))
	for _, r := range routes {
		o, err := p.Remove(r)
		if err != nil {
			return outcomes, fmt.Errorf("route %s: %w", r.Path, err)
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, nil
}

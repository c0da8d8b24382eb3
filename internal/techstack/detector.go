// Package techstack scores the technologies and frameworks of a source tree
// and derives advisories from the scores.
package techstack

import (
	"path/filepath"

	"github.com/saeedalam/stacksignal/internal/patterns"
	"github.com/saeedalam/stacksignal/pkg/types"
)

// DefaultMaxFiles bounds the path collection handed to the detectors
const DefaultMaxFiles = 1000

// DefaultSignificanceThreshold is the score a technology must exceed before its
// frameworks are scanned. A score equal to the threshold is not significant.
const DefaultSignificanceThreshold = 0.1

// TruncatePaths keeps the first max paths in supplied order
func TruncatePaths(paths []string, max int) []string {
	if max < 0 || len(paths) <= max {
		return paths
	}
	return paths[:max]
}

// DetectTechnologies scores technologies by file-name matches.
//
// Every matcher hit counts, so a path matching two matchers of one technology
// (setup.py matches both `\.py$` and `setup\.py$`) adds two. Scores are
// raw_count/total_matches; no match at all yields an empty distribution.
func DetectTechnologies(reg *patterns.Registry, paths []string) types.Distribution {
	counts := make(map[string]int)
	total := 0

	techs := reg.Technologies()
	for _, path := range paths {
		p := filepath.ToSlash(path)
		for _, tech := range techs {
			if n := tech.MatchCount(p); n > 0 {
				counts[tech.Name] += n
				total += n
			}
		}
	}

	return types.Normalize(counts, total)
}

// MatchingPaths returns the paths matched by any of the technology's file matchers
func MatchingPaths(tech patterns.Technology, paths []string) []string {
	var out []string
	for _, path := range paths {
		if tech.Matches(filepath.ToSlash(path)) {
			out = append(out, path)
		}
	}
	return out
}

// SignificantTechnologies returns, in registry order, the technologies scoring
// strictly above threshold
func SignificantTechnologies(reg *patterns.Registry, dist types.Distribution, threshold float64) []patterns.Technology {
	var out []patterns.Technology
	for _, tech := range reg.Technologies() {
		if dist[tech.Name] > threshold {
			out = append(out, tech)
		}
	}
	return out
}

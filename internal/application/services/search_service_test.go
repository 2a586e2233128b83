package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func carCandidates() []candidate {
	return []candidate{
		{id: "c1", label: "1973 Porsche 911 Carrera RS", haystack: "1973 Porsche 911 Carrera RS"},
		{id: "c2", label: "1988 Porsche 959", haystack: "1988 Porsche 959"},
		{id: "c3", label: "1965 Ford Mustang", haystack: "1965 Ford Mustang"},
		{id: "c4", label: "2004 Porsche Carrera GT", haystack: "2004 Porsche Carrera GT"},
	}
}

func TestRankCandidatesPrefersTighterMatches(t *testing.T) {
	hits := rankCandidates("cars", "porsche 911", carCandidates(), 5)

	require.NotEmpty(t, hits)
	assert.Equal(t, "c1", hits[0].ID)
	for _, h := range hits {
		assert.NotEqual(t, "c3", h.ID, "a Mustang should never match 'porsche 911'")
	}
}

func TestRankCandidatesRanksPrefixAboveScattered(t *testing.T) {
	candidates := []candidate{
		{id: "scattered", label: "Pre-sale check Porsche", haystack: "Pre-sale check Porsche"},
		{id: "prefix", label: "Porsche delivery", haystack: "Porsche delivery"},
	}

	hits := rankCandidates("events", "porsche", candidates, 5)

	require.Len(t, hits, 2)
	assert.Equal(t, "prefix", hits[0].ID)
	assert.Greater(t, hits[0].Score, hits[1].Score)
}

func TestRankCandidatesHonorsLimit(t *testing.T) {
	hits := rankCandidates("cars", "porsche", carCandidates(), 2)
	assert.Len(t, hits, 2)
}

func TestRankCandidatesDropsNonMatches(t *testing.T) {
	hits := rankCandidates("cars", "zzzz", carCandidates(), 5)
	assert.Empty(t, hits)
}

func TestRankCandidatesMatchesAcrossHaystackNotJustLabel(t *testing.T) {
	candidates := []candidate{
		{id: "c1", label: "1973 Porsche 911", haystack: "1973 Porsche 911 WP0ZZZ91ZKS100001"},
	}

	hits := rankCandidates("cars", "ZKS100", candidates, 5)

	require.Len(t, hits, 1)
	assert.Equal(t, "1973 Porsche 911", hits[0].Label)
}

package utils_test

import (
	"testing"
	"time"

	"video-fetcher/infrastructure/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainsFold(t *testing.T) {
	assert.True(t, utils.ContainsFold("How to Make TEA", "tea"))
	assert.True(t, utils.ContainsFold("anything", ""))
	assert.False(t, utils.ContainsFold("coffee", "tea"))
}

func TestMatchesAllTerms(t *testing.T) {
	terms := utils.SearchTerms("  tea   how ")
	require.Equal(t, []string{"tea", "how"}, terms)

	assert.True(t, utils.MatchesAllTerms(terms, "How to make tea", ""))
	assert.True(t, utils.MatchesAllTerms(terms, "Tea time", "learn how"))
	assert.False(t, utils.MatchesAllTerms(terms, "Tea time", "brewing"))
	assert.True(t, utils.MatchesAllTerms(nil, "x"))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%\_a\\b`, utils.EscapeLike(`100%_a\b`))
}

func TestParseCount(t *testing.T) {
	n, ok := utils.ParseCount(utils.StringPtr("1200"))
	assert.True(t, ok)
	assert.EqualValues(t, 1200, n)

	_, ok = utils.ParseCount(utils.StringPtr("n/a"))
	assert.False(t, ok)

	_, ok = utils.ParseCount(nil)
	assert.False(t, ok)
}

func TestParseDate(t *testing.T) {
	d, err := utils.ParseDate("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), d)

	ts, err := utils.ParseDate("2024-03-01T10:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, 10, ts.Hour())

	_, err = utils.ParseDate("yesterday")
	assert.Error(t, err)
}

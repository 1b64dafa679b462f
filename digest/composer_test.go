package digest_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagdigest/digest"
	"tagdigest/models"
)

func scoreAll(t *testing.T, statuses []*models.Status) []digest.ScoredPost {
	t.Helper()
	return digest.Rank(digest.Scorer{Weights: digest.DefaultWeights}.ScoreAll(statuses))
}

func TestComposeNothingToReport(t *testing.T) {
	composer := digest.NewComposer("https://ursal.zone", digest.DefaultTopN)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	posts := scoreAll(t, []*models.Status{newStatus("1", now, "alice", 1, 1, 1)})

	text, ok := composer.Compose("caturday", nil, nil, 0)
	assert.False(t, ok)
	assert.Empty(t, text)

	text, ok = composer.Compose("", nil, posts, 10)
	assert.False(t, ok)
	assert.Empty(t, text)
}

func TestComposeSinglePost(t *testing.T) {
	composer := digest.NewComposer("https://ursal.zone/", digest.DefaultTopN)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	posts := scoreAll(t, []*models.Status{newStatus("42", now, "alice", 10, 5, 100)})

	today := &models.TagHistory{Day: "2024-06-01", Uses: "10", Accounts: "5"}
	text, ok := composer.Compose("caturday", today, posts, 10)
	require.True(t, ok)

	expected := "Tag do dia: #caturday\n\n" +
		"Uso da tag na semana: 10\n" +
		"Participantes: 5\n" +
		"Posts hoje: 10\n\n" +
		"Principais posts de hoje:\n\n" +
		"Publicado por alice\n" +
		"Seguidores: 100\n" +
		"⭐ 10 🔄 5 📈 35.5\n" +
		"🔗 https://ursal.zone/web/statuses/42\n\n"
	assert.Equal(t, expected, text)
}

func TestComposeUnknownStatistics(t *testing.T) {
	composer := digest.NewComposer("https://ursal.zone", digest.DefaultTopN)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	posts := scoreAll(t, []*models.Status{newStatus("1", now, "alice", 0, 0, 10)})

	text, ok := composer.Compose("caturday", nil, posts, 0)
	require.True(t, ok)
	assert.Contains(t, text, "Uso da tag na semana: 0\n")
	assert.Contains(t, text, "Participantes: unknown\n")
	assert.Contains(t, text, "Posts hoje: unknown\n")
	assert.Contains(t, text, "📈 3\n")

	text, ok = composer.Compose("caturday", &models.TagHistory{Day: "2024-06-01", Uses: "0", Accounts: "0"}, posts, 0)
	require.True(t, ok)
	assert.Contains(t, text, "Participantes: 0\n")
	assert.Contains(t, text, "Posts hoje: 0\n")
}

func TestComposeTopPostsByRelevance(t *testing.T) {
	composer := digest.NewComposer("https://ursal.zone", digest.DefaultTopN)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	statuses := []*models.Status{
		newStatus("1", now, "low", 0, 0, 1),
		newStatus("2", now, "fifth", 0, 0, 50),
		newStatus("3", now, "first", 0, 0, 1000),
		newStatus("4", now, "third", 10, 10, 100),
		newStatus("5", now, "second", 0, 0, 500),
		newStatus("6", now, "fourth", 0, 0, 80),
		newStatus("7", now, "lowest", 0, 0, 0),
	}
	text, ok := composer.Compose("caturday", nil, scoreAll(t, statuses), 7)
	require.True(t, ok)

	assert.Equal(t, 5, strings.Count(text, "Publicado por "))
	assert.NotContains(t, text, "Publicado por low\n")
	assert.NotContains(t, text, "Publicado por lowest\n")

	order := []string{"first", "second", "third", "fourth", "fifth"}
	last := -1
	for _, name := range order {
		idx := strings.Index(text, "Publicado por "+name+"\n")
		require.NotEqual(t, -1, idx, name)
		assert.Greater(t, idx, last, name)
		last = idx
	}
}

func TestComposeRanksUnsortedInput(t *testing.T) {
	composer := digest.NewComposer("https://ursal.zone", 2)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	posts := []digest.ScoredPost{
		{Status: newStatus("1", now, "c", 0, 0, 0), RelevanceScore: 1},
		{Status: newStatus("2", now, "a", 0, 0, 0), RelevanceScore: 9},
		{Status: newStatus("3", now, "b", 0, 0, 0), RelevanceScore: 5},
	}
	text, ok := composer.Compose("caturday", nil, posts, 0)
	require.True(t, ok)

	assert.Equal(t, 2, strings.Count(text, "Publicado por "))
	assert.Less(t, strings.Index(text, "Publicado por a\n"), strings.Index(text, "Publicado por b\n"))
	assert.NotContains(t, text, "Publicado por c\n")
}

func TestComposeIsDeterministic(t *testing.T) {
	composer := digest.NewComposer("https://ursal.zone", digest.DefaultTopN)
	posts := scoreAll(t, makeStatuses("p", 12, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)))
	today := &models.TagHistory{Day: "2024-06-01", Uses: "12", Accounts: "9"}

	first, ok := composer.Compose("caturday", today, posts, 40)
	require.True(t, ok)
	second, ok := composer.Compose("caturday", today, posts, 40)
	require.True(t, ok)

	assert.Equal(t, first, second)
}

func TestComposerLink(t *testing.T) {
	assert.Equal(t, "https://ursal.zone/web/statuses/110", digest.NewComposer("https://ursal.zone/", 5).Link("110"))
	assert.Equal(t, "https://example.social/web/statuses/1", digest.NewComposer("https://example.social", 5).Link("1"))
}

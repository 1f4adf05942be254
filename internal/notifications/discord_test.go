package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"samplepedia/internal/config"
	"samplepedia/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTask() *models.AnalysisTask {
	return &models.AnalysisTask{
		ID:           1,
		SHA256:       "a665a45920422f9d417e4867efdc4fb8a04a1f3fff1fa07e998e86f7f7a27ae3",
		DownloadLink: "https://bazaar.abuse.ch/sample/a665a459/",
		Goal:         "Identify the C2 protocol",
		Description:  "Packed loader observed in the wild",
		Difficulty:   models.DifficultyMedium,
		YouTubeID:    "dQw4w9WgXcQ",
		Tags:         []models.Label{{Name: "loader"}, {Name: "packed"}},
	}
}

func TestDiscordAnnouncer_Send(t *testing.T) {
	var got discordPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	cfg := &config.Config{
		DiscordWebhookURL: srv.URL,
		BaseURL:           "https://samplepedia.example.com",
	}
	announcer := NewDiscordAnnouncer(cfg)

	require.NoError(t, announcer.Send(context.Background(), sampleTask()))

	assert.Equal(t, "Samplepedia Bot", got.Username)
	require.Len(t, got.Embeds, 1)
	embed := got.Embeds[0]

	assert.Equal(t, "New Training Sample: a665a45920422f9d...", embed.Title)
	assert.Equal(t, "https://samplepedia.example.com/sample/a665a45920422f9d417e4867efdc4fb8a04a1f3fff1fa07e998e86f7f7a27ae3/", embed.URL)
	assert.Equal(t, 0xffc107, embed.Color)
	assert.Equal(t, "Samplepedia • Malware Training Samples", embed.Footer.Text)

	require.GreaterOrEqual(t, len(embed.Fields), 5)
	assert.Equal(t, "Goal", embed.Fields[0].Name)
	assert.Equal(t, "Identify the C2 protocol", embed.Fields[0].Value)
	assert.Equal(t, "Medium", embed.Fields[1].Value)
	assert.Equal(t, "loader, packed", embed.Fields[2].Value)
	assert.Equal(t, "Tutorial", embed.Fields[4].Name)
}

func TestDiscordAnnouncer_PerDifficultyWebhook(t *testing.T) {
	hits := map[string]int{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits[r.URL.Path]++
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	cfg := &config.Config{
		DiscordWebhookURL:  srv.URL + "/default",
		DiscordWebhookEasy: srv.URL + "/easy",
	}
	announcer := NewDiscordAnnouncer(cfg)

	easy := sampleTask()
	easy.Difficulty = models.DifficultyEasy
	require.NoError(t, announcer.Send(context.Background(), easy))

	advanced := sampleTask()
	advanced.Difficulty = models.DifficultyAdvanced
	require.NoError(t, announcer.Send(context.Background(), advanced))

	assert.Equal(t, 1, hits["/easy"])
	assert.Equal(t, 1, hits["/default"])
}

func TestDiscordAnnouncer_SkipsWithoutWebhook(t *testing.T) {
	announcer := NewDiscordAnnouncer(&config.Config{})
	assert.NoError(t, announcer.Send(context.Background(), sampleTask()))
}

func TestDiscordAnnouncer_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	announcer := NewDiscordAnnouncer(&config.Config{DiscordWebhookURL: srv.URL})
	err := announcer.Send(context.Background(), sampleTask())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestTruncate(t *testing.T) {
	t.Parallel()
	long := make([]byte, 250)
	for i := range long {
		long[i] = 'a'
	}
	assert.Len(t, truncate(string(long), 200), 203)
	assert.Equal(t, "short", truncate("short", 200))
}

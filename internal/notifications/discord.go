package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"samplepedia/internal/config"
	"samplepedia/internal/middleware"
	"samplepedia/internal/models"
)

const webhookTimeout = 10 * time.Second

// difficultyColors maps each tier to its Discord embed accent color.
var difficultyColors = map[models.Difficulty]int{
	models.DifficultyEasy:     0x28a745, // green
	models.DifficultyMedium:   0xffc107, // yellow
	models.DifficultyAdvanced: 0xdc3545, // red
	models.DifficultyExpert:   0x343a40, // dark
}

const defaultEmbedColor = 0x007bff

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordEmbedFooter struct {
	Text string `json:"text"`
}

type discordEmbedThumbnail struct {
	URL string `json:"url"`
}

type discordEmbed struct {
	Title       string                 `json:"title"`
	URL         string                 `json:"url"`
	Description string                 `json:"description"`
	Color       int                    `json:"color"`
	Fields      []discordEmbedField    `json:"fields"`
	Footer      discordEmbedFooter     `json:"footer"`
	Thumbnail   *discordEmbedThumbnail `json:"thumbnail,omitempty"`
}

type discordPayload struct {
	Embeds   []discordEmbed `json:"embeds"`
	Username string         `json:"username"`
}

// DiscordAnnouncer posts new-sample embeds to the per-difficulty Discord
// webhooks. Delivery is fire-and-forget: failures are logged and counted but
// never surface to the request that created the task.
type DiscordAnnouncer struct {
	cfg    *config.Config
	client *http.Client
}

func NewDiscordAnnouncer(cfg *config.Config) *DiscordAnnouncer {
	return &DiscordAnnouncer{
		cfg:    cfg,
		client: &http.Client{Timeout: webhookTimeout},
	}
}

// AnnounceTask delivers the embed in the background with its own timeout.
func (d *DiscordAnnouncer) AnnounceTask(task *models.AnalysisTask) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), webhookTimeout)
		defer cancel()
		if err := d.Send(ctx, task); err != nil {
			middleware.Logger.Error("Discord webhook delivery failed",
				"sha256", task.SHA256, "error", err)
		}
	}()
}

// Send posts the embed synchronously. Exposed separately so delivery can be
// exercised without goroutine timing.
func (d *DiscordAnnouncer) Send(ctx context.Context, task *models.AnalysisTask) error {
	webhookURL := d.cfg.WebhookURLFor(string(task.Difficulty))
	if webhookURL == "" {
		middleware.WebhookDeliveries.WithLabelValues("skipped").Inc()
		return nil
	}

	payload := discordPayload{
		Embeds:   []discordEmbed{d.buildEmbed(task)},
		Username: "Samplepedia Bot",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		middleware.WebhookDeliveries.WithLabelValues("failure").Inc()
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		middleware.WebhookDeliveries.WithLabelValues("failure").Inc()
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		middleware.WebhookDeliveries.WithLabelValues("failure").Inc()
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		middleware.WebhookDeliveries.WithLabelValues("failure").Inc()
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	middleware.WebhookDeliveries.WithLabelValues("success").Inc()
	return nil
}

func (d *DiscordAnnouncer) buildEmbed(task *models.AnalysisTask) discordEmbed {
	color, ok := difficultyColors[task.Difficulty]
	if !ok {
		color = defaultEmbedColor
	}

	goal := truncate(task.Goal, 200)
	if goal == "" {
		goal = "N/A"
	}

	embed := discordEmbed{
		Title:       fmt.Sprintf("New Training Sample: %s...", shortHash(task.SHA256)),
		URL:         d.cfg.BaseURL + task.DetailURL(),
		Description: truncate(task.Description, 200),
		Color:       color,
		Fields: []discordEmbedField{
			{Name: "Goal", Value: goal, Inline: false},
			{Name: "*Difficulty", Value: difficultyDisplay(task.Difficulty), Inline: true},
			{Name: "Tags", Value: tagList(task.Tags), Inline: true},
		},
		Footer: discordEmbedFooter{Text: "Samplepedia • Malware Training Samples"},
	}

	if task.DownloadLink != "" {
		embed.Fields = append(embed.Fields, discordEmbedField{
			Name:   "Download",
			Value:  fmt.Sprintf("[Click here](%s)", task.DownloadLink),
			Inline: true,
		})
	}
	if task.YouTubeID != "" {
		embed.Fields = append(embed.Fields, discordEmbedField{
			Name:   "Tutorial",
			Value:  fmt.Sprintf("[Watch on YouTube](https://www.youtube.com/watch?v=%s)", task.YouTubeID),
			Inline: true,
		})
	}
	if task.ImageURL != "" {
		embed.Thumbnail = &discordEmbedThumbnail{URL: task.ImageURL}
	}

	return embed
}

func shortHash(sha256 string) string {
	if len(sha256) > 16 {
		return sha256[:16]
	}
	return sha256
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

func difficultyDisplay(d models.Difficulty) string {
	s := string(d)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func tagList(tags []models.Label) string {
	if len(tags) == 0 {
		return "None"
	}
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return strings.Join(names, ", ")
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"hearth/internal/community"
	"hearth/internal/featureflags"
	"hearth/internal/genai"
	"hearth/internal/models"
	"hearth/internal/observability"
	"hearth/internal/repository"
)

const (
	defaultTopicSuggestions = 5
	maxTopicSuggestions     = 10
	maxPromptReplies        = 30
	maxPromptExcerpt        = 600
	healthWindow            = 7 * 24 * time.Hour
)

// Narrative states of a community health report.
const (
	NarrativeReady       = "ready"
	NarrativeUnavailable = "unavailable"
)

// HealthStats are deterministic community activity figures.
type HealthStats struct {
	Members           int `json:"members"`
	Groups            int `json:"groups"`
	Topics            int `json:"topics"`
	Replies           int `json:"replies"`
	TopicsLastWeek    int `json:"topics_last_week"`
	RepliesLastWeek   int `json:"replies_last_week"`
	ActiveMentorships int `json:"active_mentorships"`
	UpcomingEvents    int `json:"upcoming_events"`
	OpenChallenges    int `json:"open_challenges"`
	PendingReview     int `json:"pending_review"`
}

// CommunityHealthReport pairs the stats with a generated narrative when one is available.
type CommunityHealthReport struct {
	Stats           HealthStats `json:"stats"`
	Narrative       string      `json:"narrative,omitempty"`
	NarrativeStatus string      `json:"narrative_status"`
	GeneratedAt     time.Time   `json:"generated_at"`
}

// InsightsService provides the optional generative features. Every call is gated by
// the ai_assist flag and reports UNAVAILABLE when the model cannot help.
type InsightsService struct {
	cols    *repository.Collections
	gen     genai.Generator
	flags   *featureflags.Manager
	timeout time.Duration
}

func NewInsightsService(cols *repository.Collections, gen genai.Generator, flags *featureflags.Manager, timeout time.Duration) *InsightsService {
	if gen == nil {
		gen = genai.Disabled{}
	}
	return &InsightsService{cols: cols, gen: gen, flags: flags, timeout: timeout}
}

func (s *InsightsService) enabled(userID string) bool {
	return s.flags.Enabled(featureflags.AIAssist, userID)
}

// AIAssistStatus tells a client whether the generative features will answer for a user.
type AIAssistStatus struct {
	Enabled    bool `json:"enabled"`
	Configured bool `json:"configured"`
	Available  bool `json:"available"`
}

// Status reports the ai_assist gate for userID and whether a model is configured.
func (s *InsightsService) Status(userID string) AIAssistStatus {
	_, disabled := s.gen.(genai.Disabled)
	st := AIAssistStatus{Enabled: s.enabled(userID), Configured: !disabled}
	st.Available = st.Enabled && st.Configured
	return st
}

// generate calls the model outside of any store update, bounded by the service timeout.
func (s *InsightsService) generate(ctx context.Context, feature, prompt string, opts genai.Options) (genai.Result, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	res, err := s.gen.Generate(ctx, prompt, opts)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	observability.GenAIRequests.WithLabelValues(feature, outcome).Inc()
	return res, err
}

// SummarizeTopic generates a summary of the topic and its visible replies and stores it
// on the topic. A failed generation is recorded on the topic and reported as UNAVAILABLE.
func (s *InsightsService) SummarizeTopic(ctx context.Context, userID, topicID string) (*models.TopicSummary, error) {
	if !s.enabled(userID) {
		observability.GenAIRequests.WithLabelValues("summary", "disabled").Inc()
		return nil, models.NewUnavailableError("Topic summaries", nil)
	}
	topic, err := s.cols.Topics.Find(ctx, topicID)
	if err != nil {
		return nil, err
	}
	viewer, err := findProfile(ctx, s.cols, userID)
	if err != nil {
		return nil, err
	}
	groups, err := groupIndex(ctx, s.cols)
	if err != nil {
		return nil, err
	}
	if !topicVisible(topic, userID, viewer, groups) {
		return nil, models.NewNotFoundError("Topic", topicID)
	}

	res, genErr := s.generate(ctx, "summary", summaryPrompt(topic), genai.Options{})
	text := strings.TrimSpace(res.Text)
	if genErr == nil && text == "" {
		genErr = errors.New("empty summary")
	}

	ts := now()
	summary := models.TopicSummary{Status: models.SummaryReady, Text: text, GeneratedAt: &ts}
	if genErr != nil {
		summary = models.TopicSummary{Status: models.SummaryError, Error: "Summary could not be generated"}
	}
	if _, err := s.cols.Topics.Mutate(ctx, topicID, func(t *models.ForumTopic) error {
		stored := summary
		t.Summary = &stored
		return nil
	}); err != nil {
		slog.WarnContext(ctx, "failed to store topic summary", "topic_id", topicID, "err", err)
	}
	if genErr != nil {
		return nil, models.NewUnavailableError("Topic summaries", genErr)
	}
	return &summary, nil
}

func summaryPrompt(t *models.ForumTopic) string {
	var b strings.Builder
	b.WriteString("Summarize this community discussion in three sentences or fewer. ")
	b.WriteString("Be neutral and do not invent details.\n\n")
	fmt.Fprintf(&b, "Title: %s\nOpening post by %s:\n%s\n", t.Title, t.AuthorName, excerpt(t.Content))
	n := 0
	for _, r := range t.Replies {
		if r.ModerationStatus == models.ModerationInappropriate {
			continue
		}
		if n == maxPromptReplies {
			break
		}
		fmt.Fprintf(&b, "\nReply by %s:\n%s\n", r.AuthorName, excerpt(r.Content))
		n++
	}
	return b.String()
}

type topicSuggestions struct {
	Topics []string `json:"topics"`
}

// SuggestTopics proposes discussion titles for the user based on their interests
// and what the community is already talking about.
func (s *InsightsService) SuggestTopics(ctx context.Context, userID string, count int) ([]string, error) {
	if !s.enabled(userID) {
		observability.GenAIRequests.WithLabelValues("suggestions", "disabled").Inc()
		return nil, models.NewUnavailableError("Topic suggestions", nil)
	}
	if count <= 0 {
		count = defaultTopicSuggestions
	}
	if count > maxTopicSuggestions {
		count = maxTopicSuggestions
	}
	profile, err := ensureProfile(ctx, s.cols, userID)
	if err != nil {
		return nil, err
	}
	topics, err := s.cols.Topics.All(ctx)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Suggest %d new discussion topic titles for a member of a self-improvement community. ", count)
	b.WriteString(`Reply with a JSON object of the form {"topics": ["..."]}.` + "\n")
	if len(profile.Interests) > 0 {
		fmt.Fprintf(&b, "Member interests: %s\n", strings.Join(profile.Interests, ", "))
	}
	if len(profile.SeekingHelpWith) > 0 {
		fmt.Fprintf(&b, "Member wants help with: %s\n", strings.Join(profile.SeekingHelpWith, ", "))
	}
	b.WriteString("Avoid repeating these existing titles:\n")
	for i := len(topics) - 1; i >= 0 && i >= len(topics)-maxPromptReplies; i-- {
		if topics[i].ModerationStatus != models.ModerationInappropriate {
			fmt.Fprintf(&b, "- %s\n", topics[i].Title)
		}
	}

	res, err := s.generate(ctx, "suggestions", b.String(), genai.Options{StructuredOutput: true})
	if err != nil {
		return nil, models.NewUnavailableError("Topic suggestions", err)
	}
	var parsed topicSuggestions
	if err := json.Unmarshal(res.JSON, &parsed); err != nil {
		return nil, models.NewUnavailableError("Topic suggestions", fmt.Errorf("decode suggestions: %w", err))
	}

	seen := make(map[string]struct{})
	out := []string{}
	for _, title := range parsed.Topics {
		title = strings.TrimSpace(title)
		key := community.NormalizeTerm(title)
		if key == "" || utf8.RuneCountInString(title) > 200 {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, title)
		if len(out) == count {
			break
		}
	}
	if len(out) == 0 {
		return nil, models.NewUnavailableError("Topic suggestions", errors.New("no usable suggestions"))
	}
	return out, nil
}

// CommunityHealth reports activity stats. The narrative is added when the ai_assist
// flag is on and the model answers; otherwise the report says it is unavailable.
func (s *InsightsService) CommunityHealth(ctx context.Context, userID string) (*CommunityHealthReport, error) {
	ts := now()
	snap, err := s.cols.LoadSnapshot(ctx, ts)
	if err != nil {
		return nil, err
	}
	report := &CommunityHealthReport{
		Stats:           healthStats(snap, ts),
		NarrativeStatus: NarrativeUnavailable,
		GeneratedAt:     ts,
	}
	if !s.enabled(userID) {
		observability.GenAIRequests.WithLabelValues("health", "disabled").Inc()
		return report, nil
	}

	stats, err := json.Marshal(report.Stats)
	if err != nil {
		return nil, err
	}
	prompt := "Write a short, encouraging paragraph about the health of this community for its moderators, " +
		"pointing out one strength and one area to improve. Stats for the last week:\n" + string(stats)
	res, err := s.generate(ctx, "health", prompt, genai.Options{})
	if err != nil {
		slog.WarnContext(ctx, "community health narrative unavailable", "err", err)
		return report, nil
	}
	if text := strings.TrimSpace(res.Text); text != "" {
		report.Narrative = text
		report.NarrativeStatus = NarrativeReady
	}
	return report, nil
}

func healthStats(snap *community.Snapshot, at time.Time) HealthStats {
	since := at.Add(-healthWindow)
	st := HealthStats{
		Members: len(snap.Profiles),
		Groups:  len(snap.Groups),
		Topics:  len(snap.Topics),
	}
	for i := range snap.Topics {
		t := &snap.Topics[i]
		if !t.CreatedAt.Before(since) {
			st.TopicsLastWeek++
		}
		if t.ModerationStatus == models.ModerationPendingReview {
			st.PendingReview++
		}
		for _, r := range t.Replies {
			st.Replies++
			if !r.CreatedAt.Before(since) {
				st.RepliesLastWeek++
			}
			if r.ModerationStatus == models.ModerationPendingReview {
				st.PendingReview++
			}
		}
	}
	for i := range snap.Pairings {
		if snap.Pairings[i].Status == models.PairingActive {
			st.ActiveMentorships++
		}
	}
	for i := range snap.Events {
		if snap.Events[i].StartsAt.After(at) {
			st.UpcomingEvents++
		}
	}
	for i := range snap.Challenges {
		if community.ChallengeOpen(&snap.Challenges[i]) {
			st.OpenChallenges++
		}
	}
	return st
}

func excerpt(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= maxPromptExcerpt {
		return s
	}
	r := []rune(s)
	return string(r[:maxPromptExcerpt]) + "…"
}

package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"hearth/internal/community"
	"hearth/internal/docstore"
	"hearth/internal/middleware"
	"hearth/internal/models"
	"hearth/internal/repository"
	"hearth/internal/service"
)

// Options controls how much demo content is generated.
type Options struct {
	Members     int
	Groups      int
	Topics      int
	Templates   int
	Events      int
	Challenges  int
	Mentorships int
	ModeratorID string
	Clean       bool
}

// DefaultOptions is a small but well-connected community.
func DefaultOptions() Options {
	return Options{
		Members:     24,
		Groups:      4,
		Topics:      30,
		Templates:   8,
		Events:      6,
		Challenges:  4,
		Mentorships: 6,
		ModeratorID: "moderator",
		Clean:       true,
	}
}

var presets = map[string]Options{
	"tiny": {Members: 6, Groups: 1, Topics: 5, Templates: 2, Events: 1, Challenges: 1, Mentorships: 1, ModeratorID: "moderator", Clean: true},
	"busy": {Members: 120, Groups: 12, Topics: 250, Templates: 40, Events: 25, Challenges: 12, Mentorships: 30, ModeratorID: "moderator", Clean: true},
}

// Preset returns the named options. An empty name is the default preset.
func Preset(name string) (Options, error) {
	if name == "" || name == "default" {
		return DefaultOptions(), nil
	}
	opts, ok := presets[name]
	if !ok {
		return Options{}, fmt.Errorf("unknown seed preset %q", name)
	}
	return opts, nil
}

// Result reports what a run created.
type Result struct {
	MemberIDs    []string
	GroupIDs     []string
	TopicIDs     []string
	TemplateIDs  []string
	EventIDs     []string
	ChallengeIDs []string
	PairingIDs   []string
}

// Seeder writes generated content through the engine services.
type Seeder struct {
	cols        *repository.Collections
	profiles    *service.ProfileService
	forum       *service.ForumService
	groups      *service.GroupService
	templates   *service.TemplateService
	events      *service.EventService
	mentorships *service.MentorshipService
	factory     *Factory
	log         *slog.Logger
}

// NewSeeder binds a seeder to store. scanner may be nil to accept all content.
func NewSeeder(store docstore.Store, scanner community.ContentScanner, seed int64) *Seeder {
	if scanner == nil {
		scanner = community.NewKeywordScanner(nil)
	}
	cols := repository.NewCollections(store)
	standing := service.NewStandingService(cols, nil, nil)
	return &Seeder{
		cols:        cols,
		profiles:    service.NewProfileService(cols, standing),
		forum:       service.NewForumService(cols, scanner, standing, nil),
		groups:      service.NewGroupService(cols),
		templates:   service.NewTemplateService(cols, standing),
		events:      service.NewEventService(cols, standing),
		mentorships: service.NewMentorshipService(cols, standing, nil),
		factory:     NewFactory(seed),
		log:         middleware.Logger,
	}
}

// Run generates a community according to opts.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Members < 2 {
		return nil, fmt.Errorf("seed needs at least 2 members, got %d", opts.Members)
	}
	if opts.ModeratorID == "" {
		opts.ModeratorID = "moderator"
	}
	if opts.Clean {
		if err := s.cols.Reset(ctx); err != nil {
			return nil, fmt.Errorf("reset store: %w", err)
		}
	}

	res := &Result{}
	steps := []struct {
		name string
		fn   func(context.Context, Options, *Result) error
	}{
		{"members", s.seedMembers},
		{"groups", s.seedGroups},
		{"topics", s.seedTopics},
		{"templates", s.seedTemplates},
		{"events", s.seedEvents},
		{"challenges", s.seedChallenges},
		{"mentorships", s.seedMentorships},
	}
	for _, step := range steps {
		start := time.Now()
		if err := step.fn(ctx, opts, res); err != nil {
			return nil, fmt.Errorf("seed %s: %w", step.name, err)
		}
		s.log.InfoContext(ctx, "seeded", slog.String("step", step.name), slog.Duration("took", time.Since(start)))
	}
	return res, nil
}

func (s *Seeder) seedMembers(ctx context.Context, opts Options, res *Result) error {
	if err := s.profiles.GrantModerators(ctx, opts.ModeratorID); err != nil {
		return err
	}
	for i := 1; i <= opts.Members; i++ {
		m := s.factory.Member(i)
		if _, err := s.profiles.EnsureProfile(ctx, m.ID, m.DisplayName); err != nil {
			return err
		}
		if _, err := s.profiles.UpdateProfile(ctx, service.UpdateProfileInput{
			UserID:           m.ID,
			Bio:              &m.Bio,
			Location:         &m.Location,
			Interests:        m.Interests,
			SeekingHelpWith:  m.Seeking,
			OfferingHelpWith: m.Offering,
		}); err != nil {
			return err
		}

		role := models.MentorshipRoleNone
		switch i % 4 {
		case 0:
			role = models.MentorshipRoleMentor
		case 1:
			role = models.MentorshipRoleMentee
		}
		if role != models.MentorshipRoleNone {
			if _, err := s.profiles.SetMentorshipRole(ctx, service.SetMentorshipRoleInput{
				UserID:          m.ID,
				Role:            role,
				MentoringSkills: m.Offering,
				SeekingSkills:   m.Seeking,
			}); err != nil {
				return err
			}
		}
		res.MemberIDs = append(res.MemberIDs, m.ID)
	}

	for i := 0; i+1 < len(res.MemberIDs); i += 3 {
		if err := s.profiles.Connect(ctx, res.MemberIDs[i], res.MemberIDs[i+1]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedGroups(ctx context.Context, opts Options, res *Result) error {
	f := s.factory
	for i := 0; i < opts.Groups; i++ {
		creator := res.MemberIDs[f.Intn(len(res.MemberIDs))]
		topic := interests[i%len(interests)]
		g, err := s.groups.CreateGroup(ctx, service.CreateGroupInput{
			CreatorID:   creator,
			Name:        f.GroupName(topic),
			Description: f.Sentence(14),
			IsPrivate:   i%4 == 3,
			Tags:        []string{topic},
		})
		if err != nil {
			return err
		}

		for _, member := range f.Others(res.MemberIDs, creator, len(res.MemberIDs)/3) {
			if g.IsPrivate {
				_, err = s.groups.AddMember(ctx, creator, g.ID, member)
			} else {
				_, err = s.groups.JoinGroup(ctx, member, g.ID)
			}
			if err != nil {
				return err
			}
		}

		doc, err := s.groups.UpsertDocument(ctx, service.UpsertDocumentInput{
			ActorID: creator,
			GroupID: g.ID,
			Title:   "Meeting notes",
			Body:    f.Paragraphs(2),
		})
		if err != nil {
			return err
		}
		if _, err := s.groups.UpsertDocument(ctx, service.UpsertDocumentInput{
			ActorID:         creator,
			GroupID:         g.ID,
			DocID:           doc.ID,
			Body:            doc.Body + "\n\n" + f.Sentence(10),
			ExpectedVersion: &doc.Version,
		}); err != nil {
			return err
		}

		for t := 0; t < 3; t++ {
			due := f.Between(time.Now(), 21*24*time.Hour)
			task, err := s.groups.UpsertTask(ctx, service.UpsertTaskInput{
				ActorID:    creator,
				GroupID:    g.ID,
				Title:      f.TaskTitle(),
				AssigneeID: creator,
				DueDate:    &due,
			})
			if err != nil {
				return err
			}
			if t == 0 {
				if _, err := s.groups.ToggleTask(ctx, creator, g.ID, task.ID, nil); err != nil {
					return err
				}
			}
		}
		res.GroupIDs = append(res.GroupIDs, g.ID)
	}
	return nil
}

func (s *Seeder) seedTopics(ctx context.Context, opts Options, res *Result) error {
	f := s.factory
	for i := 0; i < opts.Topics; i++ {
		author := res.MemberIDs[f.Intn(len(res.MemberIDs))]
		in := service.CreateTopicInput{
			AuthorID: author,
			Title:    f.TopicTitle(),
			Content:  f.Paragraphs(1 + f.Intn(3)),
			Tags:     f.pick(interests, 1+f.Intn(3)),
		}
		if len(res.GroupIDs) > 0 && f.Chance(0.25) {
			g, err := s.groups.GetGroup(ctx, author, res.GroupIDs[f.Intn(len(res.GroupIDs))])
			if err == nil && g.IsMember(author) {
				in.GroupID = g.ID
			}
		}
		topic, err := s.forum.CreateTopic(ctx, in)
		if err != nil {
			return err
		}

		for _, replier := range f.Others(res.MemberIDs, author, f.Intn(5)) {
			if _, err := s.forum.Reply(ctx, service.ReplyInput{
				AuthorID: replier,
				TopicID:  topic.ID,
				Content:  f.Sentence(8 + f.Intn(20)),
			}); err != nil {
				if models.HasCode(err, models.CodeForbidden) || models.HasCode(err, models.CodeNotFound) {
					continue
				}
				return err
			}
		}

		for _, voter := range f.Others(res.MemberIDs, author, f.Intn(8)) {
			dir := models.VoteUp
			if f.Chance(0.2) {
				dir = models.VoteDown
			}
			if _, err := s.forum.VoteTopic(ctx, voter, topic.ID, dir); err != nil {
				if models.HasCode(err, models.CodeForbidden) || models.HasCode(err, models.CodeNotFound) {
					continue
				}
				return err
			}
		}
		res.TopicIDs = append(res.TopicIDs, topic.ID)
	}
	return nil
}

func (s *Seeder) seedTemplates(ctx context.Context, opts Options, res *Result) error {
	f := s.factory
	for i := 0; i < opts.Templates; i++ {
		author := res.MemberIDs[f.Intn(len(res.MemberIDs))]
		kind := f.TemplateType()
		t, err := s.templates.Submit(ctx, service.SubmitTemplateInput{
			AuthorID:    author,
			Title:       titleCase.String(kind) + ": " + f.Sentence(4),
			Description: f.Sentence(12),
			Type:        kind,
			Body:        f.Paragraphs(2),
			Tags:        f.pick(interests, 1),
		})
		if err != nil {
			return err
		}

		approve := i%5 != 4
		if _, err := s.templates.Review(ctx, opts.ModeratorID, t.ID, approve); err != nil {
			return err
		}
		if approve {
			for _, user := range f.Others(res.MemberIDs, author, 1+f.Intn(4)) {
				if _, err := s.templates.Rate(ctx, user, t.ID, 3+f.Intn(3)); err != nil {
					return err
				}
				if _, err := s.templates.Use(ctx, user, t.ID); err != nil {
					return err
				}
				if f.Chance(0.5) {
					if _, err := s.templates.Comment(ctx, user, t.ID, f.Sentence(10)); err != nil {
						return err
					}
				}
			}
		}
		res.TemplateIDs = append(res.TemplateIDs, t.ID)
	}
	return nil
}

func (s *Seeder) seedEvents(ctx context.Context, opts Options, res *Result) error {
	f := s.factory
	for i := 0; i < opts.Events; i++ {
		organizer := res.MemberIDs[f.Intn(len(res.MemberIDs))]
		starts := f.Between(time.Now().Add(24*time.Hour), 30*24*time.Hour)
		e, err := s.events.CreateEvent(ctx, service.CreateEventInput{
			OrganizerID: organizer,
			Title:       titleCase.String(interests[f.Intn(len(interests))]) + " meetup",
			Description: f.Sentence(15),
			StartsAt:    starts,
			EndsAt:      starts.Add(2 * time.Hour),
			Location:    f.fake.City(),
			IsPublic:    true,
		})
		if err != nil {
			return err
		}
		for _, attendee := range f.Others(res.MemberIDs, organizer, f.Intn(10)) {
			if _, err := s.events.JoinEvent(ctx, attendee, e.ID); err != nil {
				return err
			}
		}
		res.EventIDs = append(res.EventIDs, e.ID)
	}
	return nil
}

func (s *Seeder) seedChallenges(ctx context.Context, opts Options, res *Result) error {
	f := s.factory
	for i := 0; i < opts.Challenges; i++ {
		organizer := res.MemberIDs[f.Intn(len(res.MemberIDs))]
		starts := f.Between(time.Now().Add(-7*24*time.Hour), 14*24*time.Hour)
		c, err := s.events.CreateChallenge(ctx, service.CreateChallengeInput{
			OrganizerID: organizer,
			Title:       fmt.Sprintf("%d-day %s challenge", 7*(1+f.Intn(4)), interests[f.Intn(len(interests))]),
			Description: f.Sentence(15),
			StartsAt:    starts,
			EndsAt:      starts.Add(30 * 24 * time.Hour),
			IsPublic:    true,
		})
		if err != nil {
			return err
		}
		for _, participant := range f.Others(res.MemberIDs, organizer, 2+f.Intn(8)) {
			if _, err := s.events.JoinChallenge(ctx, participant, c.ID); err != nil {
				return err
			}
		}

		var path []models.ChallengeStatus
		switch i % 4 {
		case 1:
			path = []models.ChallengeStatus{models.ChallengeActive}
		case 2:
			path = []models.ChallengeStatus{models.ChallengeActive, models.ChallengeCompleted}
		case 3:
			path = []models.ChallengeStatus{models.ChallengeCancelled}
		}
		for _, to := range path {
			if _, err := s.events.SetChallengeStatus(ctx, organizer, c.ID, to); err != nil {
				return err
			}
		}
		res.ChallengeIDs = append(res.ChallengeIDs, c.ID)
	}
	return nil
}

func (s *Seeder) seedMentorships(ctx context.Context, opts Options, res *Result) error {
	for i, menteeID := range res.MemberIDs {
		if len(res.PairingIDs) >= opts.Mentorships {
			break
		}
		if (i+1)%4 != 1 {
			continue
		}
		matches, err := s.mentorships.SuggestMentors(ctx, menteeID, 1)
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			continue
		}
		mentor := matches[0].Profile.ID
		skill := firstOf(matches[0].SharedSkills, matches[0].Profile.MentoringSkills)
		if skill == "" {
			continue
		}

		p, err := s.mentorships.RequestMentorship(ctx, service.RequestMentorshipInput{
			MenteeID: menteeID,
			MentorID: mentor,
			Skill:    skill,
		})
		if err != nil {
			return err
		}
		res.PairingIDs = append(res.PairingIDs, p.ID)

		if len(res.PairingIDs)%3 == 0 {
			continue
		}
		if _, err := s.mentorships.AcceptMentorship(ctx, mentor, p.ID); err != nil {
			return err
		}
		session, err := s.mentorships.ScheduleSession(ctx, menteeID, p.ID, s.factory.Between(time.Now(), 14*24*time.Hour))
		if err != nil {
			return err
		}
		if _, err := s.mentorships.AddFeedback(ctx, service.FeedbackInput{
			ActorID:   menteeID,
			PairingID: p.ID,
			SessionID: session.ID,
			Rating:    4 + s.factory.Intn(2),
			Text:      s.factory.Sentence(8),
		}); err != nil {
			return err
		}
		if len(res.PairingIDs)%2 == 0 {
			if _, err := s.mentorships.CompleteMentorship(ctx, mentor, p.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

func firstOf(lists ...[]string) string {
	for _, l := range lists {
		if len(l) > 0 {
			return l[0]
		}
	}
	return ""
}

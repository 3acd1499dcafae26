// Package seed populates a community store with demo data for development.
// It writes through the engine services so every seeded record obeys the same
// rules as live traffic.
package seed

import (
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCase = cases.Title(language.English)

var (
	interests = []string{
		"gardening", "running", "cooking", "photography", "reading", "budgeting",
		"parenting", "meditation", "woodworking", "travel", "music", "volunteering",
	}

	skills = []string{
		"go", "public speaking", "resume writing", "watercolor", "bread baking",
		"personal finance", "yoga", "spanish", "home repair", "data analysis",
	}

	templateTypes = []string{"checklist", "guide", "meal plan", "workout", "budget"}

	taskVerbs = []string{"Draft", "Book", "Review", "Share", "Collect", "Plan"}
)

// Member is a generated community member before it is written to the store.
type Member struct {
	ID          string
	DisplayName string
	Bio         string
	Location    string
	Interests   []string
	Offering    []string
	Seeking     []string
}

// Factory produces fake community content from a seeded faker.
type Factory struct {
	fake *gofakeit.Faker
}

// NewFactory returns a factory seeded with seed. Zero picks a random seed.
func NewFactory(seed int64) *Factory {
	return &Factory{fake: gofakeit.New(seed)}
}

// Member builds the n-th member. IDs are stable across runs.
func (f *Factory) Member(n int) Member {
	first, last := f.fake.FirstName(), f.fake.LastName()
	return Member{
		ID:          fmt.Sprintf("member-%03d", n),
		DisplayName: first + " " + last,
		Bio:         f.fake.Sentence(12),
		Location:    f.fake.City(),
		Interests:   f.pick(interests, 1+f.fake.Number(0, 2)),
		Offering:    f.pick(skills, 1+f.fake.Number(0, 1)),
		Seeking:     f.pick(skills, 1+f.fake.Number(0, 1)),
	}
}

// TopicTitle returns a question-like discussion title.
func (f *Factory) TopicTitle() string {
	return strings.TrimSuffix(f.fake.Sentence(6), ".") + "?"
}

// Paragraphs returns n paragraphs of filler text.
func (f *Factory) Paragraphs(n int) string {
	return f.fake.Paragraph(n, 3, 10, "\n\n")
}

// Sentence returns a sentence of words words.
func (f *Factory) Sentence(words int) string {
	return f.fake.Sentence(words)
}

// GroupName returns a name such as "Riverside Gardening Circle".
func (f *Factory) GroupName(topic string) string {
	return f.fake.City() + " " + titleCase.String(topic) + " Circle"
}

// TaskTitle returns a short imperative task title.
func (f *Factory) TaskTitle() string {
	return f.fake.RandomString(taskVerbs) + " " + strings.ToLower(strings.TrimSuffix(f.fake.Sentence(3), "."))
}

// TemplateType returns one of the known template kinds.
func (f *Factory) TemplateType() string {
	return f.fake.RandomString(templateTypes)
}

// Between returns a random time in [from, from+span).
func (f *Factory) Between(from time.Time, span time.Duration) time.Time {
	minutes := int(span / time.Minute)
	return from.Add(time.Duration(f.Intn(minutes)) * time.Minute)
}

// Intn returns a number in [0, n).
func (f *Factory) Intn(n int) int {
	if n <= 1 {
		return 0
	}
	return f.fake.Number(0, n-1)
}

// Chance reports true with probability p.
func (f *Factory) Chance(p float64) bool {
	return f.fake.Float64Range(0, 1) < p
}

// Others returns up to n ids from ids, skipping exclude.
func (f *Factory) Others(ids []string, exclude string, n int) []string {
	pool := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != exclude {
			pool = append(pool, id)
		}
	}
	return f.pick(pool, n)
}

func (f *Factory) pick(list []string, n int) []string {
	shuffled := append([]string(nil), list...)
	f.fake.ShuffleStrings(shuffled)
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}

package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hyperengineering/cadence/internal/quality"
	"github.com/hyperengineering/cadence/internal/types"
)

var _ Generator = (*Template)(nil)

// templates are rotated by day so consecutive fallback posts on the same
// topic still differ in wording and structure.
var templates = []string{
	"The pace of change in %[1]s keeps accelerating, and most teams are still catching up.\n\n" +
		"What stands out to me is how quickly the fundamentals shift. Approaches that were state of the art a year ago are table stakes now, and the teams doing well are the ones treating learning as part of the job rather than something that happens between projects.\n\n" +
		"I keep coming back to one habit that separates the strong teams from the rest. They write down what they tried, what broke, and what they would do differently. That record compounds faster than any single tool choice.\n\n" +
		"The gap between experimenting with %[1]s and running it reliably is where the real work lives, and it rewards patience more than cleverness.\n\n" +
		"How is your team keeping up with the pace of change in this space?\n\n%[2]s",
	"Everyone talks about %[1]s, but few conversations get past the surface.\n\n" +
		"After spending serious time in this area, I have found that the hard problems are rarely the ones that make headlines. They are the unglamorous ones, such as data quality, clear ownership, and knowing when a simpler approach wins.\n\n" +
		"One lesson took me longest to learn. Progress comes from shipping small, measurable improvements, not from waiting for the perfect architecture. Every production system I respect got there through a series of modest, reversible steps.\n\n" +
		"The teams that succeed with %[1]s treat it as an engineering discipline first and a research topic second. That framing changes what you prioritize and what you ignore.\n\n" +
		"What is the most underrated challenge you have hit working in this space?\n\n%[2]s",
	"I have been thinking a lot about where %[1]s is heading.\n\n" +
		"The obvious trend lines get plenty of coverage. The quieter shift is in who gets to use these capabilities. Work that needed a specialist team two years ago is now within reach of a single motivated engineer, and that changes the economics of what is worth building.\n\n" +
		"With that access comes a new bottleneck. Judgment. Knowing which problems deserve this tooling, and which are better served by something boring, matters more than mastering any particular framework.\n\n" +
		"My bet is that the next wave of value in %[1]s comes from integration rather than invention. The pieces exist. Wiring them into real workflows is the craft.\n\n" +
		"Where do you see the biggest opportunity over the next year?\n\n%[2]s",
}

// Template is the offline fallback generator. It is deterministic for a
// given topic and day, requires no network, and always succeeds.
type Template struct {
	hashtags []string
	now      func() time.Time
}

// NewTemplate creates the fallback generator. Extra hashtags supplement the
// ones derived from the topic; now overrides the clock for tests.
func NewTemplate(extraHashtags string, now func() time.Time) *Template {
	tags := strings.Fields(extraHashtags)
	if now == nil {
		now = time.Now
	}
	return &Template{hashtags: tags, now: now}
}

// Name returns the generator name for logging.
func (t *Template) Name() string {
	return "template"
}

// Generate renders the day's template for the topic.
func (t *Template) Generate(ctx context.Context, sel types.Selection) (*types.Draft, error) {
	topic := displayTopic(sel)
	tags := t.topicHashtags(topic)

	idx := t.now().YearDay() % len(templates)
	body := fmt.Sprintf(templates[idx], topic, strings.Join(tags, " "))

	return &types.Draft{
		Title:        fmt.Sprintf("Thoughts on %s", topic),
		Body:         body,
		Hashtags:     tags,
		Keywords:     quality.Keywords(body, 12),
		QualityScore: quality.Score(body),
	}, nil
}

// displayTopic turns a selection into prose-friendly wording. Repo topics
// arrive as "owner/name"; the name alone reads better in a sentence.
func displayTopic(sel types.Selection) string {
	topic := sel.Topic
	if sel.Source == types.SourceRepo {
		if i := strings.LastIndex(topic, "/"); i >= 0 {
			topic = topic[i+1:]
		}
		topic = strings.NewReplacer("-", " ", "_", " ").Replace(topic)
	}
	return topic
}

// topicHashtags builds 3-5 hashtags from the topic words plus configured
// extras, deduplicated case-insensitively.
func (t *Template) topicHashtags(topic string) []string {
	var tags []string
	seen := make(map[string]bool)

	add := func(tag string) {
		if tag == "#" || seen[strings.ToLower(tag)] || len(tags) >= 5 {
			return
		}
		seen[strings.ToLower(tag)] = true
		tags = append(tags, tag)
	}

	for _, word := range strings.Fields(topic) {
		word = strings.Map(func(r rune) rune {
			if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, word)
		if len(word) > 2 {
			add("#" + capitalize(word))
		}
	}
	for _, extra := range t.hashtags {
		if !strings.HasPrefix(extra, "#") {
			extra = "#" + extra
		}
		add(extra)
	}
	for _, generic := range []string{"#Tech", "#Engineering", "#Innovation"} {
		if len(tags) >= 3 {
			break
		}
		add(generic)
	}

	return tags
}

func capitalize(word string) string {
	lower := strings.ToLower(word)
	return strings.ToUpper(lower[:1]) + lower[1:]
}

package calendar

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testCalendarYAML = `weekly_schedule:
  monday:
    topic: "GenAI for Drug Discovery"
  tuesday:
    topic: "AI Case Studies"
    subtopics:
      - "Healthcare"
      - "Finance"
  sunday:
    topic: "Weekly AI Recap"
`

func writeCalendar(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "calendar.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_MissingFileYieldsEmptyCalendar(t *testing.T) {
	cal, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if got := cal.TopicFor(time.Now()); got != "" {
		t.Errorf("expected empty topic from empty calendar, got %q", got)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeCalendar(t, "weekly_schedule: [not a map")
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestTopicFor_PlainDay(t *testing.T) {
	cal, err := Load(writeCalendar(t, testCalendarYAML))
	if err != nil {
		t.Fatal(err)
	}

	// 2026-03-02 is a Monday
	monday := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	if got := cal.TopicFor(monday); got != "GenAI for Drug Discovery" {
		t.Errorf("TopicFor(monday) = %q", got)
	}
}

func TestTopicFor_UnscheduledDay(t *testing.T) {
	cal, err := Load(writeCalendar(t, testCalendarYAML))
	if err != nil {
		t.Fatal(err)
	}

	// 2026-03-04 is a Wednesday, which has no entry
	wednesday := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	if got := cal.TopicFor(wednesday); got != "" {
		t.Errorf("expected no topic for unscheduled day, got %q", got)
	}
}

func TestTopicFor_SubtopicsRotateByWeek(t *testing.T) {
	cal, err := Load(writeCalendar(t, testCalendarYAML))
	if err != nil {
		t.Fatal(err)
	}

	// Consecutive Tuesdays should rotate through the subtopics
	first := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	second := first.AddDate(0, 0, 7)

	topicA := cal.TopicFor(first)
	topicB := cal.TopicFor(second)

	if topicA == topicB {
		t.Errorf("expected different subtopics on consecutive weeks, got %q twice", topicA)
	}
	for _, topic := range []string{topicA, topicB} {
		if topic != "AI Case Studies: Healthcare" && topic != "AI Case Studies: Finance" {
			t.Errorf("unexpected topic %q", topic)
		}
	}

	// Same day always resolves the same topic
	if got := cal.TopicFor(first); got != topicA {
		t.Errorf("expected deterministic resolution, got %q then %q", topicA, got)
	}
}

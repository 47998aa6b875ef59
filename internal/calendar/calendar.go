// Package calendar loads the weekly posting schedule from a YAML file and
// resolves the topic planned for a given day.
package calendar

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DayEntry is the schedule for one weekday.
type DayEntry struct {
	Topic     string   `yaml:"topic"`
	Subtopics []string `yaml:"subtopics"`
}

// Calendar maps lower-cased weekday names to their planned entries.
type Calendar struct {
	WeeklySchedule map[string]DayEntry `yaml:"weekly_schedule"`
}

// Load reads the calendar from path. A missing file is not an error; it
// yields an empty calendar and the selector simply skips the calendar stage.
func Load(path string) (*Calendar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Calendar{}, nil
		}
		return nil, fmt.Errorf("reading calendar file: %w", err)
	}

	var cal Calendar
	if err := yaml.Unmarshal(data, &cal); err != nil {
		return nil, fmt.Errorf("parsing calendar file: %w", err)
	}
	return &cal, nil
}

// TopicFor returns the topic planned for the day of t, or "" when the
// calendar has no entry. When a day lists subtopics, they rotate by ISO week
// so consecutive weeks cover different angles without any hidden state.
func (c *Calendar) TopicFor(t time.Time) string {
	if c == nil || len(c.WeeklySchedule) == 0 {
		return ""
	}

	entry, ok := c.WeeklySchedule[strings.ToLower(t.Weekday().String())]
	if !ok || entry.Topic == "" {
		return ""
	}

	if len(entry.Subtopics) == 0 {
		return entry.Topic
	}

	_, week := t.ISOWeek()
	sub := entry.Subtopics[week%len(entry.Subtopics)]
	return fmt.Sprintf("%s: %s", entry.Topic, sub)
}

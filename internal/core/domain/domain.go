// Package domain holds the core types shared across the post-generation
// pipeline: targets, generation requests, posts and job logs.
package domain

import "time"

// JobType identifies what triggered a pipeline run.
type JobType string

// Job type constants.
const (
	JobTypeAuto   JobType = "auto"
	JobTypeManual JobType = "manual"
)

// ContentClass identifies the kind of text a generation call produces.
// Each class has its own ranked backend chain and prompt shape.
type ContentClass string

// Content class constants.
const (
	ClassTitle ContentClass = "title"
	ClassAlt   ContentClass = "alt"
	ClassBody  ContentClass = "body"
	ClassTags  ContentClass = "tags"
)

// Style selects the voice of a generated post.
type Style string

// Style constants.
const (
	StyleReport Style = "report"
	StyleStory  Style = "story"
	StyleExpert Style = "expert"
)

// Styles lists all selectable content styles.
var Styles = []Style{StyleReport, StyleStory, StyleExpert}

// Location is one entry of the deduplicated location catalog.
type Location struct {
	Region   string
	District string
}

// Target is the output of target selection: where and what to write about.
type Target struct {
	City     string
	District string
	Service  string
	Style    Style
	Keyword  string
}

// GenerationRequest describes a single text-generation call.
type GenerationRequest struct {
	Prompt      string
	Class       ContentClass
	Temperature float32
	JSONMode    bool
}

// GenerationResult carries the raw completion and the backend model that
// produced it.
type GenerationResult struct {
	Text  string
	Model string
}

// Post status constants.
const (
	PostStatusPublished = "published"
)

// Post is a generated blog post as persisted.
type Post struct {
	ID        string
	Keyword   string
	Title     string
	Content   string
	ImageURL  string
	Status    string
	Category  string
	CreatedAt time.Time
}

// Job log status constants.
const (
	JobStatusSuccess = "success"
	JobStatusFailure = "failure"
)

// JobLog records the outcome of one pipeline invocation.
// Exactly one is written per run, at the end on success or from the
// failure handler otherwise.
type JobLog struct {
	JobType      JobType
	Status       string
	Keyword      string
	Title        string
	ModelUsed    string
	ErrorMessage string
	CreatedAt    time.Time
}

// AutomationSettings controls the scheduler. Stored as a JSON setting so
// operators can change it without a redeploy.
type AutomationSettings struct {
	Active      bool   `json:"isActive"`
	DailyTarget int    `json:"dailyTarget"`
	StartTime   string `json:"startTime"` // "08:00"
	EndTime     string `json:"endTime"`   // "23:00"
}

// DefaultAutomationSettings returns the values used until an operator
// saves their own.
func DefaultAutomationSettings() AutomationSettings {
	return AutomationSettings{
		Active:      true,
		DailyTarget: 100,
		StartTime:   "08:00",
		EndTime:     "23:00",
	}
}

// Result is the value the pipeline returns to its caller. The pipeline
// never propagates a raw error past its boundary.
type Result struct {
	Success  bool   `json:"success"`
	Keyword  string `json:"keyword,omitempty"`
	Title    string `json:"title,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
	Error    string `json:"error,omitempty"`
}

package mood

import (
	"strings"
	"unicode/utf8"
)

const (
	MinValue      = 1
	MaxValue      = 10
	MaxNoteLength = 100
)

// Category buckets a 1-10 mood value.
type Category string

const (
	VeryLow      Category = "very_low"
	Low          Category = "low"
	Neutral      Category = "neutral"
	Positive     Category = "positive"
	VeryPositive Category = "very_positive"
)

// Categories lists every category from lowest to highest.
var Categories = []Category{VeryLow, Low, Neutral, Positive, VeryPositive}

// CategoryOf maps any integer to a category. Values above 10 or below 1 land
// in the outer buckets.
func CategoryOf(value int) Category {
	switch {
	case value >= 8:
		return VeryPositive
	case value >= 6:
		return Positive
	case value >= 4:
		return Neutral
	case value >= 2:
		return Low
	default:
		return VeryLow
	}
}

// Rank orders categories; unknown categories rank -1.
func (c Category) Rank() int {
	for i, cat := range Categories {
		if cat == c {
			return i
		}
	}
	return -1
}

func (c Category) Valid() bool { return c.Rank() >= 0 }

type Mood struct {
	ID    string `json:"id"`
	Emoji string `json:"emoji"`
	Label string `json:"label"`
}

// Moods is the fixed picker table. The first entry is the fallback for
// unknown ids.
var Moods = []Mood{
	{ID: "happy", Emoji: "😊", Label: "Happy"},
	{ID: "calm", Emoji: "😌", Label: "Calm"},
	{ID: "anxious", Emoji: "😰", Label: "Anxious"},
	{ID: "sad", Emoji: "😢", Label: "Sad"},
	{ID: "angry", Emoji: "😠", Label: "Angry"},
	{ID: "excited", Emoji: "🤩", Label: "Excited"},
	{ID: "tired", Emoji: "😴", Label: "Tired"},
	{ID: "overwhelmed", Emoji: "😵", Label: "Overwhelmed"},
}

// Lookup returns the mood with the given id, or the first table entry.
func Lookup(id string) Mood {
	for _, m := range Moods {
		if m.ID == id {
			return m
		}
	}
	return Moods[0]
}

func EmojiFor(id string) string { return Lookup(id).Emoji }

var categoryMood = map[Category]string{
	VeryLow:      "overwhelmed",
	Low:          "sad",
	Neutral:      "calm",
	Positive:     "happy",
	VeryPositive: "excited",
}

// EmojiForValue picks a representative emoji for a mood value.
func EmojiForValue(v int) string { return EmojiFor(categoryMood[CategoryOf(v)]) }

func ValidValue(v int) bool { return v >= MinValue && v <= MaxValue }

// TruncateNote trims surrounding whitespace and keeps at most MaxNoteLength runes.
func TruncateNote(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= MaxNoteLength {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:MaxNoteLength]))
}

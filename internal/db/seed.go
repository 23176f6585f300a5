package db

import (
	"context"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"moodwall/internal/models"
	"moodwall/internal/mood"
)

//go:embed seeddata/support_messages.yaml
var supportMessagesYAML []byte

type supportSeed struct {
	Messages []models.SupportMessage `yaml:"messages"`
}

// SupportUpserter is the slice of the store that seeding needs.
type SupportUpserter interface {
	UpsertSupportMessages(ctx context.Context, msgs []models.SupportMessage) (int, error)
}

// ParseSupportMessages decodes and validates a support message seed file.
func ParseSupportMessages(raw []byte) ([]models.SupportMessage, error) {
	var seed supportSeed
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("parse support messages: %w", err)
	}
	for i, m := range seed.Messages {
		switch {
		case !mood.Category(m.Category).Valid():
			return nil, fmt.Errorf("support message %d: unknown category %q", i, m.Category)
		case m.RangeStart < mood.MinValue || m.RangeEnd > mood.MaxValue || m.RangeStart > m.RangeEnd:
			return nil, fmt.Errorf("support message %d: bad range %d-%d", i, m.RangeStart, m.RangeEnd)
		case m.Message == "":
			return nil, fmt.Errorf("support message %d: empty message", i)
		}
	}
	return seed.Messages, nil
}

// SeedSupportMessages loads the embedded support messages. Re-running it keeps
// existing usage counts.
func SeedSupportMessages(ctx context.Context, st SupportUpserter) (int, error) {
	msgs, err := ParseSupportMessages(supportMessagesYAML)
	if err != nil {
		return 0, err
	}
	return st.UpsertSupportMessages(ctx, msgs)
}

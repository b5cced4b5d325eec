// Package questionnaire models a questionnaire as an ordered store of
// question records keyed by normalized question text.
package questionnaire

import (
	"strings"

	"go.uber.org/zap"
)

// Role distinguishes the two questionnaire sides. The reference side carries
// the answers of record; the unanswered side is the one being filled.
type Role string

const (
	RoleReference  Role = "reference"
	RoleUnanswered Role = "unanswered"
)

// Record is one question instance. Text is the normalized question string
// and acts as the record's key within its owning store. MatchedReference is
// only meaningful on unanswered-side records; empty means no match.
type Record struct {
	Text             string
	Answer           string
	OriginID         int // ordinal assigned at load time, used for row indexing
	IsReference      bool
	MatchedReference string
	QuestionScore    float64
	AnswerScore      float64
}

// Store owns the records of one questionnaire. Records are appended at load
// time and never removed; the matching stages only mutate MatchedReference
// and the two score fields. Iteration order is load order.
type Store struct {
	role    Role
	records []*Record
	index   map[string]int // normalized text -> records position
}

// NewStore returns an empty store for the given role.
func NewStore(role Role) *Store {
	return &Store{
		role:  role,
		index: make(map[string]int),
	}
}

// Role returns the store's role.
func (s *Store) Role() Role { return s.role }

// Len returns the number of records.
func (s *Store) Len() int { return len(s.records) }

// Add normalizes text and appends a record. The answer is kept only if it is
// non-blank after trimming. Two rows that normalize to the same key collide:
// the later row overwrites the earlier one in place, which is surfaced as a
// warning rather than swallowed.
func (s *Store) Add(rawText, answer string, originID int) *Record {
	text := Normalize(rawText)

	rec := &Record{
		Text:        text,
		OriginID:    originID,
		IsReference: s.role == RoleReference,
	}
	if rec.IsReference {
		rec.MatchedReference = text
	}
	if strings.TrimSpace(answer) != "" {
		rec.Answer = answer
	}

	if pos, ok := s.index[text]; ok {
		zap.L().Warn("questionnaire: duplicate normalized question key, later row overwrites earlier",
			zap.String("role", string(s.role)),
			zap.String("question", text),
			zap.Int("earlier_row", s.records[pos].OriginID),
			zap.Int("later_row", originID),
		)
		s.records[pos] = rec
		return rec
	}

	s.index[text] = len(s.records)
	s.records = append(s.records, rec)
	return rec
}

// Get returns the record for a normalized question key.
func (s *Store) Get(text string) (*Record, bool) {
	pos, ok := s.index[text]
	if !ok {
		return nil, false
	}
	return s.records[pos], true
}

// Records returns all records in load order.
func (s *Store) Records() []*Record { return s.records }

// Keys returns all normalized question keys in load order.
func (s *Store) Keys() []string {
	keys := make([]string, len(s.records))
	for i, rec := range s.records {
		keys[i] = rec.Text
	}
	return keys
}

package matcher

import (
	"github.com/sells-group/questionnaire-cli/internal/questionnaire"
)

// NoMatchRow is the sentinel reference-row index for records with no match.
const NoMatchRow = -1

// Row is one line of the combined questionnaire.
type Row struct {
	CurrentQuestion string
	MatchedQuestion string
	MatchedRow      int // 1-based reference row, or NoMatchRow
	QuestionScore   float64
	CurrentAnswer   string
	MatchedAnswer   string
	AnswerScore     float64
}

// Flagged reports whether the row should be highlighted for human review:
// either score strictly below the accuracy threshold.
func (r Row) Flagged(threshold float64) bool {
	return r.QuestionScore < threshold || r.AnswerScore < threshold
}

// Assemble joins the two stores into the combined table, one row per
// unanswered record in store order. Rows without a resolvable reference
// match carry the sentinel index and an empty matched answer.
func Assemble(ref, unans *questionnaire.Store) []Row {
	rows := make([]Row, 0, unans.Len())
	for _, rec := range unans.Records() {
		row := Row{
			CurrentQuestion: rec.Text,
			MatchedQuestion: rec.MatchedReference,
			MatchedRow:      NoMatchRow,
			QuestionScore:   rec.QuestionScore,
			CurrentAnswer:   rec.Answer,
			AnswerScore:     rec.AnswerScore,
		}

		if rec.MatchedReference != "" {
			if refRec, ok := ref.Get(rec.MatchedReference); ok {
				row.MatchedRow = refRec.OriginID + 1
				row.MatchedAnswer = refRec.Answer
			}
		}

		rows = append(rows, row)
	}
	return rows
}

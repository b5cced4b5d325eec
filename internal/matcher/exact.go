package matcher

import (
	"go.uber.org/zap"

	"github.com/sells-group/questionnaire-cli/internal/questionnaire"
)

// MatchExact partitions the unanswered store into exact-matched records and
// the remainder. For every unanswered key it checks direct presence in the
// reference store and the override table; the two checks are evaluated
// unconditionally, so an override can restate a direct hit. Matched records
// get a question score of exactly 1. Returns the unmatched unanswered keys
// and the unclaimed reference keys, both in store order.
func MatchExact(ref, unans *questionnaire.Store, overrides Overrides) (remainingUnans, remainingRef []string) {
	matchedUnans := make(map[string]bool)
	matchedRef := make(map[string]bool)

	for _, rec := range unans.Records() {
		if refRec, ok := ref.Get(rec.Text); ok {
			rec.MatchedReference = refRec.Text
			rec.QuestionScore = 1
			matchedUnans[rec.Text] = true
			matchedRef[refRec.Text] = true
		}

		if target, ok := overrides[rec.Text]; ok {
			rec.MatchedReference = target
			rec.QuestionScore = 1
			matchedUnans[rec.Text] = true
			matchedRef[target] = true
		}
	}

	for _, key := range unans.Keys() {
		if !matchedUnans[key] {
			remainingUnans = append(remainingUnans, key)
		}
	}
	for _, key := range ref.Keys() {
		if !matchedRef[key] {
			remainingRef = append(remainingRef, key)
		}
	}

	zap.L().Info("matcher: exact pass complete",
		zap.Int("matched", unans.Len()-len(remainingUnans)),
		zap.Int("remaining_unanswered", len(remainingUnans)),
		zap.Int("remaining_reference", len(remainingRef)),
	)

	return remainingUnans, remainingRef
}

package answer

import (
	"github.com/mwestra/examtutor/internal/tokenize"
)

// #region disclaimers
const (
	softDisclaimer = "Note: this answer may go beyond your uploaded material — verify against your sources.\n\n"
	hardDisclaimer = "Caution: your uploaded material contains little on this topic, so this answer is largely general knowledge rather than grounded in your sources.\n\n"
)

// groundedScoreFloor separates a weak-but-present retrieval signal from an
// effectively empty one when an ungrounded answer is being degraded.
const groundedScoreFloor = 5

// #endregion disclaimers

// #region is-grounded
// IsGrounded reports whether the answer literally contains any query token.
// A bounded lexical heuristic, not semantic verification.
func IsGrounded(text string, queryTokens []string) bool {
	return tokenize.ContainsAny(text, queryTokens)
}

// #endregion is-grounded

// #region guard
// applyGroundingGuard degrades an ungrounded free-form answer: a weak
// disclaimer and one confidence tier down when retrieval had signal, a strong
// disclaimer and forced low confidence when it did not.
func applyGroundingGuard(fa *FreeformAnswer, queryTokens []string, aggregateScore float64) {
	fa.Grounded = IsGrounded(fa.Answer, queryTokens)
	if fa.Grounded {
		return
	}
	if aggregateScore >= groundedScoreFloor {
		fa.Answer = softDisclaimer + fa.Answer
		fa.Confidence = dropTier(fa.Confidence)
		return
	}
	fa.Answer = hardDisclaimer + fa.Answer
	fa.Confidence = ConfidenceLow
}

// #endregion guard

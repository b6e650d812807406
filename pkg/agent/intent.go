package agent

import "strings"

// PaymentIntent classifies an utterance while a payment offer is live.
type PaymentIntent int

const (
	IntentNone PaymentIntent = iota
	IntentConfirm
	IntentCancel
)

var (
	affirmatives = []string{
		"yes", "yep", "yeah", "confirm", "confirmed", "proceed",
		"go ahead", "do it", "sounds good", "sure", "absolutely",
		"pay it", "book it",
	}
	negatives = []string{
		"no", "nope", "cancel", "don't", "do not", "stop",
		"never mind", "nevermind", "not now", "forget it",
	}
)

// DetectPaymentIntent classifies one utterance as a confirmation, a
// cancellation, or unrelated conversation. Only consulted while an offer
// is proposed. A negative anywhere wins over an affirmative, so "no,
// don't pay" never confirms.
func DetectPaymentIntent(text string) PaymentIntent {
	normalized := normalize(text)
	if normalized == "" {
		return IntentNone
	}

	for _, phrase := range negatives {
		if containsPhrase(normalized, phrase) {
			return IntentCancel
		}
	}
	for _, phrase := range affirmatives {
		if containsPhrase(normalized, phrase) {
			return IntentConfirm
		}
	}
	return IntentNone
}

func normalize(text string) string {
	lower := strings.ToLower(strings.TrimSpace(text))
	var b strings.Builder
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ', r == '\'':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// containsPhrase reports whether phrase appears in text on word
// boundaries, so "no" does not match "nomad".
func containsPhrase(text, phrase string) bool {
	padded := " " + text + " "
	return strings.Contains(padded, " "+phrase+" ")
}

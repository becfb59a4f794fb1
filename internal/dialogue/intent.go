package dialogue

import "strings"

type Intent int

const (
	IntentNeither Intent = iota
	IntentYes
	IntentNo
)

func (i Intent) String() string {
	switch i {
	case IntentYes:
		return "yes"
	case IntentNo:
		return "no"
	default:
		return "neither"
	}
}

var confirmYesWords = []string{
	"yes", "yeah", "yep", "sure", "definitely", "absolutely", "of course",
	"sounds good", "perfect", "great", "let's do it", "interested",
	"proceed", "book", "okay", "ok", "sounds great", "let's go",
	"i'm in", "count me in", "sign me up", "go ahead", "affirmative",
}

var confirmNoWords = []string{
	"no", "nah", "nope", "not interested", "maybe later", "not sure",
	"let me think", "not now", "cancel", "not really", "i'll pass",
	"not yet", "hold on", "negative",
}

// ClassifyConfirmation decides whether an utterance accepts or declines
// the proposed booking. The affirmative set is checked first; an
// utterance carrying keywords from both sets counts as yes. Callers are
// responsible for only invoking this once destination and travelers are
// known and the trip is still unconfirmed.
func ClassifyConfirmation(utterance string) Intent {
	lower := strings.ToLower(utterance)
	if containsAny(lower, confirmYesWords) {
		return IntentYes
	}
	if containsAny(lower, confirmNoWords) {
		return IntentNo
	}
	return IntentNeither
}

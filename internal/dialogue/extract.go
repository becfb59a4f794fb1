package dialogue

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	log "log/slog"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// destination holds one canonical place name with the lexical variants
// that map to it. Table order matters: the first entry with any variant
// present in the utterance wins, so it is a slice rather than a map.
type destination struct {
	canonical string
	variants  []string
}

var destinations = []destination{
	{"paris", []string{"paris", "france", "eiffel", "french capital", "city of lights"}},
	{"london", []string{"london", "uk", "england", "britain", "big ben", "british"}},
	{"tokyo", []string{"tokyo", "japan", "japanese capital"}},
	{"new york", []string{"new york", "nyc", "manhattan", "ny city"}},
	{"dubai", []string{"dubai", "uae", "emirates", "burj"}},
	{"bali", []string{"bali", "indonesia", "balinese"}},
	{"maldives", []string{"maldives", "maldive", "male"}},
	{"switzerland", []string{"switzerland", "swiss", "zurich", "geneva"}},
	{"italy", []string{"italy", "italian", "rome", "venice", "florence", "milan"}},
	{"spain", []string{"spain", "spanish", "madrid", "barcelona"}},
	{"greece", []string{"greece", "greek", "athens", "santorini", "mykonos"}},
	{"thailand", []string{"thailand", "bangkok", "phuket", "thai"}},
	{"singapore", []string{"singapore", "singapura"}},
	{"australia", []string{"australia", "sydney", "melbourne", "aussie"}},
	{"india", []string{"india", "goa", "kerala", "rajasthan", "delhi", "mumbai", "jaipur"}},
	{"mexico", []string{"mexico", "cancun", "mexican"}},
	{"canada", []string{"canada", "toronto", "vancouver", "canadian"}},
	{"iceland", []string{"iceland", "reykjavik", "icelandic"}},
	{"norway", []string{"norway", "oslo", "norwegian"}},
	{"hawaii", []string{"hawaii", "honolulu", "maui", "hawaiian"}},
	{"turkey", []string{"turkey", "istanbul", "turkish"}},
	{"egypt", []string{"egypt", "cairo", "pyramids", "egyptian"}},
	{"vietnam", []string{"vietnam", "hanoi", "vietnamese"}},
	{"peru", []string{"peru", "machu picchu", "peruvian"}},
	{"portugal", []string{"portugal", "lisbon", "portuguese"}},
	{"amsterdam", []string{"amsterdam", "netherlands", "dutch"}},
	{"brazil", []string{"brazil", "rio", "brazilian"}},
	{"austria", []string{"austria", "vienna", "austrian"}},
	{"germany", []string{"germany", "berlin", "munich", "german"}},
	{"croatia", []string{"croatia", "dubrovnik", "croatian"}},
}

// Numeric traveler patterns, tried in order; the first match wins and
// the categorical fallback below is skipped entirely.
var travelerCountRes = []*regexp.Regexp{
	regexp.MustCompile(`\b(\d+)\s*(?:people|person|persons|travelers|travellers|pax|passenger|passengers)\b`),
	regexp.MustCompile(`\b(?:party of|group of|team of)\s*(\d+)\b`),
	regexp.MustCompile(`\b(\d+)\s*(?:adults?|kids?|children|members)\b`),
	regexp.MustCompile(`\b(?:we are|there are|will be)\s*(\d+)\b`),
}

// Categorical traveler groups. Priority: solo > couple > family > friends.
var (
	soloWords   = []string{"solo", "alone", "myself", "just me", "by myself", "single", "only me", "one person"}
	coupleWords = []string{"couple", "two of us", "my partner", "wife", "husband", "girlfriend", "boyfriend", "spouse", "fiance", "with my", "me and my"}
	familyWords = []string{"family", "kids", "children", "son", "daughter", "parents"}
	friendWords = []string{"friends", "buddies", "group", "gang", "crew"}
)

// Budget tiers. Priority is intentional: luxury before moderate before
// budget-friendly, so "affordable luxury" resolves to Luxury.
var (
	luxuryWords   = []string{"luxury", "premium", "high-end", "lavish", "expensive", "best", "five star", "5 star", "upscale", "deluxe", "first class", "splurge"}
	moderateWords = []string{"moderate", "reasonable", "average", "standard", "mid-range", "medium", "comfortable", "decent", "middle", "normal"}
	budgetWords   = []string{"budget", "cheap", "affordable", "economical", "low cost", "inexpensive", "frugal", "backpacker", "save money", "tight budget"}
)

// Extract fills any still-empty TripRequest fields it can recognize in
// the utterance. Fields that already hold a value are left alone. The
// input trip is not mutated; the updated copy is returned.
func Extract(utterance string, trip TripRequest) TripRequest {
	if utterance == "" {
		return trip
	}

	lower := strings.ToLower(utterance)

	if trip.Destination == "" {
		for _, d := range destinations {
			if containsAny(lower, d.variants) {
				// cases.Caser is not safe for concurrent use.
				trip.Destination = cases.Title(language.English).String(d.canonical)
				log.Debug("destination extracted", "destination", trip.Destination)
				break
			}
		}
	}

	if trip.Travelers == "" {
		for _, re := range travelerCountRes {
			m := re.FindStringSubmatch(lower)
			if m == nil {
				continue
			}
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			trip.Travelers = formatTravelerCount(n)
			log.Debug("travelers extracted", "travelers", trip.Travelers)
			break
		}
	}

	if trip.Travelers == "" {
		switch {
		case containsAny(lower, soloWords):
			trip.Travelers = "1 person (Solo)"
		case containsAny(lower, coupleWords):
			trip.Travelers = "2 people (Couple)"
		case containsAny(lower, familyWords):
			trip.Travelers = "Family group"
		case containsAny(lower, friendWords):
			trip.Travelers = "Friends group"
		}
		if trip.Travelers != "" {
			log.Debug("travelers extracted", "travelers", trip.Travelers)
		}
	}

	if trip.Budget == "" {
		switch {
		case containsAny(lower, luxuryWords):
			trip.Budget = BudgetLuxury
		case containsAny(lower, moderateWords):
			trip.Budget = BudgetModerate
		case containsAny(lower, budgetWords):
			trip.Budget = BudgetFriendly
		}
		if trip.Budget != "" {
			log.Debug("budget extracted", "budget", trip.Budget)
		}
	}

	return trip
}

func formatTravelerCount(n int) string {
	if n == 1 {
		return "1 person"
	}
	return fmt.Sprintf("%d people", n)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

package dialogue

import "testing"

func TestExtract_Destination(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain city", "I want to go to Tokyo", "Tokyo"},
		{"alias country", "somewhere in japan please", "Tokyo"},
		{"landmark alias", "show me the eiffel tower", "Paris"},
		{"multi word canonical", "flights to new york", "New York"},
		{"case insensitive", "PARIS sounds great", "Paris"},
		{"first table entry wins", "I want to visit Paris and also see the Eiffel Tower", "Paris"},
		{"no match", "somewhere warm", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.in, TripRequest{})
			if got.Destination != tt.want {
				t.Fatalf("Destination = %q, want %q", got.Destination, tt.want)
			}
		})
	}
}

func TestExtract_TravelersNumeric(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"people", "4 people are going", "4 people"},
		{"singular rendering", "1 person only", "1 person"},
		{"pax", "book for 6 pax", "6 people"},
		{"party of", "a party of 3", "3 people"},
		{"adults", "2 adults", "2 people"},
		{"we are", "we are 5", "5 people"},
		{"numeric beats categorical", "2 people traveling, just the couple of us", "2 people"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.in, TripRequest{})
			if got.Travelers != tt.want {
				t.Fatalf("Travelers = %q, want %q", got.Travelers, tt.want)
			}
		})
	}
}

func TestExtract_TravelersCategorical(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"solo", "just me", "1 person (Solo)"},
		{"couple", "going with my wife", "2 people (Couple)"},
		{"family", "taking the kids along", "Family group"},
		{"friends", "me and the crew", "Friends group"},
		{"solo beats couple", "traveling alone, no girlfriend this time", "1 person (Solo)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.in, TripRequest{})
			if got.Travelers != tt.want {
				t.Fatalf("Travelers = %q, want %q", got.Travelers, tt.want)
			}
		})
	}
}

func TestExtract_Budget(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Budget
	}{
		{"luxury", "five star all the way", BudgetLuxury},
		{"moderate", "something mid-range", BudgetModerate},
		{"friendly", "keep it cheap", BudgetFriendly},
		{"luxury outranks budget", "affordable luxury trip", BudgetLuxury},
		{"moderate outranks budget", "a decent affordable stay", BudgetModerate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.in, TripRequest{})
			if got.Budget != tt.want {
				t.Fatalf("Budget = %q, want %q", got.Budget, tt.want)
			}
		})
	}
}

func TestExtract_FirstWriteWins(t *testing.T) {
	trip := Extract("off to Bali with my partner, luxury style", TripRequest{})
	if trip.Destination != "Bali" || trip.Travelers != "2 people (Couple)" || trip.Budget != BudgetLuxury {
		t.Fatalf("setup extraction failed: %+v", trip)
	}

	after := Extract("actually Tokyo, party of 7, keep it cheap", trip)
	if after != trip {
		t.Fatalf("filled fields were rewritten: %+v != %+v", after, trip)
	}
}

func TestExtract_Idempotent(t *testing.T) {
	inputs := []string{
		"2 of us going to Paris",
		"family trip, moderate budget",
		"just me",
		"",
	}
	for _, in := range inputs {
		once := Extract(in, TripRequest{})
		twice := Extract(in, once)
		if once != twice {
			t.Fatalf("Extract(%q) not idempotent: %+v != %+v", in, once, twice)
		}
	}
}

func TestExtract_EmptyInputIsNoop(t *testing.T) {
	trip := TripRequest{Destination: "Rome"}
	if got := Extract("", trip); got != trip {
		t.Fatalf("empty utterance changed trip: %+v", got)
	}
}

func TestExtract_CrossTierFill(t *testing.T) {
	got := Extract("2 people going to Paris", TripRequest{})
	if got.Destination != "Paris" {
		t.Fatalf("Destination = %q, want Paris", got.Destination)
	}
	if got.Travelers != "2 people" {
		t.Fatalf("Travelers = %q, want 2 people", got.Travelers)
	}
}

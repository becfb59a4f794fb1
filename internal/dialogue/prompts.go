package dialogue

// Phrasing pools. Every reply template for a tier lives here as data;
// the engine picks one uniformly at random per turn. Interpolation
// slots are positional: %[1]s destination, %[2]s travelers, %[3]s budget.

var greetingPool = []string{
	"Hey! Welcome to our travel agency! I'm your AI travel buddy, and I'm super excited to help plan your next adventure! Let's chat about where you'd like to go!",
	"Hello there! Thanks for stopping by! I'm here to help you discover amazing destinations. Let's have a quick chat and find your perfect trip!",
	"Hi! Welcome! I'm your personal travel assistant, ready to help you plan something incredible! Let's talk about your dream vacation!",
}

var destinationPool = []string{
	"Where would you love to travel? Paris? Bali? Tokyo? Or somewhere else entirely?",
	"What's your dream destination? Beach paradise, mountain adventure, or city exploration?",
	"Tell me your ideal spot! European getaway, Asian adventure, or tropical escape?",
}

var travelersPool = []string{
	"%[1]s is beautiful! Who's joining you? Traveling solo, with someone, or as a group?",
	"Great pick! %[1]s is amazing! How many people are coming along?",
	"Love it! %[1]s is perfect! Is this a solo trip, couple's getaway, or family vacation?",
}

var budgetPool = []string{
	"Perfect! So %[2]s heading to %[1]s. What's your budget style? Luxury, moderate, or budget-friendly?",
	"Awesome! %[2]s in %[1]s sounds fun! Thinking premium experience or keeping it economical?",
	"Nice! %[2]s exploring %[1]s! High-end luxury or comfortable mid-range?",
}

var confirmPool = []string{
	"Perfect! Let me confirm: %[1]s, %[2]s, %[3]s style. Sound right? Ready to book?",
	"Great! So that's %[1]s for %[2]s with a %[3]s budget. All good? Should we proceed?",
	"Excellent! %[1]s, %[2]s, %[3]s experience. Does that work? Shall I connect you with our expert?",
}

var acceptPool = []string{
	"Amazing! I'm so excited for your %[1]s adventure! One of our travel experts will call you within 24 hours with a personalized package. Get ready for an unforgettable trip!",
	"Fantastic! Your %[1]s journey is going to be incredible! Expect a call from our specialist tomorrow with exclusive deals and insider tips. Thank you for choosing us!",
	"Wonderful! I can't wait for you to experience %[1]s! Our team will reach out within a day with your custom itinerary. Safe travels ahead!",
}

var declinePool = []string{
	"No problem at all! Take your time thinking it over. We're here whenever you're ready. Have a great day!",
	"That's totally fine! Travel is a big decision. Feel free to reach out anytime. Thanks for chatting!",
	"Completely understand! Come back whenever you'd like to explore options. Wishing you well!",
}

var followUpPool = []string{
	"Could you share more details?",
	"Tell me a bit more about that!",
	"Interesting! What else should I know?",
	"Got it! Anything else to add?",
}

var misheardPool = []string{
	"Sorry, didn't catch that. Could you repeat?",
	"I missed that. One more time please?",
	"Audio unclear. Try again?",
}

const misheardFirm = "Please speak louder and clearer. I'm listening!"

var silencePool = []string{
	"Are you there? Please speak!",
	"I'm listening. Go ahead!",
	"Ready when you are!",
}

const silenceFirm = "Still here! Speak clearly when ready!"

package faq

// Seed provides the built-in Disney parks FAQ in lookup order.
func Seed() []Entry {
	return []Entry{
		{
			Keyword: "tickets",
			Answer:  "Disney offers a variety of ticket options including single-day, multi-day, and Park Hopper tickets. Prices vary based on the season. Visit the official website for pricing and reservations.",
		},
		{
			Keyword: "park reservations",
			Answer:  "Park reservations are required in addition to tickets for entry. You can make a reservation through My Disney Experience. Make sure to check park availability before purchasing tickets.",
		},
		{
			Keyword: "best attractions",
			Answer:  "Top attractions include Space Mountain, Haunted Mansion, Star Wars: Rise of the Resistance, and Guardians of the Galaxy: Cosmic Rewind. Let me know your interests for a tailored recommendation!",
		},
		{
			Keyword: "dining reservations",
			Answer:  "Advanced Dining Reservations (ADRs) can be made up to 60 days in advance for most restaurants. Popular dining experiences like Cinderella's Royal Table and Be Our Guest require early booking.",
		},
		{
			Keyword: "genie+",
			Answer:  "Genie+ is a paid service that allows you to skip standby lines for certain attractions. It can be purchased through My Disney Experience and is available on a per-day basis. Lightning Lane access is limited, so book early in the day!",
		},
		{
			Keyword: "transportation",
			Answer:  "Disney offers complimentary transportation including buses, Monorail, Skyliner, and boats between parks and resorts. Ride-share services and parking options are also available.",
		},
		{
			Keyword: "accommodations",
			Answer:  "Disney Resorts range from Value to Deluxe categories, each offering unique themes and amenities. Deluxe resorts provide additional perks such as extended evening hours and closer proximity to the parks.",
		},
		{
			Keyword: "weather policy",
			Answer:  "Most attractions remain open during rain, but outdoor rides may temporarily close during storms. Ponchos and umbrellas are recommended for rainy days.",
		},
		{
			Keyword: "refund policy",
			Answer:  "Tickets are generally non-refundable but can be modified. Hotel cancellations depend on booking terms and how far in advance the cancellation is made.",
		},
		{
			Keyword: "special events",
			Answer:  "Disney hosts seasonal events such as Mickey's Not-So-Scary Halloween Party, EPCOT's Food & Wine Festival, and Very Merry Christmas Party. Special tickets may be required.",
		},
	}
}

// Topics lists what the assistant can help with, shown next to the chat.
func Topics() []string {
	return []string{
		"Ticket options and pricing",
		"Park reservations",
		"Popular attractions",
		"Dining reservations",
		"Genie+ and Lightning Lane",
		"Transportation options",
		"Resort accommodations",
		"Weather and refund policies",
		"Special events and seasonal offerings",
	}
}

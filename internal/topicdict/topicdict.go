// Package topicdict holds the static topic-to-keyword expansion table used
// by the filter pipeline's topic filter.
package topicdict

import "strings"

// Dictionary maps a topic key to the set of keywords (including the key
// itself) that count as a match. Lookups are case-insensitive.
var Dictionary = map[string][]string{
	"ai": {
		"ai", "artificial intelligence", "machine learning", "llm", "gpt",
		"chatgpt", "gemini", "claude", "neural network", "transformer",
		"deep learning", "generative ai",
	},
	"tech": {
		"tech", "technology", "software", "hardware", "startup", "silicon valley",
		"semiconductor", "cloud computing", "cybersecurity", "app", "gadget",
	},
	"crypto": {
		"crypto", "cryptocurrency", "bitcoin", "ethereum", "blockchain", "defi",
		"nft", "stablecoin", "web3", "token", "altcoin",
	},
	"startup": {
		"startup", "venture capital", "funding round", "seed funding", "series a",
		"series b", "unicorn", "founder", "accelerator", "incubator", "pitch deck",
	},
	"gaming": {
		"gaming", "video game", "esports", "playstation", "xbox", "nintendo",
		"steam", "game console", "multiplayer", "game studio", "speedrun",
	},
	"cricket": {
		"cricket", "ipl", "test match", "odi", "t20", "world cup", "wicket",
		"batsman", "bowler", "icc", "ashes",
	},
	"finance": {
		"finance", "stock market", "interest rate", "inflation", "earnings",
		"federal reserve", "bond yield", "ipo", "merger", "hedge fund", "equity",
	},
	"sports": {
		"sports", "football", "basketball", "soccer", "olympics", "tournament",
		"championship", "athlete", "league", "playoffs", "world cup",
	},
	"politics": {
		"politics", "election", "senate", "congress", "president", "parliament",
		"legislation", "campaign", "policy", "government", "vote",
	},
	"health": {
		"health", "healthcare", "vaccine", "clinical trial", "fda", "hospital",
		"disease", "pandemic", "mental health", "nutrition", "medicine",
	},
	"entertainment": {
		"entertainment", "movie", "box office", "celebrity", "streaming",
		"television", "music", "hollywood", "concert", "award show", "film",
	},
	"education": {
		"education", "university", "school", "curriculum", "student", "tuition",
		"scholarship", "classroom", "teacher", "degree", "enrollment",
	},
	"auto": {
		"auto", "automotive", "electric vehicle", "ev", "car", "suv", "sedan",
		"self-driving", "tesla", "horsepower", "recall",
	},
	"travel": {
		"travel", "airline", "flight", "tourism", "hotel", "vacation", "passport",
		"itinerary", "cruise", "layover", "destination",
	},
	"weather": {
		"weather", "forecast", "storm", "hurricane", "heatwave", "drought",
		"flood", "blizzard", "temperature", "climate", "tornado",
	},
	"realestate": {
		"realestate", "real estate", "mortgage", "housing market", "home price",
		"landlord", "property", "zoning", "listing", "foreclosure", "rent",
	},
	"jobs": {
		"jobs", "employment", "unemployment", "layoffs", "hiring", "job market",
		"salary", "workforce", "remote work", "resume", "labor",
	},
	"mobile": {
		"mobile", "smartphone", "iphone", "android", "ios", "app store",
		"mobile app", "5g", "tablet", "wearable", "battery life",
	},
	"laptop": {
		"laptop", "notebook", "macbook", "chromebook", "ultrabook", "processor",
		"ram", "ssd", "gpu", "battery", "display",
	},
}

// Lookup returns the keyword set for a topic key, lower-cased. If the key
// is unknown, the returned slice contains only the key itself: the topic
// filter degrades to a literal word-boundary match of the key.
func Lookup(topic string) []string {
	key := strings.ToLower(strings.TrimSpace(topic))
	if kws, ok := Dictionary[key]; ok {
		return kws
	}
	return []string{key}
}

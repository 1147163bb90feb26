package moderation

// DefaultLexicon is the fallback dictionary used when no lexicon file is
// configured. Deployments are expected to ship a curated list; this one only
// keeps local development honest.
func DefaultLexicon() []string {
	return []string{
		"idiot",
		"moron",
		"stupid",
		"loser",
		"pathetic",
		"shut up",
		"worthless",
		"garbage human",
	}
}

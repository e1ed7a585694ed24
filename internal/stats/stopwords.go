package stats

// stopWords are dropped from CommonWords. English plus the romanized Hindi
// fillers common in mixed-language chats.
var stopWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"a", "about", "after", "again", "all", "am", "an", "and", "any", "are", "as", "at",
		"be", "because", "been", "before", "being", "but", "by", "can", "could", "did", "do",
		"does", "doing", "don't", "for", "from", "had", "has", "have", "having", "he", "her",
		"here", "hers", "him", "his", "how", "i", "i'm", "if", "in", "into", "is", "it", "it's",
		"its", "just", "me", "more", "my", "no", "not", "now", "of", "ok", "okay", "on", "one",
		"or", "our", "out", "so", "some", "than", "that", "the", "their", "them", "then",
		"there", "these", "they", "this", "to", "too", "up", "us", "very", "was", "we", "were",
		"what", "when", "where", "which", "who", "why", "will", "with", "would", "you",
		"you're", "your", "yes", "yeah",
		"hai", "hain", "ho", "ka", "ki", "ke", "ko", "kya", "na", "nahi", "se", "toh", "bhi",
		"mein", "main", "tha", "thi", "aur", "ye", "wo", "haan",
		"deleted", "message", "omitted",
	} {
		stopWords[w] = struct{}{}
	}
}

func isStopWord(w string) bool {
	_, ok := stopWords[w]
	return ok
}

// Package analytics derives text metrics from extracted page content.
// Every function is deterministic and free of hidden state; the fixed
// tables (stop words, language word lists, social domains) are carried on
// a Config so tests and future tuning can swap them without touching the
// control flow.
package analytics

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/Haggai-dev665/web-scrapper/backend/internal/model"
)

// LanguageProfile is a small marker-word list for one language. Profiles
// are evaluated in slice order; earlier entries win ties.
type LanguageProfile struct {
	Name  string
	Words []string
}

// Config holds the tunable tables behind the analytics heuristics.
type Config struct {
	StopWords      []string
	TopWords       int
	WordsPerMinute float64
	SocialDomains  []string
	Languages      []LanguageProfile
}

// DefaultConfig returns the stock tables.
func DefaultConfig() Config {
	return Config{
		StopWords: []string{
			"the", "be", "to", "of", "and", "a", "in", "that", "have", "i",
			"it", "for", "not", "on", "with", "he", "as", "you", "do", "at",
		},
		TopWords:       50,
		WordsPerMinute: 200,
		SocialDomains: []string{
			"facebook.com", "twitter.com", "x.com", "instagram.com", "linkedin.com",
			"youtube.com", "tiktok.com", "pinterest.com", "snapchat.com", "reddit.com",
		},
		Languages: []LanguageProfile{
			{Name: "English", Words: []string{"the", "and", "for", "are", "but", "not", "you", "all", "can", "had"}},
			{Name: "Spanish", Words: []string{"el", "la", "de", "que", "y", "en", "un", "es", "se", "no"}},
			{Name: "French", Words: []string{"le", "de", "et", "à", "un", "il", "être", "en", "avoir", "que"}},
		},
	}
}

// wordToken matches lowercase word runs of length >= 3.
var wordToken = regexp.MustCompile(`\b[a-z]{3,}\b`)

// Analyzer evaluates the analytics heuristics against extracted content.
type Analyzer struct {
	cfg      Config
	stopSet  map[string]struct{}
	sentence *regexp.Regexp
}

// New returns an Analyzer using the given tables.
func New(cfg Config) *Analyzer {
	stopSet := make(map[string]struct{}, len(cfg.StopWords))
	for _, w := range cfg.StopWords {
		stopSet[w] = struct{}{}
	}
	return &Analyzer{
		cfg:      cfg,
		stopSet:  stopSet,
		sentence: regexp.MustCompile(`[.!?]+`),
	}
}

// WordCount is one word-frequency entry.
type WordCount struct {
	Word  string
	Count int
}

// WordFrequency tokenizes the lowercased text, drops stop words, and returns
// the top entries by descending count. The sort is stable, so equal counts
// keep first-encountered order.
func (a *Analyzer) WordFrequency(text string) []WordCount {
	counts := make(map[string]int)
	var order []string

	for _, w := range wordToken.FindAllString(strings.ToLower(text), -1) {
		if _, stop := a.stopSet[w]; stop {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	entries := make([]WordCount, 0, len(order))
	for _, w := range order {
		entries = append(entries, WordCount{Word: w, Count: counts[w]})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})

	if len(entries) > a.cfg.TopWords {
		entries = entries[:a.cfg.TopWords]
	}
	return entries
}

// ReadabilityScore applies the Flesch Reading Ease formula, clamped to
// [0, 100]. Text with zero words or zero sentences scores 0.
func (a *Analyzer) ReadabilityScore(text string) float64 {
	if text == "" {
		return 0
	}

	var sentences int
	for _, s := range a.sentence.Split(text, -1) {
		if strings.TrimSpace(s) != "" {
			sentences++
		}
	}

	words := strings.Fields(text)
	if sentences == 0 || len(words) == 0 {
		return 0
	}

	var syllables int
	for _, w := range words {
		syllables += countSyllables(w)
	}

	score := 206.835 -
		1.015*(float64(len(words))/float64(sentences)) -
		84.6*(float64(syllables)/float64(len(words)))

	return min(100, max(0, score))
}

// countSyllables estimates syllables by counting vowel characters, with a
// silent trailing-e adjustment and a floor of 1 per word.
func countSyllables(word string) int {
	word = strings.ToLower(word)

	var count int
	for _, r := range word {
		switch r {
		case 'a', 'e', 'i', 'o', 'u', 'y':
			count++
		}
	}

	if strings.HasSuffix(word, "e") && count > 1 {
		count--
	}

	return max(1, count)
}

// DetectLanguage counts marker-word hits per configured language and picks
// the highest, resolving ties in profile order. No hits at all returns
// "Unknown". This is a coarse best-effort signal, not a real classifier.
func (a *Analyzer) DetectLanguage(text string) string {
	lower := strings.ToLower(text)

	best := "Unknown"
	bestHits := 0
	for _, lang := range a.cfg.Languages {
		var hits int
		for _, w := range lang.Words {
			if strings.Contains(lower, w) {
				hits++
			}
		}
		// strict > keeps the earlier profile on ties
		if hits > bestHits {
			best = lang.Name
			bestHits = hits
		}
	}

	return best
}

// SocialLinks returns the subset of links whose host belongs to a known
// social platform.
func (a *Analyzer) SocialLinks(links []model.Link) []model.Link {
	var social []model.Link
	for _, link := range links {
		if a.isSocialHost(link.Href) {
			social = append(social, link)
		}
	}
	return social
}

func (a *Analyzer) isSocialHost(href string) bool {
	u, err := url.Parse(href)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, domain := range a.cfg.SocialDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// CountWords returns the whitespace-delimited word count.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// ReadingTime returns minutes needed at the configured pace. No rounding is
// applied at this layer.
func (a *Analyzer) ReadingTime(wordCount int) float64 {
	return float64(wordCount) / a.cfg.WordsPerMinute
}

// Package analytics finds the words that characterize a chapter, such as
// recurring names and places.
package analytics

import (
	"strings"
	"unicode"

	"github.com/dtnitsch/chapterclip/pkg/mapreduce"
)

// minWordRunes drops one and two letter tokens.
const minWordRunes = 3

// stopwordList holds function words plus the dialogue and narration verbs
// that dominate fiction without saying anything about a chapter.
const stopwordList = `
a about above across after afterwards again against all almost alone along already also although
always am among amongst an and another any anyhow anyone anything anyway anywhere are aren't around
as at back be became because become becomes becoming been before beforehand behind being below
beside besides between beyond both but by can can't cannot could couldn't did didn't do does doesn't
doing don't done down during each either else elsewhere enough even ever every everyone everything
everywhere few for former formerly from further had hadn't has hasn't have haven't having he he'd
he'll he's hence her here hereafter hereby herein here's hers herself him himself his how however
i i'd i'll i'm i've if in indeed into is isn't it it's its itself just keep last latter least less
let let's like likely made make many may maybe me meanwhile might mine more moreover most mostly much
must mustn't my myself neither never nevertheless next no nobody none noone nor not nothing now
nowhere of off often on once one only onto or other others otherwise our ours ourselves out over own
perhaps please put rather same see seem seemed seeming seems several she she'd she'll she's should
shouldn't since so some somehow someone something sometime sometimes somewhere still such take than
that that's the their theirs them themselves then there thereafter therefore there's these they
they'd they'll they're they've this those through throughout thus to together too toward towards
under until up upon us very was wasn't we we'd we'll we're we've well were weren't what whatever
what's when whenever where whereas where's wherever whether which while who who'd whoever who'll
who's whom whose why will with within without won't would wouldn't yet you you'd you'll you're
you've your yours yourself yourselves ain't it'll shan't that'll
said says say asked replied answered told looked look looks turned went came come comes got get
gets know knew think thought want wanted felt feel seemed going goes took right left way time
yes oh mr mrs miss sir chapter
`

var stopwords = func() map[string]struct{} {
	m := make(map[string]struct{})
	for _, w := range strings.Fields(stopwordList) {
		m[w] = struct{}{}
	}
	return m
}()

// IsStopword checks if a word is a common word that should be filtered out.
func IsStopword(word string) bool {
	_, ok := stopwords[strings.ToLower(word)]
	return ok
}

// WordFrequency counts the non-stopword words of text, case-folded.
// Letters of any script count, so names in accented or non-Latin text
// survive.
func WordFrequency(text string) map[string]int {
	frequencies := make(map[string]int)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		// Curly apostrophes are folded so "don’t" hits the stopword list.
		word = strings.ReplaceAll(word, "’", "'")
		if len([]rune(word)) < minWordRunes || IsStopword(word) || isNumber(word) {
			continue
		}
		frequencies[word]++
	}
	return frequencies
}

// TopWords returns the n most frequent words of text, ties broken
// alphabetically.
func TopWords(text string, n int) []string {
	return mapreduce.TopKeys(WordFrequency(text), n)
}

func isNumber(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

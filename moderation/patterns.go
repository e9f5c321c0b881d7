package moderation

import (
	"regexp"

	"chatsphere/domain"
)

// matcher is one entry of a pattern table. find returns the matched
// fragment used as the violation's detected text.
type matcher interface {
	find(text string) (string, bool)
}

type regexMatcher struct {
	re *regexp.Regexp
}

func (m regexMatcher) find(text string) (string, bool) {
	s := m.re.FindString(text)
	return s, s != ""
}

// repeatRunMatcher flags a run of identical runes of at least the given
// length. The original rule was a regex backreference, which Go's RE2
// engine does not support.
type repeatRunMatcher struct {
	run int
}

func (m repeatRunMatcher) find(text string) (string, bool) {
	runes := []rune(text)
	start, count := 0, 0
	for i := range runes {
		if i > 0 && runes[i] == runes[i-1] {
			count++
		} else {
			start, count = i, 1
		}
		if count >= m.run {
			return string(runes[start : i+1]), true
		}
	}
	return "", false
}

func rx(expr string) matcher {
	return regexMatcher{re: regexp.MustCompile(expr)}
}

// whitelistPatterns is the benign-expression table. A match here
// short-circuits classification entirely: ordinary profanity used as an
// exclamation, story or game narration, and reported-speech framings are
// never violations. Entries are matched against lowercased text.
var whitelistPatterns = []matcher{
	rx(`\b(fuck this|fucking|damn it|hell yeah|shit happens)\b`),
	rx(`\b(oh my god|what the hell|holy shit)\b`),
	rx(`\b(this is stupid|that's ugly|what an idiot)\b`),
	rx(`\b(kill me|i'm dying|this is hell)\b`),
	rx(`\b(damn good|hell of a|shit ton)\b`),
	rx(`\b(fucking awesome|damn right|hell no)\b`),
	rx(`\b(fuck off|fuck you|fuck that)\b`),
	rx(`\b(shit|damn|hell)\b`),

	rx(`\b(he killed|she killed|they killed|someone killed)\b`),
	rx(`\b(he died|she died|they died|someone died)\b`),
	rx(`\b(he said shit|she said shit|they said shit)\b`),
	rx(`\b(he called|she called|they called)\s+(him|her|them)\s+(stupid|idiot|moron)\b`),

	rx(`\b(kill the boss|kill enemies|kill monsters)\b`),
	rx(`\b(die in game|died in battle|killed by)\b`),
	rx(`\b(fuck this game|damn game|shit game)\b`),

	rx(`\b(in the movie|in the book|in the story)\b`),
	rx(`\b(the character|the protagonist|the villain)\b`),
	rx(`\b(he was killed|she was killed|they were killed)\b`),

	rx(`\b(in the news|on the news|news said)\b`),
	rx(`\b(according to|it was reported|they reported)\b`),
	rx(`\b(the incident|the accident|the event)\b`),
}

// storyPatterns detect third-person, hypothetical or reported framing.
// A story match downgrades severity by one step.
var storyPatterns = []matcher{
	rx(`\b(once upon a time|in the story|in the movie|in the book)\b`),
	rx(`\b(the character|the protagonist|the villain|the hero)\b`),
	rx(`\b(he said|she said|they said|someone said)\b`),
	rx(`\b(he did|she did|they did|someone did)\b`),
	rx(`\b(he was|she was|they were|someone was)\b`),
	rx(`\b(in the game)\b`),
	rx(`\b(according to|it was reported|they reported)\b`),
	rx(`\b(the news|the incident|the accident|the event)\b`),
	rx(`\b(imagine|suppose|what if|let's say)\b`),
	rx(`\b(if someone|if he|if she|if they)\b`),
}

// directAddressPatterns detect aggression aimed at the reader. Harassment
// violations require one of these to fire; a low keyword severity is
// bumped to medium when one does.
var directAddressPatterns = []matcher{
	rx(`\b(you are|you're|you look|you sound)\s+(stupid|ugly|fat|idiot|loser)\b`),
	rx(`\b(go kill yourself|you should die|i hate you)\b`),
	rx(`\b(shut up|shut the fuck up|fuck off)\b`),
}

// category is one violation category with its ordered pattern table.
// The first matching pattern supplies the detected text; one message
// yields at most one violation per category.
type category struct {
	violationType domain.ViolationType
	patterns      []matcher
}

// categories are evaluated in a fixed order so classification output is
// deterministic for a given input.
var categories = []category{
	{
		violationType: domain.ViolationSpam,
		patterns: []matcher{
			rx(`\b(buy now|click here|free money|make money|earn cash|get rich quick)\b`),
			rx(`\b(viagra|casino|poker|lottery|investment opportunity)\b`),
			repeatRunMatcher{run: 7},
			rx(`https?://\S+`),
			rx(`\b(follow me|subscribe|like and share|promotion|sale|discount)\b`),
		},
	},
	{
		violationType: domain.ViolationHateSpeech,
		patterns: []matcher{
			rx(`\b(kill yourself|die in hell|you should die|go die)\b`),
			rx(`\b(racist|sexist|homophobic|transphobic)\b`),
			rx(`\b(nazi|hitler|white supremacy)\b`),
			rx(`\b(terrorist|bomb|attack|murder)\b`),
		},
	},
	{
		violationType: domain.ViolationHarassment,
		patterns: append([]matcher{
			rx(`\b(stalk you|threaten you|bully you|harass you)\b`),
			rx(`\b(i will hurt you|i will kill you|i will find you)\b`),
			rx(`\b(ugly bitch|fat pig|stupid whore|pathetic loser)\b`),
			repeatRunMatcher{run: 6},
		}, directAddressPatterns...),
	},
	{
		violationType: domain.ViolationInappropriate,
		patterns: []matcher{
			rx(`\b(porn|pornography|nude photos|sex videos)\b`),
			rx(`\b(drug dealing|buy drugs|sell drugs)\b`),
			rx(`\b(violence against|physical harm|beat you up)\b`),
		},
	},
	{
		violationType: domain.ViolationAdvertising,
		patterns: []matcher{
			rx(`\b(promotion code|discount code|limited offer|act now)\b`),
			rx(`\b(follow my instagram|subscribe to my channel|check my website)\b`),
			rx(`\b(contact me for business|dm for details|business inquiry)\b`),
		},
	},
	{
		violationType: domain.ViolationScam,
		patterns: []matcher{
			rx(`\b(free money|get rich|crypto investment|bitcoin)\b`),
			rx(`\b(password reset|account verification|login required)\b`),
			rx(`\b(urgent action|limited time|act immediately)\b`),
			rx(`\b(wire transfer|send money|payment required)\b`),
		},
	},
}

func matchAny(table []matcher, text string) bool {
	for _, m := range table {
		if _, ok := m.find(text); ok {
			return true
		}
	}
	return false
}

func findFirst(table []matcher, text string) (string, bool) {
	for _, m := range table {
		if s, ok := m.find(text); ok {
			return s, true
		}
	}
	return "", false
}

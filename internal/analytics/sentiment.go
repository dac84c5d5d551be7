// ABOUTME: Lexicon-based sentiment scoring for individual messages
// ABOUTME: Produces polarity in [-1, 1] and subjectivity in [0, 1]

package analytics

// valence maps sentiment-bearing words to a polarity in [-1, 1]. The
// lexicon is small and English-leaning; unknown words score neutral.
var valence = map[string]float64{
	"amazing": 0.8, "awesome": 0.8, "beautiful": 0.7, "best": 0.9,
	"better": 0.4, "brilliant": 0.8, "calm": 0.3, "celebrate": 0.6,
	"clever": 0.5, "comfort": 0.4, "compelling": 0.5, "confident": 0.4,
	"curious": 0.3, "delight": 0.7, "delightful": 0.7, "eager": 0.4,
	"easy": 0.3, "elegant": 0.5, "enjoy": 0.6, "enjoyable": 0.6,
	"excellent": 0.8, "excited": 0.6, "exciting": 0.6, "fantastic": 0.8,
	"fascinating": 0.6, "fun": 0.5, "glad": 0.5, "good": 0.5,
	"grateful": 0.6, "great": 0.7, "happy": 0.7, "helpful": 0.5,
	"hope": 0.4, "hopeful": 0.5, "impressive": 0.6, "inspiring": 0.6,
	"interesting": 0.4, "joy": 0.7, "kind": 0.4, "like": 0.3,
	"love": 0.8, "lovely": 0.7, "marvelous": 0.8, "nice": 0.4,
	"optimistic": 0.5, "perfect": 0.9, "pleasant": 0.5, "pleased": 0.5,
	"positive": 0.4, "promising": 0.4, "remarkable": 0.6, "rich": 0.3,
	"smart": 0.4, "strong": 0.3, "succeed": 0.5, "success": 0.5,
	"thank": 0.4, "thoughtful": 0.4, "thrilled": 0.7, "useful": 0.4,
	"valuable": 0.4, "welcome": 0.3, "wonderful": 0.8, "wise": 0.4,

	"afraid": -0.5, "angry": -0.6, "annoying": -0.5, "anxious": -0.4,
	"awful": -0.8, "bad": -0.5, "boring": -0.4, "broken": -0.4,
	"concern": -0.3, "concerned": -0.3, "confusing": -0.3, "cruel": -0.7,
	"danger": -0.5, "dangerous": -0.5, "difficult": -0.3, "disappointing": -0.6,
	"disaster": -0.8, "doubt": -0.3, "dreadful": -0.7, "fail": -0.5,
	"failure": -0.6, "fear": -0.5, "frustrating": -0.5, "hard": -0.2,
	"harm": -0.5, "harmful": -0.5, "hate": -0.8, "horrible": -0.8,
	"hurt": -0.5, "impossible": -0.4, "lonely": -0.5, "lose": -0.4,
	"loss": -0.4, "mistake": -0.4, "negative": -0.4, "painful": -0.6,
	"poor": -0.4, "problem": -0.3, "sad": -0.6, "scared": -0.5,
	"terrible": -0.8, "tragic": -0.7, "trouble": -0.4, "ugly": -0.5,
	"unfortunate": -0.4, "unhappy": -0.6, "upset": -0.5, "weak": -0.3,
	"worried": -0.4, "worry": -0.4, "worse": -0.5, "worst": -0.9,
	"wrong": -0.4,
}

// negators flip the polarity of the word that follows them.
var negators = map[string]bool{
	"not": true, "no": true, "never": true, "neither": true,
	"nor": true, "cannot": true, "cant": true, "dont": true,
	"doesnt": true, "didnt": true, "isnt": true, "wasnt": true,
	"wont": true, "wouldnt": true, "shouldnt": true, "couldnt": true,
	"hardly": true, "barely": true,
}

// intensifiers scale the polarity of the word that follows them.
var intensifiers = map[string]float64{
	"very": 1.3, "really": 1.3, "extremely": 1.5, "incredibly": 1.5,
	"so": 1.2, "quite": 1.1, "truly": 1.3, "deeply": 1.3,
	"slightly": 0.7, "somewhat": 0.8, "rather": 0.9, "fairly": 0.9,
}

// scoreSentiment averages the polarities of sentiment-bearing words,
// honoring a single preceding negator or intensifier. Subjectivity is
// the fraction of words that carry any sentiment at all.
func scoreSentiment(text string) (polarity, subjectivity float64) {
	words := tokenize(text)
	if len(words) == 0 {
		return 0, 0
	}

	var total float64
	var hits int
	for i, w := range words {
		score, ok := valence[w]
		if !ok {
			continue
		}
		if i > 0 {
			switch prev := words[i-1]; {
			case negators[prev]:
				score = -score * 0.8
			case intensifiers[prev] != 0:
				score *= intensifiers[prev]
			}
		}
		total += clamp(score, -1, 1)
		hits++
	}
	if hits == 0 {
		return 0, 0
	}
	return clamp(total/float64(hits), -1, 1), clamp(float64(hits)/float64(len(words))*4, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ABOUTME: English stopword set used when extracting topic keywords

package analytics

var stopwords = map[string]bool{
	"a": true, "about": true, "above": true, "after": true, "again": true,
	"against": true, "all": true, "also": true, "am": true, "an": true,
	"and": true, "any": true, "are": true, "arent": true, "as": true,
	"at": true, "back": true, "be": true, "because": true, "been": true,
	"before": true, "being": true, "below": true, "between": true,
	"both": true, "but": true, "by": true, "can": true, "cannot": true,
	"cant": true, "could": true, "couldnt": true, "did": true,
	"didnt": true, "do": true, "does": true, "doesnt": true, "doing": true,
	"dont": true, "down": true, "during": true, "each": true, "even": true,
	"few": true, "for": true, "from": true, "further": true, "get": true,
	"got": true, "had": true, "hadnt": true, "has": true, "hasnt": true,
	"have": true, "havent": true, "having": true, "he": true, "hed": true,
	"hell": true, "her": true, "here": true, "heres": true, "hers": true,
	"herself": true, "hes": true, "him": true, "himself": true, "his": true,
	"how": true, "hows": true, "i": true, "id": true, "if": true,
	"ill": true, "im": true, "in": true, "into": true, "is": true,
	"isnt": true, "it": true, "its": true, "itself": true, "ive": true,
	"just": true, "know": true, "let": true, "lets": true, "like": true,
	"make": true, "many": true, "may": true, "me": true, "might": true,
	"more": true, "most": true, "much": true, "must": true, "my": true,
	"myself": true, "no": true, "nor": true, "not": true, "now": true,
	"of": true, "off": true, "on": true, "once": true, "one": true,
	"only": true, "or": true, "other": true, "ought": true, "our": true,
	"ours": true, "ourselves": true, "out": true, "over": true, "own": true,
	"really": true, "same": true, "say": true, "see": true, "shant": true,
	"she": true, "shed": true, "shell": true, "shes": true, "should": true,
	"shouldnt": true, "so": true, "some": true, "such": true, "than": true,
	"that": true, "thats": true, "the": true, "their": true, "theirs": true,
	"them": true, "themselves": true, "then": true, "there": true,
	"theres": true, "these": true, "they": true, "theyd": true,
	"theyll": true, "theyre": true, "theyve": true, "think": true,
	"this": true, "those": true, "through": true, "to": true, "too": true,
	"under": true, "until": true, "up": true, "upon": true, "us": true,
	"very": true, "was": true, "wasnt": true, "way": true, "we": true,
	"wed": true, "well": true, "were": true, "werent": true, "weve": true,
	"what": true, "whats": true, "when": true, "whens": true, "where": true,
	"wheres": true, "which": true, "while": true, "who": true, "whom": true,
	"whos": true, "why": true, "whys": true, "will": true, "with": true,
	"wont": true, "would": true, "wouldnt": true, "yes": true, "yet": true,
	"you": true, "youd": true, "youll": true, "your": true, "youre": true,
	"yours": true, "yourself": true, "yourselves": true, "youve": true,
}

package extract

import (
	"strings"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/token/stop"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
)

// Normalizer produces the model-facing form of a document: lowercased
// tokens with language stopwords removed. The raw text is kept separately
// for display; embedding models work better on the cleaned form.
type Normalizer struct {
	tokenizer  analysis.Tokenizer
	lowercase  analysis.TokenFilter
	stopFilter analysis.TokenFilter
}

// NewNormalizer builds a normalizer for the given language. Only "en" has a
// stopword list; other languages get tokenization and lowercasing only.
func NewNormalizer(language string) (*Normalizer, error) {
	n := &Normalizer{
		tokenizer: unicode.NewUnicodeTokenizer(),
		lowercase: lowercase.NewLowerCaseFilter(),
	}
	if strings.ToLower(strings.TrimSpace(language)) == "en" {
		tokenMap := analysis.NewTokenMap()
		if err := tokenMap.LoadBytes(en.EnglishStopWords); err != nil {
			return nil, err
		}
		n.stopFilter = stop.NewStopTokensFilter(tokenMap)
	}
	return n, nil
}

func (n *Normalizer) Normalize(text string) string {
	tokens := n.tokenizer.Tokenize([]byte(text))
	tokens = n.lowercase.Filter(tokens)
	if n.stopFilter != nil {
		tokens = n.stopFilter.Filter(tokens)
	}
	terms := make([]string, 0, len(tokens))
	for _, token := range tokens {
		terms = append(terms, string(token.Term))
	}
	return strings.Join(terms, " ")
}

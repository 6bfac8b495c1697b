// Package vectorize fits a TF-IDF model over a corpus of job postings and
// embeds arbitrary text into the same vector space.
package vectorize

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math"
	"sort"

	"github.com/gcbaptista/go-skillmatch/internal/tokenizer"
	"github.com/gcbaptista/go-skillmatch/model"
)

// Options controls tokenization during fit and embed.
type Options struct {
	// ExtraStopWords are removed in addition to the English stop-word list.
	ExtraStopWords []string
}

// Model is a fitted TF-IDF vocabulary plus one L2-normalized vector per
// corpus document. It is read-only after Fit and safe for concurrent use.
type Model struct {
	fingerprint    string
	terms          []string // sorted; position is the column index
	columns        map[string]int
	idf            []float64
	docVectors     []Vector
	extraStopWords []string
	stopWords      tokenizer.StopWords
}

// Fit builds a model over the searchable text of every posting in corpus.
// Fit is a pure function of the corpus content and options.
func Fit(corpus *model.Corpus, opts Options) *Model {
	stopWords := tokenizer.EnglishStopWords().With(opts.ExtraStopWords...)

	n := corpus.Len()
	docCounts := make([]map[string]int, n)
	docFreq := make(map[string]int)
	for i := 0; i < n; i++ {
		counts := tokenizer.TermCounts(corpus.At(i).SearchableText(), stopWords)
		docCounts[i] = counts
		for term := range counts {
			docFreq[term]++
		}
	}

	terms := make([]string, 0, len(docFreq))
	for term := range docFreq {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	columns := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	for col, term := range terms {
		columns[term] = col
		idf[col] = smoothIDF(n, docFreq[term])
	}

	m := &Model{
		fingerprint:    corpus.Fingerprint(),
		terms:          terms,
		columns:        columns,
		idf:            idf,
		extraStopWords: append([]string(nil), opts.ExtraStopWords...),
		stopWords:      stopWords,
	}

	m.docVectors = make([]Vector, n)
	for i, counts := range docCounts {
		m.docVectors[i] = m.weigh(counts)
	}
	return m
}

// smoothIDF is ln((1+n)/(1+df)) + 1; it never reaches zero, so a term present
// in every document still contributes.
func smoothIDF(totalDocs, docFreq int) float64 {
	return math.Log(float64(1+totalDocs)/float64(1+docFreq)) + 1
}

// weigh turns term counts into a normalized TF-IDF vector, dropping terms
// outside the vocabulary.
func (m *Model) weigh(counts map[string]int) Vector {
	v := Vector{
		Indices: make([]int, 0, len(counts)),
		Values:  make([]float64, 0, len(counts)),
	}

	cols := make([]int, 0, len(counts))
	for term := range counts {
		if col, ok := m.columns[term]; ok {
			cols = append(cols, col)
		}
	}
	sort.Ints(cols)

	for _, col := range cols {
		v.Indices = append(v.Indices, col)
		v.Values = append(v.Values, float64(counts[m.terms[col]])*m.idf[col])
	}
	v.normalize()
	return v
}

// Embed maps text into the model's vector space. Out-of-vocabulary terms are
// dropped; text with no in-vocabulary terms yields the zero vector.
func (m *Model) Embed(text string) Vector {
	return m.weigh(tokenizer.TermCounts(text, m.stopWords))
}

// Fingerprint identifies the corpus content the model was fit on.
func (m *Model) Fingerprint() string {
	return m.fingerprint
}

// VocabularySize returns the number of terms in the vocabulary.
func (m *Model) VocabularySize() int {
	return len(m.terms)
}

// Vocabulary returns the sorted vocabulary.
func (m *Model) Vocabulary() []string {
	return append([]string(nil), m.terms...)
}

// IDF returns the inverse document frequency of term and whether it is in the vocabulary.
func (m *Model) IDF(term string) (float64, bool) {
	col, ok := m.columns[term]
	if !ok {
		return 0, false
	}
	return m.idf[col], true
}

// ExtraStopWords returns the extra stop words the model was fit with.
func (m *Model) ExtraStopWords() []string {
	return append([]string(nil), m.extraStopWords...)
}

// NumDocuments returns the number of document vectors.
func (m *Model) NumDocuments() int {
	return len(m.docVectors)
}

// DocumentVector returns the stored vector of the document at corpus position i.
func (m *Model) DocumentVector(i int) Vector {
	return m.docVectors[i]
}

// gobModelData is a helper struct for Gob encoding/decoding Model data.
// The column map and stop words are rebuilt on decode.
type gobModelData struct {
	Fingerprint    string
	Terms          []string
	IDF            []float64
	DocVectors     []Vector
	ExtraStopWords []string
}

// GobEncode implements the gob.GobEncoder interface for Model.
func (m *Model) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	encoder := gob.NewEncoder(&buf)
	if err := encoder.Encode(gobModelData{
		Fingerprint:    m.fingerprint,
		Terms:          m.terms,
		IDF:            m.idf,
		DocVectors:     m.docVectors,
		ExtraStopWords: m.extraStopWords,
	}); err != nil {
		return nil, fmt.Errorf("failed to gob encode model: %w", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface for Model.
func (m *Model) GobDecode(data []byte) error {
	var decoded gobModelData
	if err := gob.NewDecoder(bytes.NewBuffer(data)).Decode(&decoded); err != nil {
		return fmt.Errorf("failed to gob decode model: %w", err)
	}
	if len(decoded.Terms) != len(decoded.IDF) {
		return fmt.Errorf("corrupt model: %d terms but %d idf weights", len(decoded.Terms), len(decoded.IDF))
	}

	m.fingerprint = decoded.Fingerprint
	m.terms = decoded.Terms
	m.idf = decoded.IDF
	m.docVectors = decoded.DocVectors
	m.extraStopWords = decoded.ExtraStopWords
	m.stopWords = tokenizer.EnglishStopWords().With(decoded.ExtraStopWords...)
	m.columns = make(map[string]int, len(m.terms))
	for col, term := range m.terms {
		m.columns[term] = col
	}
	// gob drops empty slices; keep zero vectors non-nil for callers
	for i := range m.docVectors {
		if m.docVectors[i].Indices == nil {
			m.docVectors[i] = Vector{Indices: []int{}, Values: []float64{}}
		}
	}
	return nil
}

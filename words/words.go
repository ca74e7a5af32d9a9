// Package words provides the pool of word challenges a room samples from.
//
// The pool is read from the file named by WORDS_FILE when it is set, otherwise
// the embedded words-data.json is used.
package words

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"
)

//go:embed words-data.json
var embeddedWords []byte

// Definition is one candidate meaning shown on a card.
type Definition struct {
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// Word is a single challenge: a word and its candidate definitions.
type Word struct {
	Word        string       `json:"word"`
	Definitions []Definition `json:"definitions"`
}

// Pool is an immutable list of challenges. It is safe for concurrent use.
type Pool struct {
	words []Word
}

var ErrEmptyPool = errors.New("words: pool is empty")

// NewPool builds a pool from ws, dropping entries without a word or definitions.
func NewPool(ws []Word) *Pool {
	out := make([]Word, 0, len(ws))
	for _, w := range ws {
		if strings.TrimSpace(w.Word) == "" || len(w.Definitions) == 0 {
			continue
		}
		out = append(out, w)
	}
	return &Pool{words: out}
}

// Load reads a pool from path, or from the embedded default when path is empty.
func Load(path string) (*Pool, error) {
	data := embeddedWords
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		data = b
	}
	return Parse(data)
}

// Parse decodes a JSON array of words.
func Parse(data []byte) (*Pool, error) {
	var ws []Word
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("decode words: %w", err)
	}
	p := NewPool(ws)
	if p.Len() == 0 {
		return nil, ErrEmptyPool
	}
	return p, nil
}

func (p *Pool) Len() int { return len(p.words) }

// Sample returns min(n, Len()) distinct words in random order.
func (p *Pool) Sample(n int) []Word {
	if n > len(p.words) {
		n = len(p.words)
	}
	if n <= 0 {
		return []Word{}
	}
	out := make([]Word, 0, n)
	for _, i := range rand.Perm(len(p.words))[:n] {
		out = append(out, p.words[i].clone())
	}
	return out
}

func (w Word) clone() Word {
	defs := make([]Definition, len(w.Definitions))
	copy(defs, w.Definitions)
	return Word{Word: w.Word, Definitions: defs}
}

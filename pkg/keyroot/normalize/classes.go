package normalize

import "sort"

// Classes assigns one form to every group of words that are equal under
// the plural rules within a batch of tokens. Singular alone cannot do this:
// "cookies" folds to "cooky" and "mangoes" to "mangoe", so they only meet
// "cookie" and "mango" once both sides are known.
type Classes struct {
	form map[string]string // surface word -> class form
}

// Classes groups the words of all batches. Words join a class when their
// norms are equal or one is the +s, +es or y/ies plural of the other. Each
// class takes the norm of its shortest surface word.
func (n *Normalizer) Classes(batches ...[]Token) *Classes {
	norms := make(map[string]string)
	for _, toks := range batches {
		for _, t := range toks {
			norms[t.Text] = t.Norm
		}
	}

	words := make([]string, 0, len(norms))
	for w := range norms {
		words = append(words, w)
	}
	sort.Strings(words)

	parent := make(map[string]string, len(words))
	var find func(string) string
	find = func(w string) string {
		p, ok := parent[w]
		if !ok || p == w {
			return w
		}
		root := find(p)
		parent[w] = root
		return root
	}
	union := func(a, b string) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[rb] = ra
		}
	}

	byNorm := make(map[string]string)
	for _, w := range words {
		if first, ok := byNorm[norms[w]]; ok {
			union(first, w)
		} else {
			byNorm[norms[w]] = w
		}
		for _, p := range plurals(w) {
			if _, ok := norms[p]; ok {
				union(w, p)
			}
		}
	}

	best := make(map[string]string)
	for _, w := range words {
		r := find(w)
		if cur, ok := best[r]; !ok || shorter(w, cur) {
			best[r] = w
		}
	}

	c := &Classes{form: make(map[string]string, len(words))}
	for _, w := range words {
		c.form[w] = norms[best[find(w)]]
	}
	return c
}

// Form returns the class form of t, or t.Norm for words outside the batch.
func (c *Classes) Form(t Token) string {
	if c != nil {
		if f, ok := c.form[t.Text]; ok {
			return f
		}
	}
	return t.Norm
}

// Apply rewrites the Norm of every token to its class form.
func (c *Classes) Apply(toks []Token) {
	for i := range toks {
		toks[i].Norm = c.Form(toks[i])
	}
}

func plurals(w string) []string {
	out := []string{w + "s", w + "es"}
	if n := len(w); n > 1 && w[n-1] == 'y' {
		out = append(out, w[:n-1]+"ies")
	}
	return out
}

func shorter(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

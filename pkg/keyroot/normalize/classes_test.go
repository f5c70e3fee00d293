package normalize

import (
	"testing"

	"github.com/cognicore/keyroot/pkg/keyroot/lexicon"
)

func TestClassesFoldPlurals(t *testing.T) {
	n := New()
	cls := n.Classes(
		n.Tokenize("Oatmeal Cookies, cookie tin"),
		n.Tokenize("dried mangoes"),
		n.Tokenize("mango tomato tomatoes"),
		n.Tokenize("strawberries strawberry boxes box"),
	)

	tests := []struct {
		word string
		want string
	}{
		{"cookies", "cookie"},
		{"cookie", "cookie"},
		{"mangoes", "mango"},
		{"tomatoes", "tomato"},
		{"strawberries", "strawberry"},
		{"boxes", "box"},
		{"oatmeal", "oatmeal"},
	}
	for _, tt := range tests {
		tok := n.Tokenize(tt.word)[0]
		if got := cls.Form(tok); got != tt.want {
			t.Errorf("Form(%q) = %q, want %q", tt.word, got, tt.want)
		}
	}
}

func TestClassesLoneWordKeepsNorm(t *testing.T) {
	n := New()
	toks := n.Tokenize("Cookies and Mangoes")
	n.Classes(toks).Apply(toks)
	for _, tok := range toks {
		if tok.Norm != n.Fold(tok.Text) {
			t.Errorf("%q folded to %q outside any class", tok.Text, tok.Norm)
		}
	}

	var none *Classes
	tok := n.Tokenize("cookies")[0]
	if got := none.Form(tok); got != tok.Norm {
		t.Errorf("nil Classes Form = %q, want %q", got, tok.Norm)
	}
}

func TestClassesKeepLexiconGroups(t *testing.T) {
	lex := lexicon.New()
	lex.AddSynonymGroup("leaf", []string{"leaves"})
	n := New()
	n.SetLexicon(lex)

	toks := n.Tokenize("mint leaves, leaf tea")
	n.Classes(toks).Apply(toks)
	if toks[1].Norm != "leaf" || toks[2].Norm != "leaf" {
		t.Errorf("norms = %q, %q, want leaf", toks[1].Norm, toks[2].Norm)
	}
}

package authoring

import (
	"reflect"
	"testing"
)

func TestSyntaxHighlightingComplete(t *testing.T) {
	got := SyntaxHighlighting(`IF([Qty] > 0, "yes", 1.5)`)
	want := []SyntaxToken{
		{Kind: KindFunction, Text: "IF", Start: 0, End: 2},
		{Kind: KindPunctuation, Text: "(", Start: 2, End: 3},
		{Kind: KindField, Text: "[Qty]", Start: 3, End: 8},
		{Kind: KindOperator, Text: ">", Start: 9, End: 10},
		{Kind: KindNumber, Text: "0", Start: 11, End: 12},
		{Kind: KindPunctuation, Text: ",", Start: 12, End: 13},
		{Kind: KindString, Text: `"yes"`, Start: 14, End: 19},
		{Kind: KindPunctuation, Text: ",", Start: 19, End: 20},
		{Kind: KindNumber, Text: "1.5", Start: 21, End: 24},
		{Kind: KindPunctuation, Text: ")", Start: 24, End: 25},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tokens =\n%v\nwant\n%v", got, want)
	}
}

func TestSyntaxHighlightingKeywords(t *testing.T) {
	got := SyntaxHighlighting("1 AND 2")
	if len(got) != 3 {
		t.Fatalf("got %d tokens: %v", len(got), got)
	}
	if got[1].Kind != KindIdentifier || got[1].Text != "AND" {
		t.Errorf("middle token = %+v, want AND identifier", got[1])
	}
}

func TestSyntaxHighlightingFallback(t *testing.T) {
	// An unterminated string fails the lexer; the fallback still classifies
	// the leading tokens and the open string span.
	got := SyntaxHighlighting(`SUM([Qty]) & "oops`)

	kinds := make([]TokenKind, len(got))
	for i, tok := range got {
		kinds[i] = tok.Kind
	}
	want := []TokenKind{
		KindFunction, KindPunctuation, KindField, KindPunctuation,
		KindOperator, KindString,
	}
	if !reflect.DeepEqual(kinds, want) {
		t.Fatalf("kinds = %v, want %v", kinds, want)
	}

	last := got[len(got)-1]
	if last.Text != `"oops` || last.End != len(`SUM([Qty]) & "oops`) {
		t.Errorf("open string span = %+v", last)
	}
}

func TestSyntaxHighlightingFallbackUnterminatedField(t *testing.T) {
	got := SyntaxHighlighting("[Unit Pr")
	if len(got) != 1 || got[0].Kind != KindField || got[0].Text != "[Unit Pr" {
		t.Errorf("tokens = %v", got)
	}
}

func TestSyntaxHighlightingEmpty(t *testing.T) {
	if got := SyntaxHighlighting(""); len(got) != 0 {
		t.Errorf("tokens = %v, want none", got)
	}
}

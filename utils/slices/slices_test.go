package slices

import (
	"go/token"
	"testing"
)

func TestOneOf(t *testing.T) {
	if !OneOf(token.NEQ, token.EQL, token.NEQ) {
		t.Error("!= was not found among == and !=")
	}
	if OneOf(token.LSS, token.EQL, token.NEQ) {
		t.Error("< was found among == and !=")
	}
	if OneOf("Lock") {
		t.Error("Found an element in an empty list")
	}
}

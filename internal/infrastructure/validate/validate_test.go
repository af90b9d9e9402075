package validate

import (
	"strings"
	"testing"
)

func TestRequired(t *testing.T) {
	if err := Required()("value"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := Required()("   "); err == nil {
		t.Error("whitespace-only value should fail")
	}
}

func TestFieldPrefixesName(t *testing.T) {
	v := Field("username", Required())
	err := v("")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "username") {
		t.Errorf("error should name the field, got %q", err.Error())
	}
}

func TestComposeFirstErrorWins(t *testing.T) {
	v := Compose(MinLength(3), MaxLength(5))
	if err := v("ab"); err == nil || !strings.Contains(err.Error(), "at least 3") {
		t.Errorf("expected the min-length error first, got %v", err)
	}
	if err := v("abcd"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestOneOf(t *testing.T) {
	v := OneOf("python", "javascript")
	if err := v("python"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := v("cobol"); err == nil {
		t.Error("value outside the allowed set should fail")
	}
}

func TestNoSpaces(t *testing.T) {
	if err := NoSpaces()("no-spaces"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := NoSpaces()("has space"); err == nil {
		t.Error("value with a space should fail")
	}
}

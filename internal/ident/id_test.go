package ident

import (
	"encoding/base64"
	"errors"
	"testing"
)

func TestNew_Length(t *testing.T) {
	for _, length := range []int{UserIDLength, TokenLength} {
		id, err := New(length)
		if err != nil {
			t.Fatalf("New(%d) error: %v", length, err)
		}
		if len(id) != length {
			t.Fatalf("New(%d) returned %d bytes", length, len(id))
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, length := range []int{UserIDLength, TokenLength} {
		id, err := New(length)
		if err != nil {
			t.Fatalf("New error: %v", err)
		}
		parsed, err := Parse(id.String(), length)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", id.String(), err)
		}
		if !parsed.Equal(id) {
			t.Fatalf("round trip mismatch: %v != %v", parsed, id)
		}
	}
}

func TestParse_InvalidEncoding(t *testing.T) {
	// '!' is outside the base64url alphabet.
	_, err := Parse("not!base64url", UserIDLength)
	if !errors.Is(err, ErrInvalidEncoding) {
		t.Fatalf("want ErrInvalidEncoding, got %v", err)
	}
}

func TestParse_LengthMismatch(t *testing.T) {
	short := base64.RawURLEncoding.EncodeToString(make([]byte, UserIDLength-1))
	long := base64.RawURLEncoding.EncodeToString(make([]byte, UserIDLength+1))

	for _, s := range []string{short, long} {
		_, err := Parse(s, UserIDLength)
		if !errors.Is(err, ErrLengthMismatch) {
			t.Fatalf("Parse(%q): want ErrLengthMismatch, got %v", s, err)
		}
	}
}

func TestReroll_KeepsStorage(t *testing.T) {
	id, err := New(TokenLength)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	before := append(ID(nil), id...)

	if err := id.Reroll(); err != nil {
		t.Fatalf("Reroll error: %v", err)
	}
	if len(id) != TokenLength {
		t.Fatalf("Reroll changed length to %d", len(id))
	}
	// 128 random bytes colliding with themselves is not a realistic flake.
	if id.Equal(before) {
		t.Fatal("Reroll did not change the ID's bytes")
	}
}

func TestEqual(t *testing.T) {
	a := ID{1, 2, 3}
	b := ID{1, 2, 3}
	c := ID{1, 2, 4}

	if !a.Equal(b) {
		t.Fatal("identical IDs reported unequal")
	}
	if a.Equal(c) {
		t.Fatal("different IDs reported equal")
	}
}

package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindSurvivesWrapping(t *testing.T) {
	base := AtRow(DataIntegrity, 7, "parse interval start", errors.New("bad layout"))
	wrapped := fmt.Errorf("align activation: %w", base)

	if !Is(wrapped, DataIntegrity) {
		t.Fatalf("expected data_integrity, got %q", KindOf(wrapped))
	}
	if RowOf(wrapped) != 7 {
		t.Fatalf("expected row 7, got %d", RowOf(wrapped))
	}
	if Is(wrapped, Upstream) {
		t.Fatal("must not match a different kind")
	}
}

func TestErrorMessage(t *testing.T) {
	err := AtRow(MalformedValue, 3, "value \"5.5\"", errors.New("expected comma decimal"))
	want := "malformed_value: row 3: value \"5.5\": expected comma decimal"
	if err.Error() != want {
		t.Fatalf("got %q, want %q", err.Error(), want)
	}

	plain := New(InvalidInput, "days out of range")
	if plain.Error() != "invalid_input: days out of range" {
		t.Fatalf("unexpected message %q", plain.Error())
	}
	if RowOf(plain) != NoRow {
		t.Fatal("plain error must not carry a row")
	}
}

func TestUnclassified(t *testing.T) {
	if KindOf(errors.New("boom")) != "" {
		t.Fatal("unclassified error must have empty kind")
	}
	if Is(nil, Upstream) {
		t.Fatal("nil is never classified")
	}
}

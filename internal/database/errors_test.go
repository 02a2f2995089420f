package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestViolationCodes(t *testing.T) {
	unique := fmt.Errorf("insert user: %w", &pq.Error{Code: "23505"})
	fk := &pq.Error{Code: "23503"}

	if !IsUniqueViolation(unique) {
		t.Error("expected wrapped 23505 to be a unique violation")
	}
	if IsUniqueViolation(fk) {
		t.Error("23503 is not a unique violation")
	}
	if !IsForeignKeyViolation(fk) {
		t.Error("expected 23503 to be a foreign key violation")
	}
	if !IsNumericOutOfRange(fmt.Errorf("upsert: %w", &pq.Error{Code: "22003"})) {
		t.Error("expected 22003 to be a numeric overflow")
	}
	if IsForeignKeyViolation(errors.New("boom")) {
		t.Error("plain errors carry no code")
	}
}

package generator

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestOperationAtDeterministic(t *testing.T) {
	a := OperationAt(7)
	b := OperationAt(7)
	if a.ID != b.ID {
		t.Fatalf("ids diverged: %s vs %s", a.ID, b.ID)
	}
	if a.Date != b.Date || a.Description != b.Description || a.Status != b.Status {
		t.Fatalf("fields diverged: %+v vs %+v", a, b)
	}
	if !a.Amount.Equal(b.Amount) {
		t.Fatalf("amounts diverged: %s vs %s", a.Amount, b.Amount)
	}

	if OperationAt(7).ID == OperationAt(8).ID {
		t.Fatal("adjacent rows share an id")
	}
}

func TestUserAtDeterministic(t *testing.T) {
	a := UserAt(3)
	b := UserAt(3)
	if a.ID != b.ID || a.Email != b.Email || a.Active != b.Active {
		t.Fatalf("fields diverged: %+v vs %+v", a, b)
	}
	if !a.Balance.Equal(b.Balance) {
		t.Fatalf("balances diverged: %s vs %s", a.Balance, b.Balance)
	}
}

func TestSynthesizedRowsPassValidation(t *testing.T) {
	v := validator.New()
	for i := 0; i < 500; i++ {
		if err := v.Struct(OperationAt(i)); err != nil {
			t.Fatalf("operation %d malformed: %v", i, err)
		}
		if err := v.Struct(UserAt(i)); err != nil {
			t.Fatalf("user %d malformed: %v", i, err)
		}
	}
}

func TestOperationDatesWalkBackwards(t *testing.T) {
	if OperationAt(0).Date != "2025-12-31" {
		t.Fatalf("anchor moved: %s", OperationAt(0).Date)
	}
	if OperationAt(1).Date != "2025-12-30" {
		t.Fatalf("expected one day back, got %s", OperationAt(1).Date)
	}
}

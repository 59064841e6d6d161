package db

import "testing"

func TestRebind(t *testing.T) {
	q := "SELECT a FROM t WHERE x = ? AND y IN (?, ?);"

	if got := Rebind(false, q); got != q {
		t.Fatalf("sqlite rebind changed query: %q", got)
	}

	want := "SELECT a FROM t WHERE x = $1 AND y IN ($2, $3);"
	if got := Rebind(true, q); got != want {
		t.Fatalf("postgres rebind = %q, want %q", got, want)
	}
}

func TestPlaceholders(t *testing.T) {
	if got := Placeholders(3); got != "?, ?, ?" {
		t.Fatalf("Placeholders(3) = %q", got)
	}
	if got := Placeholders(0); got != "" {
		t.Fatalf("Placeholders(0) = %q, want empty", got)
	}
}

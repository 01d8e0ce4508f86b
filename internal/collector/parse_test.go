package collector

import (
	"reflect"
	"testing"
)

func TestParseQueries(t *testing.T) {
	got := ParseQueries([]string{" bonk ", "", "SOL/USDC", "  "})
	want := []string{"bonk", "SOL/USDC"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("queries mismatch: %+v != %+v", got, want)
	}
}

func TestParsePairIDs(t *testing.T) {
	ids, err := ParsePairIDs([]string{" 8vHkPCEz6dkVK1CUsBnESGJ5TJBRyMyvfLGDFKGjvPe1 ", ""})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 1 || ids[0] != "8vHkPCEz6dkVK1CUsBnESGJ5TJBRyMyvfLGDFKGjvPe1" {
		t.Fatalf("ids mismatch: %+v", ids)
	}
}

func TestParsePairIDsInvalid(t *testing.T) {
	if _, err := ParsePairIDs([]string{"0xnot-a-solana-address"}); err == nil {
		t.Fatalf("expected error for invalid pair id")
	}
	if _, err := ParsePairIDs([]string{"tooshort"}); err == nil {
		t.Fatalf("expected error for short pair id")
	}
}

package collector

import (
	"fmt"
	"strings"
)

// ParseQueries trims and drops empty search terms.
func ParseQueries(inputs []string) []string {
	queries := make([]string, 0, len(inputs))
	for _, input := range inputs {
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		queries = append(queries, input)
	}
	return queries
}

// ParsePairIDs validates pair ids as base58 Solana addresses.
func ParsePairIDs(inputs []string) ([]string, error) {
	ids := make([]string, 0, len(inputs))
	for _, input := range inputs {
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if !isBase58(input) || len(input) < 32 || len(input) > 44 {
			return nil, fmt.Errorf("invalid pair id: %s", input)
		}
		ids = append(ids, input)
	}
	return ids, nil
}

const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

func isBase58(input string) bool {
	for _, r := range input {
		if !strings.ContainsRune(base58Alphabet, r) {
			return false
		}
	}
	return input != ""
}

package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// NormalizeCodes trims, de-duplicates and sorts supplier codes so that any
// permutation of the same selection produces the same key.
func NormalizeCodes(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// ParamsDigest returns the hex SHA-256 of the JSON encoding of params.
// Map keys are sorted by encoding/json, so equal maps hash equally.
func ParamsDigest(params any) (string, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("encode cache params: %w", err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// Key combines the normalized supplier codes with the params digest.
func Key(codes []string, params any) (string, error) {
	normalized, digest, err := keyParts(codes, params)
	if err != nil {
		return "", err
	}
	return joinKey(normalized, digest), nil
}

func keyParts(codes []string, params any) ([]string, string, error) {
	digest, err := ParamsDigest(params)
	if err != nil {
		return nil, "", err
	}
	return NormalizeCodes(codes), digest, nil
}

// Supplier codes are free text, so the separators are control characters.
func joinKey(codes []string, digest string) string {
	return strings.Join(codes, "\x1f") + "\x1e" + digest
}

func intersects(stored []string, targets map[string]struct{}) bool {
	for _, code := range stored {
		if _, ok := targets[code]; ok {
			return true
		}
	}
	return false
}

func codeSet(codes []string) map[string]struct{} {
	set := make(map[string]struct{}, len(codes))
	for _, code := range NormalizeCodes(codes) {
		set[code] = struct{}{}
	}
	return set
}

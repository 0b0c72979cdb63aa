package sfclient

import (
	"fmt"
	"sort"
	"strings"
)

// Claim is one attribute asserted about a federated caller.
type Claim struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// ClaimSet is the ordered list of claims carried by a call.
type ClaimSet []Claim

// Resolve returns the first non-empty value whose type matches claimType,
// ignoring case.
func (cs ClaimSet) Resolve(claimType string) (string, error) {
	for _, c := range cs {
		if strings.EqualFold(c.Type, claimType) && c.Value != "" {
			return c.Value, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrClaimNotFound, claimType)
}

// ClaimsFromMap builds a claim set from a decoded JSON object mapping claim
// types to a string or a list of strings. Keys are visited in sorted order;
// other value types are skipped.
func ClaimsFromMap(m map[string]any) ClaimSet {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cs := make(ClaimSet, 0, len(m))
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			cs = append(cs, Claim{Type: k, Value: v})
		case []string:
			for _, s := range v {
				cs = append(cs, Claim{Type: k, Value: s})
			}
		case []any:
			for _, item := range v {
				if s, ok := item.(string); ok {
					cs = append(cs, Claim{Type: k, Value: s})
				}
			}
		}
	}
	return cs
}

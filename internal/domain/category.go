package domain

import (
	"encoding/json"
	"fmt"
)

// Category identifies the rule family a finding belongs to. The label is
// only used for display and serialization; scoring matches on the value.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryCodeComplexity
	CategoryInfiniteLoop
	CategoryListKey
	CategoryPerformance
	CategoryXSS
	CategoryCodeInjection
	CategoryWindowOpener
	CategoryExposedSecrets
	CategoryAccessibility
	CategorySQLInjection
	CategoryPlaintextPassword
	CategoryMissingAuthentication
	CategoryTokenExpiry
	CategoryErrorHandling
	CategoryCORS
	CategoryUnsafeOperation
	CategoryCommandInjection
	CategoryPathTraversal
	CategoryLDAPInjection
	CategoryWeakCryptography
	CategoryHardcodedKey
	CategoryWeakRandomness
	CategoryFileUpload
	CategoryDependencyManagement
	CategorySpelling
	CategoryGrammar
)

var categoryLabels = map[Category]string{
	CategoryUnknown:               "Unknown",
	CategoryCodeComplexity:        "Code Complexity",
	CategoryInfiniteLoop:          "Infinite Loop",
	CategoryListKey:               "React Best Practice",
	CategoryPerformance:           "Performance",
	CategoryXSS:                   "XSS Vulnerability",
	CategoryCodeInjection:         "Code Injection",
	CategoryWindowOpener:          "Security",
	CategoryExposedSecrets:        "Exposed Secrets",
	CategoryAccessibility:         "Accessibility",
	CategorySQLInjection:          "SQL Injection",
	CategoryPlaintextPassword:     "Authentication",
	CategoryMissingAuthentication: "Authorization",
	CategoryTokenExpiry:           "Authentication",
	CategoryErrorHandling:         "Error Handling",
	CategoryCORS:                  "CORS Misconfiguration",
	CategoryUnsafeOperation:       "Unsafe Operation",
	CategoryCommandInjection:      "Command Injection",
	CategoryPathTraversal:         "Path Traversal",
	CategoryLDAPInjection:         "LDAP Injection",
	CategoryWeakCryptography:      "Weak Cryptography",
	CategoryHardcodedKey:          "Hardcoded Encryption Key",
	CategoryWeakRandomness:        "Weak Randomness",
	CategoryFileUpload:            "Unrestricted File Upload",
	CategoryDependencyManagement:  "Dependency Management",
	CategorySpelling:              "Spelling",
	CategoryGrammar:               "Grammar",
}

// AllCategories lists every known category in declaration order.
func AllCategories() []Category {
	out := make([]Category, 0, len(categoryLabels)-1)
	for c := CategoryCodeComplexity; c <= CategoryGrammar; c++ {
		out = append(out, c)
	}
	return out
}

func (c Category) String() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return categoryLabels[CategoryUnknown]
}

// IsInjection reports whether the category is an injection or XSS family
// member other than SQL injection.
func (c Category) IsInjection() bool {
	switch c {
	case CategoryXSS, CategoryCodeInjection, CategoryCommandInjection, CategoryLDAPInjection:
		return true
	}
	return false
}

// IsAuth reports whether the category concerns authentication or authorization.
func (c Category) IsAuth() bool {
	switch c {
	case CategoryPlaintextPassword, CategoryMissingAuthentication, CategoryTokenExpiry:
		return true
	}
	return false
}

func (c Category) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON accepts a label. Labels shared by several categories
// resolve to the first one declared, which scores identically.
func (c *Category) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return fmt.Errorf("category: %w", err)
	}
	*c = ParseCategory(label)
	return nil
}

// ParseCategory resolves a display label back to a category.
func ParseCategory(label string) Category {
	for _, c := range AllCategories() {
		if c.String() == label {
			return c
		}
	}
	return CategoryUnknown
}

package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/openkraft/codegate/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategory_LabelsRoundTrip(t *testing.T) {
	for _, c := range domain.AllCategories() {
		parsed := domain.ParseCategory(c.String())
		assert.Equal(t, c.String(), parsed.String())
		assert.Equal(t, c.IsAuth(), parsed.IsAuth(), "shared labels must score the same: %s", c)
		assert.Equal(t, c.IsInjection(), parsed.IsInjection())
	}
}

func TestCategory_Families(t *testing.T) {
	assert.True(t, domain.CategoryXSS.IsInjection())
	assert.True(t, domain.CategoryLDAPInjection.IsInjection())
	assert.False(t, domain.CategorySQLInjection.IsInjection(), "SQL has its own rule")
	assert.True(t, domain.CategoryTokenExpiry.IsAuth())
	assert.False(t, domain.CategoryCORS.IsAuth())
}

func TestCategory_JSON(t *testing.T) {
	data, err := json.Marshal(domain.CategorySQLInjection)
	require.NoError(t, err)
	assert.Equal(t, `"SQL Injection"`, string(data))

	var c domain.Category
	require.NoError(t, json.Unmarshal([]byte(`"Weak Randomness"`), &c))
	assert.Equal(t, domain.CategoryWeakRandomness, c)

	require.NoError(t, json.Unmarshal([]byte(`"Something New"`), &c))
	assert.Equal(t, domain.CategoryUnknown, c)
	assert.Error(t, json.Unmarshal([]byte(`42`), &c))
}

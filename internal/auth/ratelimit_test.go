package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/argusone/argus-server/internal/models"
)

func TestLimitForTier(t *testing.T) {
	assert.Equal(t, 100, LimitForTier(models.TierBasic))
	assert.Equal(t, 500, LimitForTier(models.TierPro))
	assert.Equal(t, 2000, LimitForTier(models.TierEnterprise))
}

func TestLimitForTierUnknownDefaults(t *testing.T) {
	assert.Equal(t, 100, LimitForTier(""))
	assert.Equal(t, 100, LimitForTier("platinum"))
}

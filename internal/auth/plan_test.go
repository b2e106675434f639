package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlanTier(t *testing.T) {
	assert.Equal(t, TierPro, PlanTier("active"))
	assert.Equal(t, TierPro, PlanTier("trialing"))
	assert.Equal(t, TierFree, PlanTier("canceled"))
	assert.Equal(t, TierFree, PlanTier("past_due"))
	assert.Equal(t, TierFree, PlanTier("free"))
	assert.Equal(t, TierFree, PlanTier(""))
}

func TestAllows(t *testing.T) {
	capabilities := []Capability{
		CapabilityEdit,
		CapabilityDataAnalysis,
		CapabilityQRCode,
		CapabilityCustomSlug,
		CapabilityCustomExpiry,
		CapabilityCustomUses,
	}

	for _, capability := range capabilities {
		assert.True(t, Allows(TierPro, capability), "pro should get %s", capability)
		assert.False(t, Allows(TierFree, capability), "free should not get %s", capability)
	}

	assert.False(t, Allows(TierPro, Capability("made-up")))
}

package auth

type Tier string

const (
	TierFree Tier = "free"
	TierPro  Tier = "pro"
)

type Capability string

const (
	CapabilityEdit         Capability = "edit"
	CapabilityDataAnalysis Capability = "data-analysis"
	CapabilityQRCode       Capability = "qr-code"
	CapabilityCustomSlug   Capability = "custom-slug"
	CapabilityCustomExpiry Capability = "custom-expiry"
	CapabilityCustomUses   Capability = "custom-uses"
)

var proCapabilities = map[Capability]bool{
	CapabilityEdit:         true,
	CapabilityDataAnalysis: true,
	CapabilityQRCode:       true,
	CapabilityCustomSlug:   true,
	CapabilityCustomExpiry: true,
	CapabilityCustomUses:   true,
}

// PlanTier derives the tier from a subscription status. Pro iff the
// subscription is active or trialing; everything else (including no
// subscription at all) is free.
func PlanTier(status string) Tier {
	switch status {
	case "active", "trialing":
		return TierPro
	default:
		return TierFree
	}
}

// Allows reports whether a tier grants a capability. All premium
// capabilities are pro-only; the free tier gets none of them.
func Allows(tier Tier, capability Capability) bool {
	if tier != TierPro {
		return false
	}
	return proCapabilities[capability]
}

package auth

// Identity is the resolved caller, shared by both credential kinds.
// AccountID is the only value handlers may trust for ownership checks.
type Identity struct {
	AccountID  uint
	Email      string
	CustomerID string
	PlanStatus string
}

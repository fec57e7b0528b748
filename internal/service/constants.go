package service

// Business constants of the mesh. Values are fixed by the platform rules
// and must not drift.
const (
	// FeeRate is the base commission on every transfer
	FeeRate = 0.05

	// FeeSurchargeFactor doubles the commission; both halves come out of
	// the sender
	FeeSurchargeFactor = 2

	// ThresholdSuspicious is the balance at which an account is marked
	// suspicious
	ThresholdSuspicious = 10000

	// ThresholdBlock is the balance at which an account is auto-blocked
	ThresholdBlock = 100000

	// MaxLoginAttempts locks the account once reached
	MaxLoginAttempts = 5

	// RiskScoreHighTransfer flags transfers above this percentage of the
	// sender's pre-transfer balance
	RiskScoreHighTransfer = 20

	// InitialBalance is granted to every new account
	InitialBalance = 1000

	// CurrencyCode appears in log details
	CurrencyCode = "KIB"

	// CardProduct is the card issued at registration
	CardProduct = "Mesh Standard"
)

package models

// Privileged mutation requests; every one carries the secondary password.

type SetBalanceRequest struct {
	SecondaryPassword string  `json:"secondary_password"`
	Value             float64 `json:"value"`
}

type SetStatusRequest struct {
	SecondaryPassword string        `json:"secondary_password"`
	Value             AccountStatus `json:"value"`
}

type RevertTransactionRequest struct {
	SecondaryPassword string `json:"secondary_password"`
}

package dto

// TokenPair is the login/refresh success body. Field names are part of the
// client contract.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

package service

import "cleverspace/internal/domain"

type PasswordService interface {
	Hash(password string) (*domain.PasswordCredential, error)
	// Verify checks password against the stored credential and reports
	// whether the hash should be recomputed under the current policy.
	Verify(password string, cred *domain.PasswordCredential) (rehashNeeded, ok bool)
}

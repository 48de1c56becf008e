package impl

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/json"
	"errors"

	"cleverspace/internal/domain"

	"golang.org/x/crypto/argon2"
)

var ErrEmptyPassword = errors.New("empty password")

type Argon2Params struct {
	// Stored alongside the hash so verification uses the original cost.
	Time    uint32 `json:"t"`
	Memory  uint32 `json:"m"` // KiB
	Threads uint8  `json:"p"`
	KeyLen  uint32 `json:"k"`
	SaltLen uint32 `json:"s"`
}

type PasswordServiceImpl struct {
	currentVer int
	cur        Argon2Params
	algoName   string
}

func NewPasswordServiceArgon2id() *PasswordServiceImpl {
	return &PasswordServiceImpl{
		currentVer: 1,
		algoName:   "argon2id",
		cur: Argon2Params{
			Time:    3,
			Memory:  64 * 1024,
			Threads: 1,
			KeyLen:  32,
			SaltLen: 16,
		},
	}
}

func (p *PasswordServiceImpl) Hash(password string) (*domain.PasswordCredential, error) {
	if password == "" {
		return nil, ErrEmptyPassword
	}
	salt := make([]byte, p.cur.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	hash := argon2.IDKey([]byte(password), salt, p.cur.Time, p.cur.Memory, p.cur.Threads, p.cur.KeyLen)
	paramsJSON, err := json.Marshal(p.cur)
	if err != nil {
		return nil, err
	}
	return &domain.PasswordCredential{
		Algo:        p.algoName,
		Hash:        hash,
		Salt:        salt,
		ParamsJSON:  paramsJSON,
		PasswordVer: p.currentVer,
	}, nil
}

func (p *PasswordServiceImpl) Verify(password string, cred *domain.PasswordCredential) (rehashNeeded, ok bool) {
	if cred.Algo != p.algoName {
		return true, false
	}
	var stored Argon2Params
	if err := json.Unmarshal(cred.ParamsJSON, &stored); err != nil {
		return true, false
	}
	calculated := argon2.IDKey([]byte(password), cred.Salt, stored.Time, stored.Memory, stored.Threads, stored.KeyLen)
	ok = subtle.ConstantTimeCompare(calculated, cred.Hash) == 1

	rehashNeeded = ok && (cred.PasswordVer != p.currentVer || stored != p.cur)

	return rehashNeeded, ok
}

package services

import (
	"strings"

	"moodwall/internal/crypto"
	"moodwall/internal/models"
)

// EncryptionService wraps the cipher with domain-specific methods
type EncryptionService struct {
	cipher *crypto.Cipher
}

func NewEncryptionService(encryptionKey, blindIndexKey []byte) (*EncryptionService, error) {
	c, err := crypto.NewCipher(encryptionKey, blindIndexKey)
	if err != nil {
		return nil, err
	}
	return &EncryptionService{cipher: c}, nil
}

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// EmailIndex is the lookup key for an email address.
func (s *EncryptionService) EmailIndex(email string) string {
	return s.cipher.BlindIndex(normalizeEmail(email))
}

// EncryptAccount encrypts the email and fills its blind index before storing in DB
func (s *EncryptionService) EncryptAccount(a *models.AuthAccount) error {
	email := normalizeEmail(a.Email)
	enc, err := s.cipher.Encrypt(email)
	if err != nil {
		return err
	}
	a.Email = enc
	a.EmailBlindIndex = s.cipher.BlindIndex(email)
	return nil
}

func (s *EncryptionService) DecryptAccount(a *models.AuthAccount) error {
	dec, err := s.cipher.Decrypt(a.Email)
	if err != nil {
		return err
	}
	a.Email = dec
	return nil
}

// EncryptCheckin encrypts the private note of a check-in in place.
func (s *EncryptionService) EncryptCheckin(c *models.MoodCheckin) error {
	if c.Notes == nil || *c.Notes == "" {
		return nil
	}
	enc, err := s.cipher.Encrypt(*c.Notes)
	if err != nil {
		return err
	}
	c.Notes = &enc
	return nil
}

func (s *EncryptionService) DecryptCheckin(c *models.MoodCheckin) error {
	if c.Notes == nil || *c.Notes == "" {
		return nil
	}
	dec, err := s.cipher.Decrypt(*c.Notes)
	if err != nil {
		return err
	}
	c.Notes = &dec
	return nil
}

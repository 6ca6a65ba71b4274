// Package crypto provides request signing and at-rest encryption of the
// exchange API secret.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// pbkdf2Iterations is the OWASP-recommended minimum for HMAC-SHA256.
	pbkdf2Iterations = 480_000
	saltLen          = 16
	aesKeyLen        = 32
	// currentVersion is the encrypted-secret JSON schema version.
	currentVersion = 1
)

// encryptedSecretJSON is the on-disk format for an encrypted API secret.
type encryptedSecretJSON struct {
	Version    int    `json:"version"`
	Salt       string `json:"salt"`       // base64 standard encoding
	Nonce      string `json:"nonce"`      // base64 standard encoding
	Ciphertext string `json:"ciphertext"` // base64 standard encoding
}

// SecretConfig carries the information LoadSecret needs to resolve the API
// secret.
type SecretConfig struct {
	// RawSecret is returned as is when non-empty.
	RawSecret string

	// EncryptedSecretPath is the path to a JSON file produced by EncryptSecret.
	EncryptedSecretPath string

	// Password decrypts the file at EncryptedSecretPath.
	Password string
}

// EncryptSecret encrypts secret with password using PBKDF2-HMAC-SHA256 key
// derivation and AES-256-GCM. It returns the JSON blob to write to disk.
func EncryptSecret(secret, password string) ([]byte, error) {
	if password == "" {
		return nil, errors.New("crypto: password must not be empty")
	}
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("crypto: secret must not be empty")
	}

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("crypto: generating salt: %w", err)
	}

	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("crypto: generating nonce: %w", err)
	}

	ciphertext := gcm.Seal(nil, nonce, []byte(secret), nil)

	out := encryptedSecretJSON{
		Version:    currentVersion,
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
	}
	return json.MarshalIndent(out, "", "  ")
}

// DecryptSecret decrypts a JSON blob produced by EncryptSecret.
func DecryptSecret(encryptedJSON []byte, password string) (string, error) {
	if password == "" {
		return "", errors.New("crypto: password must not be empty")
	}

	var stored encryptedSecretJSON
	if err := json.Unmarshal(encryptedJSON, &stored); err != nil {
		return "", fmt.Errorf("crypto: parsing encrypted secret JSON: %w", err)
	}
	if stored.Version != currentVersion {
		return "", fmt.Errorf("crypto: unsupported version %d", stored.Version)
	}

	salt, err := base64.StdEncoding.DecodeString(stored.Salt)
	if err != nil {
		return "", fmt.Errorf("crypto: decoding salt: %w", err)
	}
	nonce, err := base64.StdEncoding.DecodeString(stored.Nonce)
	if err != nil {
		return "", fmt.Errorf("crypto: decoding nonce: %w", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(stored.Ciphertext)
	if err != nil {
		return "", fmt.Errorf("crypto: decoding ciphertext: %w", err)
	}

	gcm, err := newGCM(password, salt)
	if err != nil {
		return "", err
	}
	if len(nonce) != gcm.NonceSize() {
		return "", fmt.Errorf("crypto: nonce must be %d bytes, got %d", gcm.NonceSize(), len(nonce))
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("crypto: decryption failed (wrong password?): %w", err)
	}
	return string(plaintext), nil
}

// LoadSecret resolves the API secret: RawSecret first, then the encrypted
// file decrypted with Password.
func LoadSecret(cfg SecretConfig) (string, error) {
	if cfg.RawSecret != "" {
		return cfg.RawSecret, nil
	}

	if cfg.EncryptedSecretPath != "" {
		data, err := os.ReadFile(cfg.EncryptedSecretPath)
		if err != nil {
			return "", fmt.Errorf("crypto: reading encrypted secret file: %w", err)
		}
		return DecryptSecret(data, cfg.Password)
	}

	return "", errors.New("crypto: no API secret source configured (set RawSecret or EncryptedSecretPath)")
}

func newGCM(password string, salt []byte) (cipher.AEAD, error) {
	derivedKey := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, aesKeyLen, sha256.New)
	block, err := aes.NewCipher(derivedKey)
	if err != nil {
		return nil, fmt.Errorf("crypto: creating cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypto: creating GCM: %w", err)
	}
	return gcm, nil
}

package crypto

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSignKnownVector(t *testing.T) {
	// Example request from the Binance signed endpoint documentation.
	h := &HMACAuth{
		Key:    "vmPUZE6mv9SD5VNHk4HlWFsOr6aKE2zvsw0MuIgwCIPy6utIco14y7Ju91duEh8A",
		Secret: "NhqPtmdSJYdKjVHjA7PZj4Mge3R5YNiP1e3UZjInClVN65XAbvqqM6A7H5fATj0j",
	}
	query := "symbol=LTCBTC&side=BUY&type=LIMIT&timeInForce=GTC&quantity=1&price=0.1&recvWindow=5000&timestamp=1499827319559"
	want := "c8db56825ae71d6d79447849e617115f4a920fa2acdcab2b053c4b2838bd6b71"
	if got := h.Sign(query); got != want {
		t.Fatalf("Sign = %s, want %s", got, want)
	}
}

func TestSignParamsAt(t *testing.T) {
	h := &HMACAuth{Key: "key", Secret: "secret"}
	params := url.Values{}
	params.Set("symbol", "BTCUSDT")
	params.Set("orderId", "42")

	got := h.SignParamsAt(params, 5*time.Second, 1700000000000)

	query, sig, ok := strings.Cut(got, "&signature=")
	if !ok {
		t.Fatalf("no signature in %q", got)
	}
	if query != "orderId=42&recvWindow=5000&symbol=BTCUSDT&timestamp=1700000000000" {
		t.Errorf("query = %q", query)
	}
	if sig != h.Sign(query) {
		t.Errorf("signature does not match query")
	}
}

func TestSignParamsWithoutRecvWindow(t *testing.T) {
	h := &HMACAuth{Secret: "secret"}
	got := h.SignParamsAt(url.Values{}, 0, 1)
	if strings.Contains(got, "recvWindow") {
		t.Errorf("unexpected recvWindow in %q", got)
	}
}

func TestHMACAuthStringRedacts(t *testing.T) {
	h := &HMACAuth{Key: "abcdefgh", Secret: "supersecret"}
	s := h.String()
	if strings.Contains(s, "supersecret") || strings.Contains(s, "abcdefgh") {
		t.Fatalf("credentials leaked: %s", s)
	}
	if got := h.Headers()[APIKeyHeader]; got != "abcdefgh" {
		t.Errorf("api key header = %q", got)
	}
}

func TestEncryptDecryptSecret(t *testing.T) {
	blob, err := EncryptSecret("my-api-secret", "hunter2")
	if err != nil {
		t.Fatalf("EncryptSecret: %v", err)
	}
	if strings.Contains(string(blob), "my-api-secret") {
		t.Fatal("ciphertext contains the plaintext")
	}

	got, err := DecryptSecret(blob, "hunter2")
	if err != nil {
		t.Fatalf("DecryptSecret: %v", err)
	}
	if got != "my-api-secret" {
		t.Errorf("DecryptSecret = %q", got)
	}

	if _, err := DecryptSecret(blob, "wrong"); err == nil {
		t.Error("expected error for wrong password")
	}
}

func TestEncryptSecretValidation(t *testing.T) {
	if _, err := EncryptSecret("s", ""); err == nil {
		t.Error("expected error for empty password")
	}
	if _, err := EncryptSecret("  ", "pw"); err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestLoadSecret(t *testing.T) {
	got, err := LoadSecret(SecretConfig{RawSecret: "raw"})
	if err != nil || got != "raw" {
		t.Fatalf("raw: got %q, %v", got, err)
	}

	blob, err := EncryptSecret("from-file", "pw")
	if err != nil {
		t.Fatalf("EncryptSecret: %v", err)
	}
	path := filepath.Join(t.TempDir(), "secret.json")
	if err := os.WriteFile(path, blob, 0o600); err != nil {
		t.Fatal(err)
	}
	got, err = LoadSecret(SecretConfig{EncryptedSecretPath: path, Password: "pw"})
	if err != nil || got != "from-file" {
		t.Fatalf("file: got %q, %v", got, err)
	}

	if _, err := LoadSecret(SecretConfig{}); err == nil {
		t.Error("expected error with no source")
	}
}

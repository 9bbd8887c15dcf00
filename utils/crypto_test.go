package utils

import (
	"errors"
	"testing"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestEncryptDecrypt(t *testing.T) {
	sealed, err := Encrypt(testKey, []byte(`[{"title":"Food","amount":250}]`))
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	plain, err := Decrypt(testKey, sealed)
	if err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if string(plain) != `[{"title":"Food","amount":250}]` {
		t.Errorf("Decrypt() = %q", plain)
	}
}

func TestDecryptWrongKey(t *testing.T) {
	sealed, _ := Encrypt(testKey, []byte("secret"))
	if _, err := Decrypt("fedcba9876543210fedcba9876543210", sealed); err == nil {
		t.Error("Decrypt() with the wrong key succeeded")
	}
}

func TestKeyLength(t *testing.T) {
	if _, err := Encrypt("short", []byte("x")); !errors.Is(err, ErrKeyLength) {
		t.Errorf("Encrypt() error = %v, want ErrKeyLength", err)
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatal(err)
	}
	if !CheckPassword("correct horse", hash) {
		t.Error("CheckPassword rejected the right password")
	}
	if CheckPassword("wrong horse", hash) {
		t.Error("CheckPassword accepted the wrong password")
	}
}

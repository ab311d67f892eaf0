package security_test

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"testing"

	"golang.org/x/crypto/pbkdf2"

	"github.com/Fragarianos1981/Dr.platiPel/internal/infra/security"
)

func TestHashAndVerifyPassword(t *testing.T) {
	encoded, err := security.HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	if !strings.HasPrefix(encoded, "argon2id$v=19$") {
		t.Fatalf("unexpected encoding: %s", encoded)
	}

	ok, err := security.VerifyPassword("correct horse battery", encoded)
	if err != nil || !ok {
		t.Fatalf("expected match, got ok=%v err=%v", ok, err)
	}

	ok, err = security.VerifyPassword("wrong password", encoded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("wrong password should not verify")
	}
}

func TestVerifyPasswordEmptyInputs(t *testing.T) {
	ok, err := security.VerifyPassword("", "anything")
	if err != nil || ok {
		t.Fatalf("empty password must not verify, got ok=%v err=%v", ok, err)
	}

	ok, err = security.VerifyPassword("secret", "")
	if err != nil || ok {
		t.Fatalf("empty hash must not verify, got ok=%v err=%v", ok, err)
	}
}

func TestVerifyLegacyWerkzeugHash(t *testing.T) {
	// Accounts imported from the old system carry this format.
	const (
		password   = "athens2019"
		salt       = "WbG6Qq1zX5pR"
		iterations = 260000
	)
	sum := pbkdf2.Key([]byte(password), []byte(salt), iterations, sha256.Size, sha256.New)
	encoded := fmt.Sprintf("pbkdf2:sha256:%d$%s$%s", iterations, salt, hex.EncodeToString(sum))

	ok, err := security.VerifyPassword(password, encoded)
	if err != nil || !ok {
		t.Fatalf("legacy hash should verify, got ok=%v err=%v", ok, err)
	}

	ok, err = security.VerifyPassword("athens2020", encoded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("wrong password should not verify against legacy hash")
	}

	if !security.NeedsRehash(encoded) {
		t.Fatal("legacy hash should need a rehash")
	}
}

func TestNeedsRehash(t *testing.T) {
	encoded, err := security.HashPassword("some password")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	if security.NeedsRehash(encoded) {
		t.Fatal("fresh argon2id hash should not need a rehash")
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	if _, err := security.VerifyPassword("x", "argon2id$v=19$bogus"); err == nil {
		t.Fatal("malformed hash should error")
	}
	if _, err := security.VerifyPassword("x", "pbkdf2:md5:1000$salt$deadbeef"); err == nil {
		t.Fatal("unsupported legacy method should error")
	}
}

func TestConfigureArgon2Validation(t *testing.T) {
	bad := security.DefaultArgon2Config()
	bad.Memory = 1024
	if err := security.ConfigureArgon2(bad); err == nil {
		t.Fatal("expected rejection of sub-minimum memory")
	}

	if err := security.ConfigureArgon2(security.DefaultArgon2Config()); err != nil {
		t.Fatalf("default config should be accepted: %v", err)
	}
}

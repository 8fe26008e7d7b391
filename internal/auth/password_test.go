// Copyright (c) 2026 OM Talent
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"strings"
	"testing"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Errorf("hash has unexpected format: %s", hash)
	}

	// Same password must produce a different hash (random salt)
	hash2, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == hash2 {
		t.Error("two hashes of the same password are identical")
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	valid, err := CheckPassword("secret123", hash)
	if err != nil {
		t.Fatalf("CheckPassword failed: %v", err)
	}
	if !valid {
		t.Error("correct password rejected")
	}

	valid, err = CheckPassword("wrong-password", hash)
	if err != nil {
		t.Fatalf("CheckPassword failed: %v", err)
	}
	if valid {
		t.Error("wrong password accepted")
	}
}

func TestCheckPasswordInvalidHash(t *testing.T) {
	for _, hash := range []string{
		"",
		"not-a-hash",
		"$argon2id$v=19$m=19456",
		"$bcrypt$whatever",
	} {
		if valid, _ := CheckPassword("secret123", hash); valid {
			t.Errorf("password accepted against invalid hash %q", hash)
		}
	}
}

func TestNeedsRehash(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if NeedsRehash(hash) {
		t.Error("freshly created hash reported as needing rehash")
	}

	// Old parameters (64MB memory) should trigger a rehash
	old := "$argon2id$v=19$m=65536,t=1,p=4$c29tZXNhbHQ$RdescudvJCsgt3ub"
	if !NeedsRehash(old) {
		t.Error("hash with outdated parameters not flagged for rehash")
	}

	if !NeedsRehash("garbage") {
		t.Error("malformed hash not flagged for rehash")
	}
}

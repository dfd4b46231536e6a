// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"strings"
	"testing"
)

func TestGenerateAdminKey(t *testing.T) {
	tests := []struct {
		name         string
		electionName string
		salt         string
	}{
		{"standard", "general", "secret-salt"},
		{"empty election name", "", "salt"},
		{"empty salt", "general", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key1 := GenerateAdminKey(tt.electionName, tt.salt)
			key2 := GenerateAdminKey(tt.electionName, tt.salt)

			// Deterministic
			if key1 != key2 {
				t.Errorf("GenerateAdminKey() not deterministic: %s != %s", key1, key2)
			}
			if key1 == "" {
				t.Error("GenerateAdminKey() returned empty key")
			}
			// URL-safe, no padding
			if strings.ContainsAny(key1, "+/=") {
				t.Errorf("GenerateAdminKey() contains non URL-safe chars: %s", key1)
			}
		})
	}

	if GenerateAdminKey("a", "salt") == GenerateAdminKey("b", "salt") {
		t.Error("different elections produced the same key")
	}
	if GenerateAdminKey("a", "salt1") == GenerateAdminKey("a", "salt2") {
		t.Error("different salts produced the same key")
	}
}

func TestValidateAdminKey(t *testing.T) {
	salt := "test-salt"
	election := "general"
	validKey := GenerateAdminKey(election, salt)

	tests := []struct {
		name     string
		election string
		key      string
		salt     string
		wantErr  bool
	}{
		{"valid key", election, validKey, salt, false},
		{"wrong key", election, "invalid-key", salt, true},
		{"empty key", election, "", salt, true},
		{"wrong election", "other", validKey, salt, true},
		{"wrong salt", election, validKey, "wrong-salt", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAdminKey(tt.election, tt.key, tt.salt)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAdminKey() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && err != ErrInvalidAdminKey {
				t.Errorf("ValidateAdminKey() returned unexpected error: %v", err)
			}
		})
	}
}

func TestHashIP(t *testing.T) {
	h1 := HashIP("192.168.1.1", "salt")
	h2 := HashIP("192.168.1.1", "salt")
	if h1 != h2 {
		t.Error("HashIP() not deterministic")
	}
	if len(h1) != 16 {
		t.Errorf("HashIP() length = %d, want 16", len(h1))
	}
	if HashIP("192.168.1.2", "salt") == h1 {
		t.Error("different IPs produced the same hash")
	}
	if HashIP("192.168.1.1", "other") == h1 {
		t.Error("different salts produced the same hash")
	}
}

func TestHashVoterID(t *testing.T) {
	id := "1199880012345678"
	h := HashVoterID(id, "salt")
	if len(h) != 16 {
		t.Errorf("HashVoterID() length = %d, want 16", len(h))
	}
	if strings.Contains(h, id) {
		t.Error("HashVoterID() leaks the raw id")
	}
	// Domain separation from IP hashing
	if h == HashIP(id, "salt") {
		t.Error("HashVoterID() collides with HashIP() for the same input")
	}
}

func BenchmarkGenerateAdminKey(b *testing.B) {
	for i := 0; i < b.N; i++ {
		GenerateAdminKey("general", "secret-salt")
	}
}

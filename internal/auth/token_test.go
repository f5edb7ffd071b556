package auth

import (
	"strings"
	"testing"
)

func TestGenerateToken_Format(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if !strings.HasPrefix(tok.Plaintext, "rr_") {
		t.Errorf("Token should start with rr_, got: %s", tok.Plaintext)
	}
	if !ValidateTokenFormat(tok.Plaintext) {
		t.Errorf("Generated token should validate, got: %s", tok.Plaintext)
	}
	if len(tok.Prefix) != TokenPrefixLen {
		t.Errorf("Prefix should be %d chars, got: %d", TokenPrefixLen, len(tok.Prefix))
	}
	if tok.Digest != TokenDigest(tok.Plaintext) {
		t.Error("Digest should match TokenDigest of the plaintext")
	}
}

func TestGenerateToken_Unique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tok, err := GenerateToken()
		if err != nil {
			t.Fatalf("GenerateToken failed: %v", err)
		}
		if seen[tok.Plaintext] {
			t.Fatal("Generated duplicate token")
		}
		seen[tok.Plaintext] = true
	}
}

func TestParseToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{"valid", "rr_7a9b3c_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b", false},
		{"empty", "", true},
		{"missing prefix", "7a9b3c_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b", true},
		{"wrong scheme", "pk_7a9b3c_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b", true},
		{"short secret", "rr_7a9b3c_4f8d2e1b", true},
		{"uppercase hex", "rr_7A9B3C_4F8D2E1B9C7A5F3D2E1B9C7A5F3D2E1B", true},
		{"non-hex prefix", "rr_zzzzzz_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			parsed, err := ParseToken(tt.token)
			if tt.wantErr {
				if err != ErrInvalidTokenFormat {
					t.Errorf("expected ErrInvalidTokenFormat, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseToken failed: %v", err)
			}
			if parsed.Prefix != "7a9b3c" {
				t.Errorf("Prefix mismatch: got %s", parsed.Prefix)
			}
		})
	}
}

func TestParseToken_RoundTrip(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	parsed, err := ParseToken(tok.Plaintext)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if parsed.Prefix != tok.Prefix {
		t.Errorf("Prefix mismatch: got %s, want %s", parsed.Prefix, tok.Prefix)
	}
}

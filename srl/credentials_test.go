package srl

import "testing"

func TestKeyDeriver_EncryptDecryptRoundTrip(t *testing.T) {
	keys := NewKeyDeriver([]byte("master-key-for-testing-only"))
	cred, err := keys.Encrypt([]byte("api-token-xyz"))
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}

	plain, err := keys.decrypt(cred)
	if err != nil {
		t.Fatalf("decrypt() error: %v", err)
	}
	if string(plain) != "api-token-xyz" {
		t.Fatalf("decrypt() = %q, want api-token-xyz", plain)
	}
}

func TestKeyDeriver_DifferentMasterKeysDoNotCrossDecrypt(t *testing.T) {
	a := NewKeyDeriver([]byte("key-a"))
	b := NewKeyDeriver([]byte("key-b"))

	cred, err := a.Encrypt([]byte("secret"))
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}
	if _, err := b.decrypt(cred); err == nil {
		t.Fatalf("expected decryption under a different master key to fail")
	}
}

func TestWithDecryptedCredentials_NilCredentialInvokesWithNil(t *testing.T) {
	keys := NewKeyDeriver([]byte("k"))
	s := &SRL{}
	called := false
	err := WithDecryptedCredentials(keys, s, func(plain []byte) error {
		called = true
		if plain != nil {
			t.Fatalf("expected nil plaintext for an SRL with no credential")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithDecryptedCredentials() error: %v", err)
	}
	if !called {
		t.Fatalf("expected fn to be invoked")
	}
}

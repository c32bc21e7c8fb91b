package service

import "testing"

func TestHashVerify(t *testing.T) {
	h := NewHasher(10)

	hash, err := h.Hash("secret123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "secret123" {
		t.Fatal("hash must not equal plaintext")
	}

	if !h.Verify("secret123", hash) {
		t.Fatal("expected correct password to verify")
	}
	if h.Verify("wrong", hash) {
		t.Fatal("expected wrong password to fail verification")
	}
}

func TestHashNonDeterministic(t *testing.T) {
	h := NewHasher(10)

	first, err := h.Hash("secret123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	second, err := h.Hash("secret123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if first == second {
		t.Fatal("same input must produce different hashes across calls")
	}
}

func TestHasherClampsCost(t *testing.T) {
	h := NewHasher(-1)
	hash, err := h.Hash("pw")
	if err != nil {
		t.Fatalf("hash with clamped cost: %v", err)
	}
	if !h.Verify("pw", hash) {
		t.Fatal("expected verification to pass")
	}
}

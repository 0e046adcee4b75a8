package utils

import "testing"

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("secret-1")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "secret-1" {
		t.Fatal("hash equals plaintext")
	}
	if !CheckPassword(hash, "secret-1") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "secret-2") {
		t.Error("wrong password accepted")
	}
	if CheckPassword("not-a-hash", "secret-1") {
		t.Error("invalid hash accepted")
	}
}

package utils

import "testing"

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "Str0ng.pass", false},
		{"too short", "S1.a", true},
		{"no uppercase", "weak1pass.", true},
		{"no digit", "Weakpass!.", true},
		{"no special character", "Weakpass12", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePassword(tc.password)
			if (err != nil) != tc.wantErr {
				t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tc.password, err, tc.wantErr)
			}
		})
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hashed, err := HashPassword("Str0ng.pass")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hashed == "Str0ng.pass" {
		t.Fatal("password stored in plain text")
	}
	if err := CheckPassword(hashed, "Str0ng.pass"); err != nil {
		t.Errorf("CheckPassword rejected the correct password: %v", err)
	}
	if err := CheckPassword(hashed, "wrong"); err == nil {
		t.Error("CheckPassword accepted a wrong password")
	}
}

func TestGenerateRandomPassword(t *testing.T) {
	p := GenerateRandomPassword()
	if len(p) != 12 {
		t.Errorf("expected 12 characters, got %d", len(p))
	}
	if p == GenerateRandomPassword() && p == GenerateRandomPassword() {
		t.Error("generated passwords should not repeat")
	}
}

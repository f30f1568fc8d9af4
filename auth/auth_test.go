// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"testing"
)

func TestVerifyAdminPassword(t *testing.T) {
	tests := []struct {
		name       string
		provided   string
		configured string
		wantErr    bool
	}{
		{"exact match", "hunter2", "hunter2", false},
		{"mismatch", "hunter3", "hunter2", true},
		{"case sensitive", "Hunter2", "hunter2", true},
		{"empty provided", "", "hunter2", true},
		{"whitespace differs", "hunter2 ", "hunter2", true},
		{"unicode match", "功德密码", "功德密码", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyAdminPassword(tt.provided, tt.configured)
			if tt.wantErr {
				if !errors.Is(err, ErrBadPassword) {
					t.Errorf("expected ErrBadPassword, got %v", err)
				}
			} else if err != nil {
				t.Errorf("expected match, got %v", err)
			}
		})
	}
}

func TestVerifyAdminPassword_EmptyConfiguredNeverMatches(t *testing.T) {
	// A deployment without ADMIN_PASSWORD must fail closed, even against
	// an empty provided password.
	if err := VerifyAdminPassword("", ""); !errors.Is(err, ErrBadPassword) {
		t.Errorf("expected ErrBadPassword for blank secret, got %v", err)
	}
}

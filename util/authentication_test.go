package util

import (
	"testing"

	"github.com/sandertv/gophertunnel/minecraft/protocol/login"
)

func TestSecretAuthentication(t *testing.T) {
	tests := []struct {
		secret string
		token  string
		want   bool
	}{
		{secret: "", token: "", want: true},
		{secret: "", token: "anything", want: true},
		{secret: "hunter2", token: "hunter2", want: true},
		{secret: "hunter2", token: "hunter3", want: false},
		{secret: "hunter2", token: "", want: false},
	}
	for _, tt := range tests {
		a := NewSecretAuthentication(tt.secret)
		if got := a.Authenticate(login.IdentityData{DisplayName: "Steve"}, tt.token); got != tt.want {
			t.Errorf("Authenticate(%q) with secret %q = %v, want %v", tt.token, tt.secret, got, tt.want)
		}
	}
}

func TestAuthenticationFunc(t *testing.T) {
	var a Authentication = AuthenticationFunc(func(identityData login.IdentityData, _ string) bool {
		return identityData.XUID != ""
	})
	if a.Authenticate(login.IdentityData{}, "") {
		t.Fatal("player without xuid accepted")
	}
	if !a.Authenticate(login.IdentityData{XUID: "1"}, "") {
		t.Fatal("player with xuid rejected")
	}
}

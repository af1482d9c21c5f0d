package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func TestAccessToken_RoundTrip(t *testing.T) {
	token, err := GenerateAccessToken("user-1", []string{"admin"}, "secret")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := ParseAccessToken(token, "secret")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	user := claims.User()
	if user.ID != "user-1" || !user.IsAdmin() {
		t.Fatalf("unexpected user %+v", user)
	}
}

func TestParseAccessToken_WrongSecret(t *testing.T) {
	token, err := GenerateAccessToken("user-1", nil, "secret")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ParseAccessToken(token, "other"); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestParseAccessToken_RejectsNone(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Roles: []string{"admin"}})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseAccessToken(signed, "secret"); err == nil {
		t.Fatal("expected unsigned token to be rejected")
	}
}

func TestUserContext_Roles(t *testing.T) {
	u := &UserContext{ID: "u", Roles: []string{"editor"}}
	if !u.HasRole("editor") || u.IsAdmin() {
		t.Fatalf("unexpected roles for %+v", u)
	}
}

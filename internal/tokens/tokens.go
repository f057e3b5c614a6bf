package tokens

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims is the payload of an issued credential. The pv claim is the
// fencing counter: it must match the stored password version for the token
// to be accepted.
type AccessClaims struct {
	Username           string   `json:"username"`
	FullName           string   `json:"fullName"`
	Role               string   `json:"role"`
	IsAdmin            bool     `json:"isAdmin"`
	IsModerator        bool     `json:"isModerator"`
	MustChangePassword bool     `json:"mustChangePassword"`
	PasswordVersion    int      `json:"pv"`
	Perms              []string `json:"perms"`
	jwt.RegisteredClaims
}

func SignAccessToken(claims AccessClaims, secret []byte) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

func AccessClaimsFromToken(tokenStr string, secret []byte) (*AccessClaims, error) {
	var claims AccessClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return &claims, nil
}

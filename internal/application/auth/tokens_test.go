package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/pkg/jwt"
)

func TestIssue(t *testing.T) {
	issuer := NewTokenIssuer(JWTConfig{Secret: "s3cret", Issuer: "retail-ledger"})

	tok, err := issuer.Issue(TokenRequest{UserID: "u1", BranchID: "b1", Role: "cashier"})
	require.NoError(t, err)

	claims, err := jwt.Parse("s3cret", tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "b1", claims.BranchID)
	assert.Equal(t, "cashier", claims.Role)
	assert.Equal(t, "retail-ledger", claims.Issuer)
}

func TestIssue_AdminSinSucursal(t *testing.T) {
	issuer := NewTokenIssuer(JWTConfig{Secret: "s3cret"})
	_, err := issuer.Issue(TokenRequest{UserID: "root", Role: "admin"})
	assert.NoError(t, err)
}

func TestIssue_Rechazos(t *testing.T) {
	issuer := NewTokenIssuer(JWTConfig{Secret: "s3cret"})
	cases := map[string]TokenRequest{
		"sin usuario":  {Role: "admin"},
		"rol invalido": {UserID: "u1", BranchID: "b1", Role: "vendedor"},
		"sin sucursal": {UserID: "u1", Role: "cashier"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := issuer.Issue(in)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput), "got %v", err)
		})
	}

	_, err := NewTokenIssuer(JWTConfig{}).Issue(TokenRequest{UserID: "u1", Role: "admin"})
	assert.True(t, errors.Is(err, domain.ErrConfiguration))
}

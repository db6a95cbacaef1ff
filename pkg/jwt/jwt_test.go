package jwt_test

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-core/pkg/jwt"
)

const secret = "test-secret-key-for-unit-tests"

var id = jwt.Identity{
	UserID:    "00000000-0000-0000-0000-000000000001",
	CompanyID: "00000000-0000-0000-0000-000000000002",
	Role:      "bodeguero",
}

func TestGenerateAndParse(t *testing.T) {
	tok, err := jwt.Generate(secret, id, "erp-core-test", time.Hour)
	require.NoError(t, err)

	got, err := jwt.Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestParse_Expirado(t *testing.T) {
	tok, err := jwt.Generate(secret, id, "erp-core-test", -time.Minute)
	require.NoError(t, err)
	_, err = jwt.Parse(secret, tok)
	assert.Error(t, err, "token expirado debe retornar error")
}

func TestParse_SecretIncorrecto(t *testing.T) {
	tok, err := jwt.Generate(secret, id, "erp-core-test", time.Hour)
	require.NoError(t, err)
	_, err = jwt.Parse("otro-secret-completamente-distinto", tok)
	assert.Error(t, err)
}

func TestParse_AlgoritmoNoPermitido(t *testing.T) {
	claims := jwt.Claims{
		RegisteredClaims: gojwt.RegisteredClaims{ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           id.UserID,
		CompanyID:        id.CompanyID,
	}
	tok, err := gojwt.NewWithClaims(gojwt.SigningMethodHS512, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	_, err = jwt.Parse(secret, tok)
	assert.Error(t, err, "solo se acepta HS256")
}

func TestParse_SinCompania(t *testing.T) {
	tok, err := jwt.Generate(secret, jwt.Identity{UserID: id.UserID}, "", time.Hour)
	require.NoError(t, err)
	_, err = jwt.Parse(secret, tok)
	assert.Error(t, err)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := jwt.Generate("", id, "", time.Hour)
	assert.ErrorIs(t, err, jwt.ErrEmptySecret)
}

package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func Test_Token_Roundtrip(t *testing.T) {
	req := require.New(t)
	secret := []byte("secret")
	memberID := uuid.NewString()

	token, err := GenerateToken(secret, memberID, "member", time.Hour)
	req.NoError(err)

	claims, err := ValidateToken(secret, token)
	req.NoError(err)
	req.Equal(memberID, claims.MemberID)
	req.Equal("member", claims.Role)
}

func Test_Token_Wrong_Secret(t *testing.T) {
	req := require.New(t)

	token, err := GenerateToken([]byte("secret"), uuid.NewString(), "member", time.Hour)
	req.NoError(err)

	_, err = ValidateToken([]byte("other"), token)
	req.Error(err)
}

func Test_Token_Expired(t *testing.T) {
	req := require.New(t)
	secret := []byte("secret")

	token, err := GenerateToken(secret, uuid.NewString(), "member", -time.Minute)
	req.NoError(err)

	_, err = ValidateToken(secret, token)
	req.Error(err)
}

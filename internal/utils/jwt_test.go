// internal/utils/jwt_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compia/editora-backend/internal/config"
	"github.com/compia/editora-backend/internal/models"
)

func testJWTManager(secret string) *JWTManager {
	return NewJWTManager(config.JWTConfig{
		SecretKey:      secret,
		AccessTokenTTL: 1,
		Issuer:         "editora-test",
	})
}

func TestGenerateAndValidate(t *testing.T) {
	m := testJWTManager("secret-one")

	user := &models.User{
		BaseModel: models.BaseModel{ID: 7},
		Username:  "maria",
		Role:      models.RoleEditor,
	}

	token, err := m.Generate(user)
	require.NoError(t, err)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "maria", claims.Subject)
	assert.Equal(t, string(models.RoleEditor), claims.Role)
	assert.Equal(t, "editora-test", claims.Issuer)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := testJWTManager("secret-one").Generate(&models.User{
		BaseModel: models.BaseModel{ID: 1},
		Username:  "maria",
		Role:      models.RoleCliente,
	})
	require.NoError(t, err)

	_, err = testJWTManager("secret-two").Validate(token)
	assert.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := testJWTManager("secret-one").Validate("not-a-token")
	assert.Error(t, err)
}

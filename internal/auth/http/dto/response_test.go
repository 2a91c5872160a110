package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/svit-erp/portalgate/internal/auth/domain"
)

func TestNewLoginSuccess(t *testing.T) {
	identity := &authDomain.Identity{ID: "7", Username: "jdoe", Name: "Jane Doe", Role: authDomain.KindTeacher}

	body, err := json.Marshal(NewLoginSuccess(identity))
	require.NoError(t, err)

	assert.JSONEq(t,
		`{"success":true,"user":{"id":"7","username":"jdoe","role":"teacher","name":"Jane Doe"},"redirect":"/teacher"}`,
		string(body),
	)
}

func TestNewLoginFailure(t *testing.T) {
	body, err := json.Marshal(NewLoginFailure(LoginFailedMessage))
	require.NoError(t, err)

	assert.JSONEq(t, `{"success":false,"error":"Invalid username or password"}`, string(body))
}

func TestSessionResponse(t *testing.T) {
	body, err := json.Marshal(SessionResponse{Authenticated: false})
	require.NoError(t, err)
	assert.JSONEq(t, `{"authenticated":false}`, string(body))
}

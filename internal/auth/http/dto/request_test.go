package dto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoginRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		request LoginRequest
		wantErr bool
	}{
		{name: "valid", request: LoginRequest{Username: "jdoe", Password: "secret"}},
		{name: "unicode username", request: LoginRequest{Username: "žaneta", Password: "secret"}},
		{name: "missing username", request: LoginRequest{Password: "secret"}, wantErr: true},
		{name: "blank username", request: LoginRequest{Username: "   ", Password: "secret"}, wantErr: true},
		{name: "missing password", request: LoginRequest{Username: "jdoe"}, wantErr: true},
		{
			name:    "username too long",
			request: LoginRequest{Username: strings.Repeat("a", MaxUsernameLength+1), Password: "secret"},
			wantErr: true,
		},
		{
			name:    "password too long",
			request: LoginRequest{Username: "jdoe", Password: strings.Repeat("p", MaxPasswordLength+1)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

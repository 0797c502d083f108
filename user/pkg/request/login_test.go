package request

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoginMarshalRedactsPassword(t *testing.T) {
	expectedMap := map[string]string{"email": "lan@example.com", "password": "***"}
	expected, _ := json.Marshal(expectedMap)
	loginReq := Login{Email: "lan@example.com", Password: "sup3rsecret"}

	actual, _ := json.Marshal(loginReq)

	assert.EqualValues(t, expected, actual)
	assert.EqualValues(t, "sup3rsecret", loginReq.Password)
}

func TestForgotPasswordMarshalRedactsNewPassword(t *testing.T) {
	expectedMap := map[string]string{"email": "lan@example.com", "newPassword": "***"}
	expected, _ := json.Marshal(expectedMap)
	forgotReq := ForgotPassword{Email: "lan@example.com", NewPassword: "brandn3wsecret"}

	actual, _ := json.Marshal(forgotReq)

	assert.EqualValues(t, expected, actual)
	assert.EqualValues(t, "brandn3wsecret", forgotReq.NewPassword)
}

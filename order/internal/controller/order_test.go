package controller

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shopique/storefront/order/pkg/response"
)

func TestStatusForCode(t *testing.T) {
	tests := []struct {
		code response.Code
		want int
	}{
		{response.CodeOK, http.StatusCreated},
		{response.CodeMissingUser, http.StatusUnauthorized},
		{response.CodeEmptySelection, http.StatusBadRequest},
		{response.CodeNoResolvableItems, http.StatusBadRequest},
		{response.CodeMissingProductReference, http.StatusBadRequest},
		{response.CodeProductNotFound, http.StatusNotFound},
		{response.CodeInsufficientStock, http.StatusConflict},
		{response.CodeSystemError, http.StatusInternalServerError},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, statusForCode(test.code), string(test.code))
	}
}

func TestStatusWord(t *testing.T) {
	assert.Equal(t, "success", statusWord(response.CodeOK))
	assert.Equal(t, "failed", statusWord(response.CodeInsufficientStock))
}

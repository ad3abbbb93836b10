package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{"NOT_FOUND", http.StatusNotFound},
		{"CONCURRENCY_CONFLICT", http.StatusConflict},
		{"NO_RATE_FOUND", http.StatusUnprocessableEntity},
		{"INVALID_HIERARCHY", http.StatusUnprocessableEntity},
		{"INVALID_TRANSITION", http.StatusUnprocessableEntity},
		{"INVALID_CARRIER", http.StatusBadRequest},
		{"INVALID_AMOUNT", http.StatusBadRequest},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, GetHTTPStatus(tt.code))
		})
	}
}

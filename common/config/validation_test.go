package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateGinMode(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"empty is valid", "", false},
		{"debug is valid", "debug", false},
		{"release is valid", "release", false},
		{"test is valid", "test", false},
		{"invalid mode", "production", true},
		{"case sensitive", "DEBUG", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGinMode(tt.value)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidateLogRotationInterval(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"hourly is valid", "hourly", false},
		{"daily is valid", "daily", false},
		{"weekly is valid", "weekly", false},
		{"empty is invalid", "", true},
		{"unsupported value", "monthly", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLogRotationInterval(tt.value)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidatePositive(t *testing.T) {
	require.NoError(t, ValidatePositive("X", 1))
	require.Error(t, ValidatePositive("X", 0))
	require.Error(t, ValidatePositive("X", -1))
}

func TestValidateNonNegative(t *testing.T) {
	require.NoError(t, ValidateNonNegative("X", 0))
	require.NoError(t, ValidateNonNegative("X", 5))
	require.Error(t, ValidateNonNegative("X", -1))
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Variable: "GIN_MODE", Value: "bogus", Constraint: "must be valid", AllowedVals: []string{"a", "b"}}
	require.Contains(t, err.Error(), "GIN_MODE")
	require.Contains(t, err.Error(), "bogus")
	require.Contains(t, err.Error(), "[a b]")
}

package exitcode

import (
	"testing"
)

func TestExitCodeConstants(t *testing.T) {
	tests := map[string]struct {
		got, want int
	}{
		"Success":         {Success, 0},
		"GeneralError":    {GeneralError, 1},
		"ConfigError":     {ConfigError, 2},
		"ValidationError": {ValidationError, 3},
		"FileSystemError": {FileSystemError, 4},
		"PermissionError": {PermissionError, 6},
		"Interrupted":     {Interrupted, 130},
	}
	for name, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, expected %v", name, tt.got, tt.want)
		}
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{Success, "Success"},
		{GeneralError, "General error"},
		{ConfigError, "Configuration error"},
		{ValidationError, "Validation error"},
		{FileSystemError, "File system error"},
		{PermissionError, "Permission error"},
		{Interrupted, "Interrupted"},
		{5, "Unknown error"},
		{-1, "Unknown error"},
	}

	for _, tt := range tests {
		if result := String(tt.code); result != tt.expected {
			t.Errorf("String(%d) = %q, expected %q", tt.code, result, tt.expected)
		}
	}
}

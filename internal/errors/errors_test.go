package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNewFromRegistry(t *testing.T) {
	err := New("P003")
	if err.Category != CategoryUsage {
		t.Errorf("Category = %q, want %q", err.Category, CategoryUsage)
	}
	if !strings.Contains(err.Suggestion, "_default.page.server.go") {
		t.Errorf("Suggestion = %q, want guidance to create a default server file", err.Suggestion)
	}
	if got := err.Error(); !strings.HasPrefix(got, "P003: ") {
		t.Errorf("Error() = %q, want P003 prefix", got)
	}
}

func TestNewUnknownCode(t *testing.T) {
	err := New("P999")
	if err.Message != "Unknown error" {
		t.Errorf("Message = %q, want %q", err.Message, "Unknown error")
	}
	if err.Code != "P999" {
		t.Errorf("Code = %q, want %q", err.Code, "P999")
	}
}

func TestUsageClassification(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		isUsage bool
		isFetch bool
	}{
		{"usage error", Usage("bad hook result"), true, false},
		{"transport error", Transport("wrong content-type"), false, true},
		{"user code error", UserCode(stderrors.New("boom")), false, false},
		{"wrapped usage error", fmt.Errorf("outer: %w", Usage("inner")), true, false},
		{"plain error", stderrors.New("plain"), false, false},
		{"nil", nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUsage(tt.err); got != tt.isUsage {
				t.Errorf("IsUsage() = %v, want %v", got, tt.isUsage)
			}
			if got := IsFetch(tt.err); got != tt.isFetch {
				t.Errorf("IsFetch() = %v, want %v", got, tt.isFetch)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	inner := stderrors.New("inner")
	err := Usage("outer").Wrap(inner)
	if !stderrors.Is(err, inner) {
		t.Error("errors.Is(err, inner) = false, want true")
	}
}

func TestUserCodeNil(t *testing.T) {
	if UserCode(nil) != nil {
		t.Error("UserCode(nil) should be nil")
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("P006")
	out := err.Format()
	if !strings.Contains(out, "P006") {
		t.Errorf("Format() missing code: %q", out)
	}
	if !strings.Contains(out, "Fix: ") {
		t.Errorf("Format() missing suggestion: %q", out)
	}
	if !strings.Contains(out, "https://pagekit.dev/docs/errors/P006") {
		t.Errorf("Format() missing doc URL: %q", out)
	}
}

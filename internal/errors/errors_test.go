package errors

import (
	goerrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryString(t *testing.T) {
	tests := map[string]struct {
		category Category
		want     string
	}{
		"argument":      {category: Argument, want: "Argument Error"},
		"configuration": {category: Configuration, want: "Configuration Error"},
		"prerequisite":  {category: Prerequisite, want: "Prerequisite Error"},
		"runtime":       {category: Runtime, want: "Runtime Error"},
		"unknown":       {category: Category(99), want: "Error"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.category.String())
		})
	}
}

func TestWrap(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, Wrap(nil, Runtime))
		assert.Nil(t, WrapWithMessage(nil, Runtime, "context"))
	})

	t.Run("wrapped error stays matchable", func(t *testing.T) {
		sentinel := goerrors.New("root cause")
		err := Wrap(fmt.Errorf("while doing x: %w", sentinel), Runtime)
		assert.True(t, goerrors.Is(err, sentinel))
	})

	t.Run("wrap with message prefixes and preserves", func(t *testing.T) {
		inner := goerrors.New("disk full")
		err := WrapWithMessage(inner, Runtime, "writing record")
		assert.Equal(t, "writing record: disk full", err.Error())
		assert.True(t, goerrors.Is(err, inner))
	})
}

func TestAsCLIError(t *testing.T) {
	t.Run("finds a CLIError through wrapping", func(t *testing.T) {
		inner := New(Prerequisite, "missing dir", "create it")
		wrapped := fmt.Errorf("outer: %w", inner)

		got := AsCLIError(wrapped)
		require.NotNil(t, got)
		assert.Equal(t, Prerequisite, got.Category)
		assert.Equal(t, []string{"create it"}, got.Remediation)
	})

	t.Run("nil for plain errors", func(t *testing.T) {
		assert.Nil(t, AsCLIError(goerrors.New("plain")))
	})
}

func TestNewf(t *testing.T) {
	err := Newf(Argument, "unknown module %q", "tasks")
	assert.Equal(t, `unknown module "tasks"`, err.Error())
	assert.Equal(t, Argument, err.Category)
	assert.Empty(t, err.Remediation)
}

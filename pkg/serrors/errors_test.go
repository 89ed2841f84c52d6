package serrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBaseError_IsMatchesByCode(t *testing.T) {
	sentinel := NotFound("LEVEL_NOT_FOUND", "level not found")
	wrapped := sentinel.WithCause(errors.New("no rows in result set"))

	require.ErrorIs(t, wrapped, sentinel)
	require.NotErrorIs(t, wrapped, NotFound("OTHER", "other"))
}

func TestBaseError_CauseIsUnwrappedButNotShown(t *testing.T) {
	cause := errors.New("connect: connection refused")
	err := Storage("LEVELS_STORAGE", "storage failure").WithCause(cause)

	require.ErrorIs(t, err, cause)
	require.Equal(t, "storage failure", err.Message)
}

func TestKindOf(t *testing.T) {
	require.Equal(t, KindValidation, KindOf(Validation("BAD_FILTER", "bad filter")))
	require.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	require.Equal(t, KindUnknown, KindOf(nil))
}

package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewError_Defaults_ErrorSeverityNoRetry(t *testing.T) {
	err := NewError(CategoryStructure, "duplicate chapter number").Build()

	require.Equal(t, CategoryStructure, err.Category())
	require.Equal(t, SeverityError, err.Severity())
	require.Equal(t, RetryNever, err.RetryStrategy())
	require.False(t, err.CanRetry())
}

func TestBuilder_FatalWithContext_CarriesAllFields(t *testing.T) {
	err := NewError(CategoryStructure, "duplicate chapter number").
		Fatal().
		WithContext("part", 1).
		WithContext("chapter", 5).
		Build()

	require.True(t, err.IsFatal())
	part, ok := err.Context().Get("part")
	require.True(t, ok)
	require.Equal(t, 1, part)
}

func TestWrapError_Unwrap_ReturnsCause(t *testing.T) {
	cause := fmt.Errorf("exit status 1")
	err := WrapError(cause, CategoryRender, "pdf renderer failed").Retryable().Build()

	require.True(t, errors.Is(err, cause))
	require.True(t, err.CanRetry())
	require.Contains(t, err.Error(), "pdf renderer failed")
	require.Contains(t, err.Error(), "exit status 1")
}

func TestHasCategory_UnclassifiedError_False(t *testing.T) {
	require.False(t, HasCategory(fmt.Errorf("plain"), CategoryRender))
	require.Equal(t, CategoryInternal, GetCategory(fmt.Errorf("plain")))
}

func TestCLIErrorAdapter_ExitCodes(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, nil)

	require.Equal(t, ExitOK, adapter.ExitCodeFor(nil))
	require.Equal(t, ExitDocumentError, adapter.ExitCodeFor(fmt.Errorf("plain")))

	structural := NewError(CategoryStructure, "duplicate").Fatal().Build()
	require.Equal(t, ExitDocumentError, adapter.ExitCodeFor(structural))

	render := NewError(CategoryRender, "pdf failed after retry").Build()
	require.Equal(t, ExitRenderError, adapter.ExitCodeFor(render))
}

func TestErrorContext_Merge_OtherTakesPrecedence(t *testing.T) {
	base := ErrorContext{"path": "a.md", "part": 1}
	merged := base.Merge(ErrorContext{"path": "b.md"})

	path, _ := merged.GetString("path")
	require.Equal(t, "b.md", path)
	_, ok := merged.Get("part")
	require.True(t, ok)
}

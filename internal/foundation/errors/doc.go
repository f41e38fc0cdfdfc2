// Package errors provides foundational, type-safe error primitives used across BookBuilder.
//
// This package contains classified error types and helpers for robust error handling,
// including a fluent builder API for constructing ClassifiedError values with context.
//
// Key features:
//   - ErrorCategory: Broad error classification (frontmatter, structure, render, etc.)
//   - ErrorSeverity: Impact level (fatal, error, warning, info)
//   - RetryStrategy: Retry behavior (never, once, user action)
//   - ClassifiedError: Structured error with category, severity, and context
//   - ErrorBuilder: Fluent API for creating classified errors
//   - CLI adapter for exit-code mapping and error presentation
//
// Example usage:
//
//	err := errors.NewError(errors.CategoryStructure, "duplicate chapter number").
//		Fatal().
//		WithContext("part", 1).
//		WithContext("chapter", 5).
//		Build()
package errors

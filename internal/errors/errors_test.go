package errors

import (
	"errors"
	"os"
	"testing"
)

func TestDataSourceError_MissingColumn(t *testing.T) {
	err := NewMissingColumnError("jobs.csv", "sector")

	expectedMsg := "data source 'jobs.csv' is missing required column 'sector'"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}

	if !errors.Is(err, ErrDataSource) {
		t.Error("Expected error to match ErrDataSource sentinel")
	}
	if errors.Is(err, ErrEmptyQuery) {
		t.Error("Error should not match ErrEmptyQuery")
	}
	if len(err.StackTrace()) == 0 {
		t.Error("Expected a captured stack trace")
	}
}

func TestDataSourceError_Unreadable(t *testing.T) {
	err := NewDataSourceError("/data/missing.csv", os.ErrNotExist)

	expectedMsg := "data source '/data/missing.csv' is unreadable: file does not exist"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}

	if !errors.Is(err, ErrDataSource) {
		t.Error("Expected error to match ErrDataSource sentinel")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("Expected error to unwrap to os.ErrNotExist")
	}
}

func TestEmptyQueryError(t *testing.T) {
	err := NewEmptyQueryError("")

	expectedMsg := "empty query: at least one skill or interest is required"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}

	err2 := NewEmptyQueryError("skills are blank")
	if err2.Error() != "empty query: skills are blank" {
		t.Errorf("Unexpected error message '%s'", err2.Error())
	}

	if !errors.Is(err, ErrEmptyQuery) {
		t.Error("Expected error to match ErrEmptyQuery sentinel")
	}
}

func TestJobNotFoundError(t *testing.T) {
	jobID := "job-456"
	err := NewJobNotFoundError(jobID)

	expectedMsg := "job with ID 'job-456' not found"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}

	if !errors.Is(err, ErrJobNotFound) {
		t.Error("Expected error to match ErrJobNotFound sentinel")
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("top_k", "must not be negative")

	expectedMsg := "validation error for field 'top_k': must not be negative"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}

	err2 := NewValidationError("", "must not be negative")
	if err2.Error() != "validation error: must not be negative" {
		t.Errorf("Unexpected error message '%s'", err2.Error())
	}

	if !errors.Is(err, ErrInvalidInput) || !errors.Is(err2, ErrInvalidInput) {
		t.Error("Expected error to match ErrInvalidInput sentinel")
	}
}

func TestErrorChaining(t *testing.T) {
	originalErr := NewMissingColumnError("jobs.csv", "title")
	wrappedErr := errors.Join(originalErr, errors.New("additional context"))

	if !errors.Is(wrappedErr, ErrDataSource) {
		t.Error("Expected wrapped error to still match ErrDataSource sentinel")
	}

	var dsErr *DataSourceError
	if !errors.As(wrappedErr, &dsErr) {
		t.Fatal("Expected to be able to unwrap to DataSourceError")
	}

	if dsErr.Column != "title" {
		t.Errorf("Expected column 'title', got '%s'", dsErr.Column)
	}
}

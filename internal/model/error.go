package model

import "fmt"

// UnrecognizedStatusError is returned when a test summary carries a status
// value outside the known enumeration.
type UnrecognizedStatusError struct {
	Value string
}

func (e UnrecognizedStatusError) Error() string {
	return fmt.Sprintf("unrecognized test status %q", e.Value)
}

// InvalidTestCaseError is returned when a test case cannot be converted.
// No partial result is produced for it.
type InvalidTestCaseError struct {
	TestName string
	Err      error
}

func (e InvalidTestCaseError) Error() string {
	return fmt.Sprintf("invalid test case %q: %v", e.TestName, e.Err)
}

func (e InvalidTestCaseError) Unwrap() error {
	return e.Err
}

type NotFoundError struct{}

func (e NotFoundError) Error() string {
	return "not found"
}

type MalformedRequestError struct {
	Param string
}

func (e MalformedRequestError) Error() string {
	return "malformed request param: " + e.Param
}

package model

import (
	"fmt"
	"io"
	"os"
	"time"
)

// ActivityType is the raw type string Xcode records for an activity
// in a result bundle.
type ActivityType string

const (
	ActivityTypeUserCreated         ActivityType = "com.apple.dt.xctest.activity-type.userCreated"
	ActivityTypeInternal            ActivityType = "com.apple.dt.xctest.activity-type.internal"
	ActivityTypeAttachmentContainer ActivityType = "com.apple.dt.xctest.activity-type.attachmentContainer"
	ActivityTypeAssertionFailure    ActivityType = "com.apple.dt.xctest.activity-type.testAssertionFailure"
)

// Raw status values recorded in the test summary.
const (
	TestStatusSuccess         = "success"
	TestStatusFailure         = "failure"
	TestStatusSkipped         = "skipped"
	TestStatusExpectedFailure = "expectedFailure"
)

// Activity is one node of the execution trace recorded for a test case.
// Parents own their subactivities, the tree contains no cycles.
type Activity struct {
	Title         string               `json:"title"`
	Type          ActivityType         `json:"activityType"`
	Start         *time.Time           `json:"start,omitempty"`
	Finish        *time.Time           `json:"finish,omitempty"`
	Subactivities []Activity           `json:"subactivities,omitempty"`
	Attachments   []ActivityAttachment `json:"attachments,omitempty"`
}

// ActivityAttachment is an attachment recorded on a single activity.
type ActivityAttachment struct {
	Name string `json:"name"`
}

// RunDestination describes the device a test case ran on.
type RunDestination struct {
	Name              string `json:"name"`
	Identifier        string `json:"identifier"`
	MachineIdentifier string `json:"machineIdentifier"`
}

// TestSummary is the per-test metadata of the result bundle.
type TestSummary struct {
	// Identifier is the full test identifier, e.g. "LoginTests/testLogin()".
	Identifier string `json:"identifier"`
	// Name is the display name of the test.
	Name string `json:"name"`
	// Path contains the bundle path segments leading to the test,
	// starting with the test bundle name.
	Path []string `json:"path,omitempty"`
	// Duration is the declared test duration in seconds.
	Duration float64 `json:"duration"`
	// Status is the raw status value recorded by the test runner.
	Status string `json:"status"`
}

// TestCase is one recorded test case execution, the input of a conversion.
type TestCase struct {
	Summary     TestSummary    `json:"summary"`
	Destination RunDestination `json:"destination"`
	// RunStart is the start time recorded for the whole test run. It is
	// used as a fallback when no activity carries timing information.
	RunStart    time.Time       `json:"runStart"`
	Activities  []Activity      `json:"activities,omitempty"`
	Attachments []AttachmentRef `json:"attachments,omitempty"`
}

// LazyAttachment is an unopened handle to attachment bytes. The conversion
// never reads attachment content, it only threads handles through.
type LazyAttachment interface {
	Name() string
	Open() (io.ReadCloser, error)
}

// AttachmentRef points at attachment bytes inside a result bundle without
// reading them.
type AttachmentRef struct {
	FileName string `json:"fileName"`
	Path     string `json:"path,omitempty"`
}

var _ LazyAttachment = AttachmentRef{}

func (r AttachmentRef) Name() string {
	return r.FileName
}

func (r AttachmentRef) Open() (io.ReadCloser, error) {
	if r.Path == "" {
		return nil, fmt.Errorf("attachment %q has no resolved path", r.FileName)
	}

	return os.Open(r.Path)
}

package model

// ConvertedReport is the response returned when a test case is ingested.
// Attachments carries the test case's own attachment handles, which live at
// a different granularity than the per-step attachments embedded in the
// report's step tree.
type ConvertedReport struct {
	Report      TestResult      `json:"report"`
	Attachments []AttachmentRef `json:"attachments,omitempty"`
}

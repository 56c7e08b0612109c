package convert

import (
	"github.com/google/uuid"
	"github.com/xcreports/xcallure/internal/model"
)

// Convert builds the normalized report record for one test case. It is a
// pure synchronous computation over the immutable input tree: it either
// fully succeeds or fails with an InvalidTestCaseError, no partial result
// is returned.
//
// The second return value is the test case's own attachment list, passed
// through as unopened handles. It is distinct from the per-step attachments
// embedded in the report's step tree.
func Convert(tc model.TestCase, historyID HistoryIDProvider, parameters ParametersProvider) (model.TestResult, []model.LazyAttachment, error) {
	id := uuid.NewString()

	steps := []model.StepResult{}

	for _, a := range tc.Activities {
		if s := buildStep(a); s != nil {
			steps = append(steps, *s)
		}
	}

	start := minStart(steps)
	if start == 0 {
		start = tc.RunStart.UnixMilli()
	}

	stop := maxStop(steps)
	if stop == 0 {
		stop = start + int64(tc.Summary.Duration*1000)
	}

	params := parameters.MakeParameters(tc)

	// The test's own status details come from the first failed top-level
	// step, substeps are not searched.
	var details *model.StatusDetails

	for i := range steps {
		if steps[i].Status == model.StatusFailed {
			details = steps[i].StatusDetails
			break
		}
	}

	history := historyID.MakeHistoryID(tc)

	ann := newAnnotations(tc)
	ann.collect(tc.Activities)

	status, err := mapStatus(tc.Summary.Status)
	if err != nil {
		return model.TestResult{}, nil, model.InvalidTestCaseError{TestName: tc.Summary.Name, Err: err}
	}

	name := tc.Summary.Name
	if ann.name != "" {
		name = ann.name
	}

	result := model.TestResult{
		UUID:          id,
		HistoryID:     history,
		TestCaseID:    ann.testCaseID,
		FullName:      tc.Summary.Identifier,
		Name:          name,
		Description:   ann.description,
		Status:        status,
		StatusDetails: details,
		Labels:        ann.labelList(),
		Links:         ann.links,
		Steps:         steps,
		Parameters:    params,
		Start:         start,
		Stop:          stop,
	}

	attachments := make([]model.LazyAttachment, 0, len(tc.Attachments))

	for _, ref := range tc.Attachments {
		attachments = append(attachments, ref)
	}

	return result, attachments, nil
}

func mapStatus(raw string) (model.Status, error) {
	switch raw {
	case model.TestStatusSuccess:
		return model.StatusPassed, nil
	case model.TestStatusFailure:
		return model.StatusFailed, nil
	case model.TestStatusSkipped:
		return model.StatusSkipped, nil
	case model.TestStatusExpectedFailure:
		return model.StatusPassed, nil
	}

	return "", model.UnrecognizedStatusError{Value: raw}
}

func minStart(steps []model.StepResult) int64 {
	var min int64

	for _, s := range steps {
		if s.Start > 0 && (min == 0 || s.Start < min) {
			min = s.Start
		}
	}

	return min
}

func maxStop(steps []model.StepResult) int64 {
	var max int64

	for _, s := range steps {
		if s.Stop > max {
			max = s.Stop
		}
	}

	return max
}

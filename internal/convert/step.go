package convert

import (
	"time"

	"github.com/xcreports/xcallure/internal/model"
)

// buildStep turns one recorded activity into a report step. It returns nil
// for annotation activities, which are pruned from the step tree.
//
// Pruning is not recursive rescue: when an annotation activity carries real
// subactivities those are dropped with it. This is a known limitation kept
// on purpose, promoting orphaned substeps would change the tree shape in
// ways the recorded data gives no guidance on.
func buildStep(a model.Activity) *model.StepResult {
	if isAnnotation(a.Title) {
		return nil
	}

	steps := []model.StepResult{}

	for _, sub := range a.Subactivities {
		if s := buildStep(sub); s != nil {
			steps = append(steps, *s)
		}
	}

	// The first failed substep decides the status, its details are
	// inherited verbatim.
	status := model.StatusPassed
	var details *model.StatusDetails

	for i := range steps {
		if steps[i].Status == model.StatusFailed {
			status = steps[i].Status
			details = steps[i].StatusDetails
			break
		}
	}

	if status != model.StatusFailed && a.Type == model.ActivityTypeAssertionFailure {
		status = model.StatusFailed
		// No stack information is available at this layer, the trace
		// stays empty.
		details = &model.StatusDetails{Message: a.Title}
	}

	attachments := make([]model.Attachment, 0, len(a.Attachments))

	for _, att := range a.Attachments {
		// The type is left empty, consumers infer it e.g. from the
		// file extension.
		attachments = append(attachments, model.Attachment{
			Name:   att.Name,
			Source: att.Name,
		})
	}

	return &model.StepResult{
		Name:          a.Title,
		Status:        status,
		StatusDetails: details,
		Steps:         steps,
		Attachments:   attachments,
		Start:         epochMillis(a.Start),
		Stop:          stopMillis(a),
	}
}

func epochMillis(t *time.Time) int64 {
	if t == nil {
		return 0
	}

	return t.UnixMilli()
}

func stopMillis(a model.Activity) int64 {
	if a.Finish != nil {
		return a.Finish.UnixMilli()
	}

	return epochMillis(a.Start)
}

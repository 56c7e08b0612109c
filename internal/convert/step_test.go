package convert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xcreports/xcallure/internal/model"
)

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestBuildStepKeepsTreeShapeAndOrder(t *testing.T) {
	t.Parallel()

	root := model.Activity{
		Title: "root",
		Subactivities: []model.Activity{
			{Title: "first", Subactivities: []model.Activity{
				{Title: "first.first"},
			}},
			{Title: "second"},
		},
	}

	step := buildStep(root)

	require.NotNil(t, step)
	assert.Equal(t, "root", step.Name)
	require.Len(t, step.Steps, 2)
	assert.Equal(t, "first", step.Steps[0].Name)
	assert.Equal(t, "second", step.Steps[1].Name)
	require.Len(t, step.Steps[0].Steps, 1)
	assert.Equal(t, "first.first", step.Steps[0].Steps[0].Name)
}

func TestBuildStepPrunesAnnotationActivities(t *testing.T) {
	t.Parallel()

	root := model.Activity{
		Title: "root",
		Subactivities: []model.Activity{
			{Title: "allure.label.owner: bob"},
			{Title: "real step"},
		},
	}

	step := buildStep(root)

	require.NotNil(t, step)
	require.Len(t, step.Steps, 1)
	assert.Equal(t, "real step", step.Steps[0].Name)
}

func TestBuildStepAnnotationActivityReturnsNoStep(t *testing.T) {
	t.Parallel()

	step := buildStep(model.Activity{Title: "allure.id: 42"})

	assert.Nil(t, step)
}

// Annotation activities are dropped together with their children, there is
// no rescue of nested real substeps.
func TestBuildStepAnnotationChildrenAreLost(t *testing.T) {
	t.Parallel()

	root := model.Activity{
		Title: "root",
		Subactivities: []model.Activity{
			{Title: "allure.label.owner: bob", Subactivities: []model.Activity{
				{Title: "orphaned step"},
			}},
		},
	}

	step := buildStep(root)

	require.NotNil(t, step)
	assert.Empty(t, step.Steps)
}

func TestBuildStepFirstFailedSubstepWins(t *testing.T) {
	t.Parallel()

	root := model.Activity{
		Title: "root",
		Subactivities: []model.Activity{
			{Title: "ok before"},
			{Title: "assertion failed: expected 1", Type: model.ActivityTypeAssertionFailure},
			{Title: "ok after"},
			{Title: "assertion failed: expected 2", Type: model.ActivityTypeAssertionFailure},
		},
	}

	step := buildStep(root)

	require.NotNil(t, step)
	assert.Equal(t, model.StatusFailed, step.Status)
	require.NotNil(t, step.StatusDetails)
	assert.Equal(t, "assertion failed: expected 1", step.StatusDetails.Message)
	assert.Same(t, step.Steps[1].StatusDetails, step.StatusDetails, "the failed substep's details are inherited, not copied")
}

func TestBuildStepAllPassedChildrenPass(t *testing.T) {
	t.Parallel()

	root := model.Activity{
		Title: "root",
		Type:  model.ActivityTypeUserCreated,
		Subactivities: []model.Activity{
			{Title: "one"},
			{Title: "two"},
		},
	}

	step := buildStep(root)

	require.NotNil(t, step)
	assert.Equal(t, model.StatusPassed, step.Status)
	assert.Nil(t, step.StatusDetails)
}

func TestBuildStepFailureLeafSynthesizesDetails(t *testing.T) {
	t.Parallel()

	step := buildStep(model.Activity{
		Title: "XCTAssertEqual failed",
		Type:  model.ActivityTypeAssertionFailure,
	})

	require.NotNil(t, step)
	assert.Equal(t, model.StatusFailed, step.Status)
	require.NotNil(t, step.StatusDetails)
	assert.Equal(t, "XCTAssertEqual failed", step.StatusDetails.Message)
	assert.Equal(t, "", step.StatusDetails.Trace)
	assert.False(t, step.StatusDetails.Known)
	assert.False(t, step.StatusDetails.Muted)
	assert.False(t, step.StatusDetails.Flaky)
}

func TestBuildStepAttachments(t *testing.T) {
	t.Parallel()

	step := buildStep(model.Activity{
		Title: "screenshot step",
		Attachments: []model.ActivityAttachment{
			{Name: "Screenshot_1.png"},
		},
	})

	require.NotNil(t, step)
	require.Len(t, step.Attachments, 1)
	assert.Equal(t, "Screenshot_1.png", step.Attachments[0].Name)
	assert.Equal(t, "Screenshot_1.png", step.Attachments[0].Source)
	assert.Equal(t, "", step.Attachments[0].Type)
}

func TestBuildStepToleratesDeepNesting(t *testing.T) {
	t.Parallel()

	const depth = 500

	leaf := model.Activity{Title: "leaf", Type: model.ActivityTypeAssertionFailure}

	root := leaf
	for i := 0; i < depth; i++ {
		root = model.Activity{Title: "level", Subactivities: []model.Activity{root}}
	}

	step := buildStep(root)

	require.NotNil(t, step)
	assert.Equal(t, model.StatusFailed, step.Status, "failure propagates through every level")
}

func TestBuildStepTiming(t *testing.T) {
	t.Parallel()

	start := time.Date(2023, 4, 1, 12, 0, 0, 0, time.UTC)
	finish := start.Add(1500 * time.Millisecond)

	tests := []struct {
		name      string
		activity  model.Activity
		wantStart int64
		wantStop  int64
	}{
		{
			name:      "start and finish",
			activity:  model.Activity{Title: "s", Start: timePtr(start), Finish: timePtr(finish)},
			wantStart: start.UnixMilli(),
			wantStop:  finish.UnixMilli(),
		},
		{
			name:      "missing finish falls back to start",
			activity:  model.Activity{Title: "s", Start: timePtr(start)},
			wantStart: start.UnixMilli(),
			wantStop:  start.UnixMilli(),
		},
		{
			name:      "no timing at all",
			activity:  model.Activity{Title: "s"},
			wantStart: 0,
			wantStop:  0,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			step := buildStep(tt.activity)

			require.NotNil(t, step)
			assert.Equal(t, tt.wantStart, step.Start)
			assert.Equal(t, tt.wantStop, step.Stop)
		})
	}
}

package convert

import (
	"crypto/md5"
	"encoding/hex"

	"github.com/xcreports/xcallure/internal/model"
)

// HistoryIDProvider computes a stable fingerprint of a test's identity,
// used to correlate the same logical test across runs.
type HistoryIDProvider interface {
	MakeHistoryID(tc model.TestCase) string
}

// ParametersProvider extracts named test parameters from test case metadata.
type ParametersProvider interface {
	MakeParameters(tc model.TestCase) []model.Parameter
}

// FullNameHistoryID fingerprints a test by the md5 of its full identifier,
// the convention allure tooling uses for cross-run correlation.
type FullNameHistoryID struct{}

func (FullNameHistoryID) MakeHistoryID(tc model.TestCase) string {
	sum := md5.Sum([]byte(tc.Summary.Identifier))
	return hex.EncodeToString(sum[:])
}

// DestinationParameters reports the run destination device as a test
// parameter so runs on different devices stay distinguishable.
type DestinationParameters struct{}

func (DestinationParameters) MakeParameters(tc model.TestCase) []model.Parameter {
	if tc.Destination.Name == "" {
		return nil
	}

	return []model.Parameter{{Name: "device", Value: tc.Destination.Name}}
}

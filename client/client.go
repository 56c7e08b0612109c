// Package client is a small HTTP client for the xcallure service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/xcreports/xcallure/internal/model"
)

// Reexport to allow users to reference these types.

type TestCase = model.TestCase
type TestResult = model.TestResult
type ConvertedReport = model.ConvertedReport

type Client struct {
	http *http.Client
	host string
}

type RequestError struct {
	ResponseCode int
}

func (e RequestError) Error() string {
	return fmt.Sprintf("request failed with status %d", e.ResponseCode)
}

func New(host string, c *http.Client) Client {
	return Client{http: c, host: host}
}

// CreateResult submits a recorded test case for conversion and returns the
// stored report.
func (c Client) CreateResult(ctx context.Context, tc TestCase) (ConvertedReport, error) {
	body, err := json.Marshal(tc)
	if err != nil {
		return ConvertedReport{}, err
	}

	req, err := http.NewRequest("POST", c.url("/results"), bytes.NewReader(body))
	if err != nil {
		return ConvertedReport{}, err
	}

	var report ConvertedReport

	if err = c.do(ctx, req, &report); err != nil {
		return ConvertedReport{}, err
	}

	return report, nil
}

func (c Client) GetResult(ctx context.Context, uuid string) (TestResult, error) {
	req, err := http.NewRequest("GET", c.url("/results/%s", uuid), nil)
	if err != nil {
		return TestResult{}, err
	}

	var report TestResult

	if err = c.do(ctx, req, &report); err != nil {
		return TestResult{}, err
	}

	return report, nil
}

// GetResultsByHistoryID lists the stored reports of one logical test.
func (c Client) GetResultsByHistoryID(ctx context.Context, historyID string) ([]TestResult, error) {
	req, err := http.NewRequest("GET", c.url("/results?historyId=%s", historyID), nil)
	if err != nil {
		return nil, err
	}

	var reports []TestResult

	if err = c.do(ctx, req, &reports); err != nil {
		return nil, err
	}

	return reports, nil
}

func (c Client) url(format string, args ...any) string {
	return c.host + fmt.Sprintf(format, args...)
}

func (c Client) do(ctx context.Context, req *http.Request, v any) error {
	req = req.WithContext(ctx)

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return RequestError{ResponseCode: res.StatusCode}
	}

	return json.NewDecoder(res.Body).Decode(v)
}

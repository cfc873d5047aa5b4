package checker

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"

	"edustatus/internal/domain"
	"edustatus/pkg/validator"
)

type stubWriter struct {
	written  []domain.StudentResult
	appended []domain.StudentResult
	err      error
}

func (s *stubWriter) WriteResults(results []domain.StudentResult) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.written = results
	return "out.xlsx", nil
}

func (s *stubWriter) AppendResults(results []domain.StudentResult) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.appended = results
	return "out.xlsx", nil
}

func okLookup(t *testing.T) LookupFunc {
	t.Helper()
	return func(_ context.Context, in domain.StudentInput) (domain.StudentResult, error) {
		result := domain.NewStudentResult(in)
		status := "accepted"
		result.Status = &status
		return result, nil
	}
}

func newTestRunner(lookup Lookup, writer ResultWriter, logs *bytes.Buffer, opts ...RunnerOption) *Runner {
	logger := log.New(logs, "", 0)
	opts = append([]RunnerOption{WithRequestDelay(0)}, opts...)
	return NewRunner(lookup, writer, validator.New(logger), logger, opts...)
}

func TestRunProcessesValidStudents(t *testing.T) {
	writer := &stubWriter{}
	runner := newTestRunner(okLookup(t), writer, &bytes.Buffer{})

	inputs := []domain.StudentInput{
		{RegNumber: "ECU-10209/25", Email: "first@example.com", RowIndex: 1},
		{RegNumber: "ECU-10210/25", Email: "second@example.com", RowIndex: 2},
	}
	summary, err := runner.Run(context.Background(), inputs)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if summary.Total != 2 || summary.Processed != 2 || summary.Failed != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.Path != "out.xlsx" {
		t.Fatalf("expected writer path in summary, got %q", summary.Path)
	}
	if len(writer.written) != 2 {
		t.Fatalf("expected 2 persisted results, got %d", len(writer.written))
	}
	for _, result := range writer.written {
		if !result.Processed {
			t.Fatalf("expected processed flag on %+v", result)
		}
		if result.Status == nil || *result.Status != "accepted" {
			t.Fatalf("expected populated status on %+v", result)
		}
	}
}

func TestRunRecordsValidationFailures(t *testing.T) {
	writer := &stubWriter{}
	calls := 0
	lookup := LookupFunc(func(_ context.Context, in domain.StudentInput) (domain.StudentResult, error) {
		calls++
		return domain.NewStudentResult(in), nil
	})
	runner := newTestRunner(lookup, writer, &bytes.Buffer{})

	inputs := []domain.StudentInput{
		{RegNumber: "bad-format", Email: "not-an-email", RowIndex: 1},
	}
	summary, err := runner.Run(context.Background(), inputs)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if calls != 0 {
		t.Fatalf("expected lookup to be skipped for invalid input")
	}
	if summary.Failed != 1 || summary.Processed != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	result := writer.written[0]
	if result.Processed {
		t.Fatalf("expected invalid record to stay unprocessed")
	}
	if result.Error == nil {
		t.Fatalf("expected validation messages on the record")
	}
	if !strings.Contains(*result.Error, "registration number") || !strings.Contains(*result.Error, "email") {
		t.Fatalf("expected both field messages accumulated, got %q", *result.Error)
	}
}

func TestRunRetriesLookupFailures(t *testing.T) {
	writer := &stubWriter{}
	attempts := 0
	lookup := LookupFunc(func(_ context.Context, in domain.StudentInput) (domain.StudentResult, error) {
		attempts++
		if attempts < 3 {
			return domain.StudentResult{}, errors.New("transient")
		}
		result := domain.NewStudentResult(in)
		return result, nil
	})
	runner := newTestRunner(lookup, writer, &bytes.Buffer{}, WithMaxRetries(3))

	summary, err := runner.Run(context.Background(), []domain.StudentInput{
		{RegNumber: "ECU-10209/25", Email: "first@example.com", RowIndex: 1},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	if summary.Processed != 1 {
		t.Fatalf("expected retried lookup to succeed, got %+v", summary)
	}
}

func TestRunRecordsExhaustedRetries(t *testing.T) {
	writer := &stubWriter{}
	lookup := LookupFunc(func(_ context.Context, in domain.StudentInput) (domain.StudentResult, error) {
		return domain.StudentResult{}, errors.New("service down")
	})
	runner := newTestRunner(lookup, writer, &bytes.Buffer{}, WithMaxRetries(2))

	summary, err := runner.Run(context.Background(), []domain.StudentInput{
		{RegNumber: "ECU-10209/25", Email: "first@example.com", RowIndex: 1},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Failed != 1 {
		t.Fatalf("expected failed record, got %+v", summary)
	}
	result := writer.written[0]
	if result.Processed {
		t.Fatalf("expected failed record to stay unprocessed")
	}
	if result.Error == nil || !strings.Contains(*result.Error, "service down") {
		t.Fatalf("expected lookup error on the record, got %v", result.Error)
	}
	if result.RegNumber != "ECU-10209/25" {
		t.Fatalf("expected input fields preserved on failed record, got %+v", result)
	}
}

func TestRunAppendMode(t *testing.T) {
	writer := &stubWriter{}
	runner := newTestRunner(okLookup(t), writer, &bytes.Buffer{}, WithAppend(true))

	if _, err := runner.Run(context.Background(), []domain.StudentInput{
		{RegNumber: "ECU-10209/25", Email: "first@example.com", RowIndex: 1},
	}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(writer.appended) != 1 || len(writer.written) != 0 {
		t.Fatalf("expected append path, got written=%d appended=%d", len(writer.written), len(writer.appended))
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	writer := &stubWriter{}
	runner := newTestRunner(okLookup(t), writer, &bytes.Buffer{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.Run(ctx, []domain.StudentInput{
		{RegNumber: "ECU-10209/25", Email: "first@example.com", RowIndex: 1},
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
	if len(writer.written) != 0 && len(writer.appended) != 0 {
		t.Fatalf("expected nothing persisted after cancellation")
	}
}

func TestRunSurfacesWriteFailure(t *testing.T) {
	writer := &stubWriter{err: errors.New("disk full")}
	runner := newTestRunner(okLookup(t), writer, &bytes.Buffer{})

	_, err := runner.Run(context.Background(), []domain.StudentInput{
		{RegNumber: "ECU-10209/25", Email: "first@example.com", RowIndex: 1},
	})
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected write failure to surface, got %v", err)
	}
}

// Package checker orchestrates one batch: gate inputs through the validators,
// run the lookup collaborator with retries, and persist the results.
package checker

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"edustatus/internal/domain"
	"edustatus/pkg/validator"
)

// Lookup is the collaborator that fills a result from an input. It returns
// either a populated result or an error the runner records on the record.
type Lookup interface {
	Check(ctx context.Context, in domain.StudentInput) (domain.StudentResult, error)
}

// LookupFunc adapts a function to the Lookup interface.
type LookupFunc func(ctx context.Context, in domain.StudentInput) (domain.StudentResult, error)

func (f LookupFunc) Check(ctx context.Context, in domain.StudentInput) (domain.StudentResult, error) {
	return f(ctx, in)
}

// ResultWriter is the persistence collaborator.
type ResultWriter interface {
	WriteResults(results []domain.StudentResult) (string, error)
	AppendResults(results []domain.StudentResult) (string, error)
}

// Summary reports one completed batch.
type Summary struct {
	Total     int
	Processed int
	Failed    int
	Path      string
}

// Runner executes batches sequentially; it provides no locking and assumes a
// single calling goroutine.
type Runner struct {
	lookup    Lookup
	writer    ResultWriter
	validator *validator.Validator
	logger    *log.Logger

	maxRetries   int
	requestDelay time.Duration
	appendMode   bool
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithMaxRetries sets how many lookup attempts each record gets.
func WithMaxRetries(retries int) RunnerOption {
	return func(r *Runner) {
		if retries > 0 {
			r.maxRetries = retries
		}
	}
}

// WithRequestDelay sets the pause between lookup requests.
func WithRequestDelay(delay time.Duration) RunnerOption {
	return func(r *Runner) {
		if delay >= 0 {
			r.requestDelay = delay
		}
	}
}

// WithAppend makes the batch append to an existing result file instead of
// overwriting it.
func WithAppend(enabled bool) RunnerOption {
	return func(r *Runner) {
		r.appendMode = enabled
	}
}

// NewRunner wires a batch runner from its collaborators.
func NewRunner(lookup Lookup, writer ResultWriter, v *validator.Validator, logger *log.Logger, opts ...RunnerOption) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	if v == nil {
		v = validator.New(logger)
	}
	runner := &Runner{
		lookup:       lookup,
		writer:       writer,
		validator:    v,
		logger:       logger,
		maxRetries:   3,
		requestDelay: 1500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(runner)
	}
	return runner
}

// Run processes every input and persists the whole batch once at the end.
// Invalid inputs get their validation messages recorded and skip the lookup.
// Context cancellation aborts before anything is written.
func (r *Runner) Run(ctx context.Context, inputs []domain.StudentInput) (Summary, error) {
	jobID := uuid.New()
	r.logger.Printf("[checker] job %s started (%d students)", jobID, len(inputs))

	results := make([]domain.StudentResult, 0, len(inputs))
	summary := Summary{Total: len(inputs)}

	for i, input := range inputs {
		if ctx.Err() != nil {
			return Summary{}, ctx.Err()
		}
		result := domain.NewStudentResult(input)

		if messages := r.validate(input); len(messages) > 0 {
			msg := strings.Join(messages, "; ")
			result.Error = &msg
			results = append(results, result)
			summary.Failed++
			r.logger.Printf("[checker] job %s row %d invalid: %s", jobID, input.RowIndex, msg)
			continue
		}

		if i > 0 && r.requestDelay > 0 {
			if err := sleepCtx(ctx, r.requestDelay); err != nil {
				return Summary{}, err
			}
		}

		fetched, err := r.checkWithRetries(ctx, input)
		if err != nil {
			if ctx.Err() != nil {
				return Summary{}, ctx.Err()
			}
			msg := err.Error()
			result.Error = &msg
			results = append(results, result)
			summary.Failed++
			r.logger.Printf("[checker] job %s row %d failed: %v", jobID, input.RowIndex, err)
			continue
		}
		fetched.Processed = true
		results = append(results, fetched)
		summary.Processed++
	}

	path, err := r.persist(results)
	if err != nil {
		return Summary{}, err
	}
	summary.Path = path
	r.logger.Printf("[checker] job %s completed (processed=%d failed=%d path=%s)",
		jobID, summary.Processed, summary.Failed, path)
	return summary, nil
}

// validate accumulates every field failure for one input before deciding.
func (r *Runner) validate(input domain.StudentInput) []string {
	var messages []string
	if ok, msg := r.validator.RegistrationNumber(input.RegNumber); !ok {
		messages = append(messages, msg)
	}
	if ok, msg := r.validator.Email(input.Email); !ok {
		messages = append(messages, msg)
	}
	return messages
}

func (r *Runner) checkWithRetries(ctx context.Context, input domain.StudentInput) (domain.StudentResult, error) {
	var lastErr error
	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		result, err := r.lookup.Check(ctx, input)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return domain.StudentResult{}, ctx.Err()
		}
		if attempt < r.maxRetries && r.requestDelay > 0 {
			if err := sleepCtx(ctx, r.requestDelay); err != nil {
				return domain.StudentResult{}, err
			}
		}
	}
	return domain.StudentResult{}, fmt.Errorf("lookup failed after %d attempts: %w", r.maxRetries, lastErr)
}

func (r *Runner) persist(results []domain.StudentResult) (string, error) {
	if r.appendMode {
		return r.writer.AppendResults(results)
	}
	return r.writer.WriteResults(results)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Package estimator drives the train → create-model → deploy workflow
// against the platform backend. It owns no computation: it validates
// configuration locally, submits remote calls, and waits for the platform to
// reach a terminal state.
package estimator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"mltrain/internal/dataset"
	"mltrain/internal/hyperparams"
	"mltrain/internal/images"
	"mltrain/internal/platform"
	"mltrain/pkg/api"

	"github.com/google/uuid"
)

var (
	ErrInvalidConfig    = errors.New("invalid estimator config")
	ErrInvalidBatchSize = errors.New("invalid mini batch size")
	ErrNotTrained       = errors.New("estimator has no completed training job")
	ErrJobFailed        = errors.New("training job failed")
)

const defaultPollInterval = 5 * time.Second

// Config holds the compute topology and identity shared by every algorithm.
type Config struct {
	Role          string
	InstanceCount int
	InstanceType  string
	Region        string
	BaseJobName   string

	// PollInterval controls how often Fit and Deploy re-describe remote
	// state; zero means the default.
	PollInterval time.Duration
}

func (c *Config) validate() error {
	if c.Role == "" {
		return fmt.Errorf("%w: role is required", ErrInvalidConfig)
	}
	if c.InstanceCount <= 0 {
		return fmt.Errorf("%w: instance count must be positive, got %d", ErrInvalidConfig, c.InstanceCount)
	}
	if c.InstanceType == "" {
		return fmt.Errorf("%w: instance type is required", ErrInvalidConfig)
	}
	if c.Region == "" {
		return fmt.Errorf("%w: region is required", ErrInvalidConfig)
	}
	return nil
}

// TrainingJob is the handle to a submitted job. ArtifactPath is resolved
// only once the platform reports the job completed.
type TrainingJob struct {
	Name         string
	Status       string
	ArtifactPath string
}

// Estimator ties a validated config and hyperparameter set to one algorithm.
// A value only exists in the configured state: constructors fail instead of
// returning a partially valid estimator.
type Estimator struct {
	backend      platform.Backend
	cfg          Config
	algorithm    string
	params       *hyperparams.Set
	newPredictor PredictorFactory

	latestJob *TrainingJob
}

func New(backend platform.Backend, cfg Config, algorithm string, params *hyperparams.Set, factory PredictorFactory) (*Estimator, error) {
	if backend == nil {
		return nil, fmt.Errorf("%w: backend is required", ErrInvalidConfig)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = defaultPollInterval
	}
	return &Estimator{
		backend:      backend,
		cfg:          cfg,
		algorithm:    algorithm,
		params:       params,
		newPredictor: factory,
	}, nil
}

func (e *Estimator) Role() string { return e.cfg.Role }

func (e *Estimator) InstanceCount() int { return e.cfg.InstanceCount }

func (e *Estimator) InstanceType() string { return e.cfg.InstanceType }

func (e *Estimator) Region() string { return e.cfg.Region }

func (e *Estimator) Algorithm() string { return e.algorithm }

// Hyperparameters returns the wire form that Fit will submit: supplied
// values stringified, absent optionals omitted.
func (e *Estimator) Hyperparameters() map[string]string {
	return e.params.Serialize()
}

// TrainImage resolves the training container image for the configured
// region.
func (e *Estimator) TrainImage() (string, error) {
	return images.TrainImage(e.cfg.Region, e.algorithm)
}

// LatestJob returns the handle from the most recent successful Fit, or nil.
func (e *Estimator) LatestJob() *TrainingJob {
	return e.latestJob
}

type FitOptions struct {
	// MiniBatchSize is forwarded exactly when set; nil forwards absence and
	// lets the platform choose.
	MiniBatchSize *int

	// JobName overrides the generated job name.
	JobName string
}

// ParseMiniBatchSize coerces a textual batch size (e.g. a CLI flag) into a
// FitOptions value. Empty means absent; anything non-numeric or non-positive
// is rejected here, before any remote call.
func ParseMiniBatchSize(s string) (*int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("%w: must be an integer, got %q", ErrInvalidBatchSize, s)
	}
	if n <= 0 {
		return nil, fmt.Errorf("%w: must be positive, got %d", ErrInvalidBatchSize, n)
	}
	return &n, nil
}

// Fit submits one training job for the record set and blocks until the
// platform reports a terminal status. On success the estimator holds the
// resolved artifact location for CreateModel.
func (e *Estimator) Fit(ctx context.Context, records *dataset.RecordSet, opts FitOptions) error {
	if records == nil {
		return fmt.Errorf("%w: record set is required", ErrInvalidConfig)
	}
	if opts.MiniBatchSize != nil && *opts.MiniBatchSize <= 0 {
		return fmt.Errorf("%w: must be positive, got %d", ErrInvalidBatchSize, *opts.MiniBatchSize)
	}

	image, err := e.TrainImage()
	if err != nil {
		return err
	}

	jobName := opts.JobName
	if jobName == "" {
		jobName = e.generateJobName()
	}

	req := &api.CreateTrainingJobRequest{
		JobName:         jobName,
		TrainingImage:   image,
		Role:            e.cfg.Role,
		InstanceCount:   e.cfg.InstanceCount,
		InstanceType:    e.cfg.InstanceType,
		Hyperparameters: e.params.Serialize(),
		Channels:        []api.Channel{records.APIChannel()},
		MiniBatchSize:   opts.MiniBatchSize,
	}

	if _, err := e.backend.CreateTrainingJob(ctx, req); err != nil {
		return fmt.Errorf("error submitting training job %s: %w", jobName, err)
	}
	slog.Info("submitted training job", "job_name", jobName, "algorithm", e.algorithm)

	job, err := e.waitForTrainingJob(ctx, jobName)
	if err != nil {
		return err
	}

	e.latestJob = job
	slog.Info("training job completed", "job_name", jobName, "artifacts", job.ArtifactPath)
	return nil
}

func (e *Estimator) waitForTrainingJob(ctx context.Context, jobName string) (*TrainingJob, error) {
	for {
		desc, err := e.backend.DescribeTrainingJob(ctx, jobName)
		if err != nil {
			return nil, fmt.Errorf("error describing training job %s: %w", jobName, err)
		}

		switch desc.Status {
		case api.JobCompleted:
			return &TrainingJob{Name: jobName, Status: desc.Status, ArtifactPath: desc.ModelArtifacts}, nil
		case api.JobFailed:
			return nil, fmt.Errorf("%w: %s: %s", ErrJobFailed, jobName, desc.FailureReason)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(e.cfg.PollInterval):
		}
	}
}

// CreateModel wraps the latest training job's artifacts into a deployable
// Model. Calling it before a successful Fit is a usage error.
func (e *Estimator) CreateModel() (*Model, error) {
	if e.latestJob == nil || e.latestJob.ArtifactPath == "" {
		return nil, ErrNotTrained
	}

	image, err := e.TrainImage()
	if err != nil {
		return nil, err
	}

	return &Model{
		Image:             image,
		ModelDataLocation: e.latestJob.ArtifactPath,
		Role:              e.cfg.Role,
		Name:              e.latestJob.Name,
		backend:           e.backend,
		pollInterval:      e.cfg.PollInterval,
		newPredictor:      e.newPredictor,
	}, nil
}

func (e *Estimator) generateJobName() string {
	base := e.cfg.BaseJobName
	if base == "" {
		base = e.algorithm
	}
	stamp := time.Now().UTC().Format("20060102-150405")
	suffix := uuid.New().String()[:8]
	return fmt.Sprintf("%s-%s-%s", base, stamp, suffix)
}

// Package history keeps a local record of training jobs and endpoints
// launched from this machine. It is a convenience ledger, not the source of
// truth; the platform is.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Store struct {
	db *gorm.DB
}

// Open opens (creating if needed) the history database at path and applies
// pending migrations. Use "file::memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("error opening history db %s: %w", path, err)
	}

	if err := GetMigrator(db).Migrate(); err != nil {
		return nil, fmt.Errorf("error migrating history db: %w", err)
	}

	return &Store{db: db}, nil
}

// RecordRun registers a freshly submitted training job.
func (s *Store) RecordRun(ctx context.Context, jobName, algorithm, role string, instanceCount int, instanceType string, hyperparameters map[string]string) error {
	data, err := json.Marshal(hyperparameters)
	if err != nil {
		return fmt.Errorf("error encoding hyperparameters: %w", err)
	}

	run := TrainingRun{
		Id:              uuid.New(),
		JobName:         jobName,
		Algorithm:       algorithm,
		Role:            role,
		InstanceCount:   instanceCount,
		InstanceType:    instanceType,
		Hyperparameters: data,
		Status:          RunSubmitted,
		CreationTime:    time.Now(),
	}

	if err := s.db.WithContext(ctx).Create(&run).Error; err != nil {
		return fmt.Errorf("error recording training run %s: %w", jobName, err)
	}
	return nil
}

// MarkRunCompleted stores the resolved artifact location for a run.
func (s *Store) MarkRunCompleted(ctx context.Context, jobName, artifactPath string) error {
	return s.setRunStatus(ctx, jobName, RunCompleted, artifactPath)
}

func (s *Store) MarkRunFailed(ctx context.Context, jobName string) error {
	return s.setRunStatus(ctx, jobName, RunFailed, "")
}

func (s *Store) setRunStatus(ctx context.Context, jobName, status, artifactPath string) error {
	updates := map[string]any{
		"status":          status,
		"completion_time": sql.NullTime{Time: time.Now(), Valid: true},
	}
	if artifactPath != "" {
		updates["artifact_path"] = artifactPath
	}

	result := s.db.WithContext(ctx).Model(&TrainingRun{}).Where("job_name = ?", jobName).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("error updating training run %s: %w", jobName, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("no training run recorded for job %s", jobName)
	}
	return nil
}

func (s *Store) GetRun(ctx context.Context, jobName string) (*TrainingRun, error) {
	var run TrainingRun
	if err := s.db.WithContext(ctx).First(&run, "job_name = ?", jobName).Error; err != nil {
		return nil, fmt.Errorf("error getting training run %s: %w", jobName, err)
	}
	return &run, nil
}

// ListRuns returns runs newest first.
func (s *Store) ListRuns(ctx context.Context) ([]TrainingRun, error) {
	var runs []TrainingRun
	if err := s.db.WithContext(ctx).Order("creation_time desc").Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("error listing training runs: %w", err)
	}
	return runs, nil
}

// RecordEndpoint registers a deployed endpoint.
func (s *Store) RecordEndpoint(ctx context.Context, endpointName, modelName string, instanceCount int, instanceType string) error {
	record := EndpointRecord{
		Id:            uuid.New(),
		EndpointName:  endpointName,
		ModelName:     modelName,
		InstanceCount: instanceCount,
		InstanceType:  instanceType,
		CreationTime:  time.Now(),
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("error recording endpoint %s: %w", endpointName, err)
	}
	return nil
}

func (s *Store) ListEndpoints(ctx context.Context) ([]EndpointRecord, error) {
	var endpoints []EndpointRecord
	if err := s.db.WithContext(ctx).Order("creation_time desc").Find(&endpoints).Error; err != nil {
		return nil, fmt.Errorf("error listing endpoints: %w", err)
	}
	return endpoints, nil
}

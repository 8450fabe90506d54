package history

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	RunSubmitted string = "SUBMITTED"
	RunCompleted string = "COMPLETED"
	RunFailed    string = "FAILED"
)

// TrainingRun is one submitted training job as seen from this machine.
type TrainingRun struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	JobName   string `gorm:"uniqueIndex;not null"`
	Algorithm string `gorm:"size:40;not null"`

	Role          string
	InstanceCount int
	InstanceType  string

	Hyperparameters datatypes.JSON

	Status       string `gorm:"size:20;not null"`
	ArtifactPath string

	CreationTime   time.Time
	CompletionTime sql.NullTime
}

type EndpointRecord struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	EndpointName string `gorm:"uniqueIndex;not null"`
	ModelName    string

	InstanceCount int
	InstanceType  string

	CreationTime time.Time
}

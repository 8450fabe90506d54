package api

// Wire types for the training platform REST API. Hyperparameters travel as a
// flat string-to-string map; values are the stringified form of the typed
// value and absent optionals are omitted entirely.

const (
	JobInProgress string = "InProgress"
	JobCompleted  string = "Completed"
	JobFailed     string = "Failed"
)

const (
	EndpointCreating  string = "Creating"
	EndpointInService string = "InService"
	EndpointFailed    string = "Failed"
)

// Channel describes one named input data source for a training job.
type Channel struct {
	Name         string `json:"name"`
	DataLocation string `json:"data_location"`
	RecordCount  int64  `json:"record_count,omitempty"`
	FeatureDim   int    `json:"feature_dim,omitempty"`
}

type CreateTrainingJobRequest struct {
	JobName         string            `json:"job_name"`
	TrainingImage   string            `json:"training_image"`
	Role            string            `json:"role"`
	InstanceCount   int               `json:"instance_count"`
	InstanceType    string            `json:"instance_type"`
	Hyperparameters map[string]string `json:"hyperparameters"`
	Channels        []Channel         `json:"channels"`

	// MiniBatchSize is forwarded only when the caller supplied one; when nil
	// the platform picks its own batching.
	MiniBatchSize *int `json:"mini_batch_size,omitempty"`
}

type CreateTrainingJobResponse struct {
	JobName string `json:"job_name"`
}

type DescribeTrainingJobResponse struct {
	JobName       string `json:"job_name"`
	Status        string `json:"status"`
	ModelArtifacts string `json:"model_artifacts,omitempty"`
	FailureReason string `json:"failure_reason,omitempty"`
}

type ListTrainingJobsResponse struct {
	Jobs []DescribeTrainingJobResponse `json:"jobs"`
}

type CreateModelRequest struct {
	ModelName         string `json:"model_name"`
	Image             string `json:"image"`
	ModelDataLocation string `json:"model_data_location"`
	Role              string `json:"role"`
}

type CreateModelResponse struct {
	ModelName string `json:"model_name"`
}

type CreateEndpointRequest struct {
	EndpointName  string `json:"endpoint_name"`
	ModelName     string `json:"model_name"`
	InstanceCount int    `json:"instance_count"`
	InstanceType  string `json:"instance_type"`
}

type CreateEndpointResponse struct {
	EndpointName string `json:"endpoint_name"`
}

type DescribeEndpointResponse struct {
	EndpointName  string `json:"endpoint_name"`
	Status        string `json:"status"`
	FailureReason string `json:"failure_reason,omitempty"`
}

// InferenceRequest is the generic invocation body for dense records;
// algorithm-specific response shapes live with their predictors.
type InferenceRequest struct {
	Instances []InferenceRecord `json:"instances"`
}

type InferenceRecord struct {
	Features []float32 `json:"features"`
}

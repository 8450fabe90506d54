package pca_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"mltrain/internal/dataset"
	"mltrain/internal/estimator"
	"mltrain/internal/estimator/pca"
	"mltrain/internal/hyperparams"
	"mltrain/internal/images"
	"mltrain/internal/platform"
	"mltrain/pkg/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	role          = "myrole"
	instanceCount = 1
	instanceType  = "ml.c4.xlarge"
	region        = "us-west-2"
	numComponents = 5
)

func testConfig() estimator.Config {
	return estimator.Config{
		Role:          role,
		InstanceCount: instanceCount,
		InstanceType:  instanceType,
		Region:        region,
		BaseJobName:   "pca",
		PollInterval:  time.Millisecond,
	}
}

func testRecordSet(t *testing.T) *dataset.RecordSet {
	t.Helper()
	rs, err := dataset.NewRecordSet("s3://Some-Bucket/prefix", 1, 10, "train")
	require.NoError(t, err)
	return rs
}

func boolPtr(v bool) *bool { return &v }
func intPtr(v int) *int    { return &v }

func TestInitRequired(t *testing.T) {
	est, err := pca.New(platform.NewInMemoryBackend(), testConfig(), pca.Options{NumComponents: numComponents})
	require.NoError(t, err)

	assert.Equal(t, role, est.Role())
	assert.Equal(t, instanceCount, est.InstanceCount())
	assert.Equal(t, instanceType, est.InstanceType())
	assert.Equal(t, numComponents, est.NumComponents)
}

func TestAllHyperparameters(t *testing.T) {
	est, err := pca.New(platform.NewInMemoryBackend(), testConfig(), pca.Options{
		NumComponents:   numComponents,
		AlgorithmMode:   pca.ModeRegular,
		SubtractMean:    boolPtr(true),
		ExtraComponents: intPtr(1),
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"num_components":   "5",
		"algorithm_mode":   "regular",
		"subtract_mean":    "true",
		"extra_components": "1",
	}, est.Hyperparameters())
}

func TestHyperparametersOmitAbsentOptionals(t *testing.T) {
	est, err := pca.New(platform.NewInMemoryBackend(), testConfig(), pca.Options{NumComponents: numComponents})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"num_components": "5"}, est.Hyperparameters())
}

func TestTrainImage(t *testing.T) {
	est, err := pca.New(platform.NewInMemoryBackend(), testConfig(), pca.Options{NumComponents: numComponents})
	require.NoError(t, err)

	image, err := est.TrainImage()
	require.NoError(t, err)

	host, err := images.Registry(region)
	require.NoError(t, err)
	assert.Equal(t, host+"/pca:1", image)
}

func TestRequiredHyperparameterValue(t *testing.T) {
	for _, components := range []int{0, -1} {
		_, err := pca.New(platform.NewInMemoryBackend(), testConfig(), pca.Options{NumComponents: components})
		var verr *hyperparams.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "num_components", verr.Name)
	}
}

func TestOptionalHyperparameterValue(t *testing.T) {
	_, err := pca.New(platform.NewInMemoryBackend(), testConfig(), pca.Options{
		NumComponents: numComponents,
		AlgorithmMode: "string",
	})
	var verr *hyperparams.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "algorithm_mode", verr.Name)
}

func TestFitForwardsBatchSize(t *testing.T) {
	backend := platform.NewInMemoryBackend()
	est, err := pca.New(backend, testConfig(), pca.Options{NumComponents: numComponents})
	require.NoError(t, err)

	rs := testRecordSet(t)
	batch := 200
	require.NoError(t, est.Fit(context.Background(), rs, estimator.FitOptions{MiniBatchSize: &batch}))

	require.Len(t, backend.TrainingJobRequests, 1)
	req := backend.TrainingJobRequests[0]
	require.NotNil(t, req.MiniBatchSize)
	assert.Equal(t, 200, *req.MiniBatchSize)
	require.Len(t, req.Channels, 1)
	assert.Equal(t, rs.APIChannel(), req.Channels[0])
}

func TestFitWithoutBatchSize(t *testing.T) {
	backend := platform.NewInMemoryBackend()
	est, err := pca.New(backend, testConfig(), pca.Options{NumComponents: numComponents})
	require.NoError(t, err)

	require.NoError(t, est.Fit(context.Background(), testRecordSet(t), estimator.FitOptions{}))

	require.Len(t, backend.TrainingJobRequests, 1)
	assert.Nil(t, backend.TrainingJobRequests[0].MiniBatchSize)
}

func TestFitBadBatchSizeFailsBeforeRemoteCall(t *testing.T) {
	backend := platform.NewInMemoryBackend()
	_, err := pca.New(backend, testConfig(), pca.Options{NumComponents: numComponents})
	require.NoError(t, err)

	batch, err := estimator.ParseMiniBatchSize("some")
	require.ErrorIs(t, err, estimator.ErrInvalidBatchSize)
	require.Nil(t, batch)
	assert.Empty(t, backend.TrainingJobRequests)
}

func TestModelImage(t *testing.T) {
	backend := platform.NewInMemoryBackend()
	est, err := pca.New(backend, testConfig(), pca.Options{NumComponents: numComponents})
	require.NoError(t, err)

	batch := 200
	require.NoError(t, est.Fit(context.Background(), testRecordSet(t), estimator.FitOptions{MiniBatchSize: &batch}))

	model, err := est.CreateModel()
	require.NoError(t, err)

	host, err := images.Registry(region)
	require.NoError(t, err)
	assert.Equal(t, host+"/pca:1", model.Image)
}

func TestPredictorType(t *testing.T) {
	backend := platform.NewInMemoryBackend()
	est, err := pca.New(backend, testConfig(), pca.Options{NumComponents: numComponents})
	require.NoError(t, err)

	batch := 200
	require.NoError(t, est.Fit(context.Background(), testRecordSet(t), estimator.FitOptions{MiniBatchSize: &batch}))

	model, err := est.CreateModel()
	require.NoError(t, err)

	predictor, err := model.Deploy(context.Background(), 1, instanceType)
	require.NoError(t, err)

	_, ok := predictor.(*pca.Predictor)
	assert.True(t, ok, "deploy should return a PCA predictor, got %T", predictor)
}

func TestPredict(t *testing.T) {
	backend := platform.NewInMemoryBackend()
	backend.InvokeHandler = func(endpointName string, body []byte) (any, error) {
		var req api.InferenceRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return nil, err
		}
		projections := make([]pca.Projection, 0, len(req.Instances))
		for range req.Instances {
			projections = append(projections, pca.Projection{Projection: []float32{0.1, 0.2}})
		}
		return map[string]any{"projections": projections}, nil
	}

	est, err := pca.New(backend, testConfig(), pca.Options{NumComponents: 2})
	require.NoError(t, err)

	require.NoError(t, est.Fit(context.Background(), testRecordSet(t), estimator.FitOptions{}))
	model, err := est.CreateModel()
	require.NoError(t, err)

	deployed, err := model.Deploy(context.Background(), 1, instanceType)
	require.NoError(t, err)
	predictor := deployed.(*pca.Predictor)

	projections, err := predictor.Predict(context.Background(), [][]float32{{1, 2, 3}, {4, 5, 6}})
	require.NoError(t, err)
	require.Len(t, projections, 2)
	assert.Equal(t, []float32{0.1, 0.2}, projections[0].Projection)
}

package platform_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"mltrain/internal/localserver"
	"mltrain/internal/platform"
	"mltrain/pkg/api"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *platform.Client {
	t.Helper()
	router := chi.NewRouter()
	localserver.New("artifacts").AddRoutes(router)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return platform.NewClient(server.URL, "test-key")
}

func TestTrainingJobRoundTrip(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	batch := 200
	created, err := client.CreateTrainingJob(ctx, &api.CreateTrainingJobRequest{
		JobName:         "pca-job",
		TrainingImage:   "registry.us-west-2.mltrain.dev/pca:1",
		Role:            "myrole",
		InstanceCount:   1,
		InstanceType:    "ml.c4.xlarge",
		Hyperparameters: map[string]string{"num_components": "5"},
		Channels:        []api.Channel{{Name: "train", DataLocation: "s3://bucket/prefix"}},
		MiniBatchSize:   &batch,
	})
	require.NoError(t, err)
	assert.Equal(t, "pca-job", created.JobName)

	desc, err := client.DescribeTrainingJob(ctx, "pca-job")
	require.NoError(t, err)
	assert.Equal(t, api.JobCompleted, desc.Status)
	assert.NotEmpty(t, desc.ModelArtifacts)
}

func TestAPIErrorPropagation(t *testing.T) {
	client := newTestClient(t)

	_, err := client.DescribeTrainingJob(context.Background(), "does-not-exist")
	require.Error(t, err)

	var apiErr *platform.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestValidationRejectedByServer(t *testing.T) {
	client := newTestClient(t)

	_, err := client.CreateTrainingJob(context.Background(), &api.CreateTrainingJobRequest{JobName: "incomplete"})
	var apiErr *platform.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
}

func TestModelAndEndpointRoundTrip(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	_, err := client.CreateModel(ctx, &api.CreateModelRequest{
		ModelName:         "pca-model",
		Image:             "registry.us-west-2.mltrain.dev/pca:1",
		ModelDataLocation: "s3://artifacts/pca-job/output/model.tar.gz",
		Role:              "myrole",
	})
	require.NoError(t, err)

	created, err := client.CreateEndpoint(ctx, &api.CreateEndpointRequest{
		EndpointName:  "pca-endpoint",
		ModelName:     "pca-model",
		InstanceCount: 1,
		InstanceType:  "ml.c4.xlarge",
	})
	require.NoError(t, err)

	desc, err := client.DescribeEndpoint(ctx, created.EndpointName)
	require.NoError(t, err)
	assert.Equal(t, api.EndpointInService, desc.Status)

	var res struct {
		Projections []struct {
			Projection []float32 `json:"projection"`
		} `json:"projections"`
	}
	err = client.InvokeEndpoint(ctx, created.EndpointName, &api.InferenceRequest{
		Instances: []api.InferenceRecord{{Features: []float32{0.5, 1.5}}},
	}, &res)
	require.NoError(t, err)
	require.Len(t, res.Projections, 1)

	require.NoError(t, client.DeleteEndpoint(ctx, created.EndpointName))

	_, err = client.DescribeEndpoint(ctx, created.EndpointName)
	var apiErr *platform.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

// Package localserver is an in-process emulator of the training platform's
// REST API. It exists for local development and tests: training jobs
// complete instantly with a synthesized artifact location, endpoints go
// straight to InService, and invocations echo each record back as its
// projection. It never runs a training algorithm.
package localserver

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"mltrain/pkg/api"

	"github.com/go-chi/chi/v5"
)

type trainingJob struct {
	req          *api.CreateTrainingJobRequest
	status       string
	artifacts    string
	creationTime time.Time
}

type endpoint struct {
	req          *api.CreateEndpointRequest
	status       string
	creationTime time.Time
}

type Server struct {
	mu sync.Mutex

	artifactBucket string
	jobs           map[string]*trainingJob
	models         map[string]*api.CreateModelRequest
	endpoints      map[string]*endpoint
}

func New(artifactBucket string) *Server {
	return &Server{
		artifactBucket: artifactBucket,
		jobs:           make(map[string]*trainingJob),
		models:         make(map[string]*api.CreateModelRequest),
		endpoints:      make(map[string]*endpoint),
	}
}

func (s *Server) AddRoutes(r chi.Router) {
	r.Get("/health", RestHandler(func(r *http.Request) (any, error) { return nil, nil }))
	r.Route("/v1", func(r chi.Router) {
		r.Route("/training-jobs", func(r chi.Router) {
			r.Post("/", RestHandler(s.CreateTrainingJob))
			r.Get("/", RestHandler(s.ListTrainingJobs))
			r.Get("/{job_name}", RestHandler(s.DescribeTrainingJob))
		})
		r.Post("/models", RestHandler(s.CreateModel))
		r.Route("/endpoints", func(r chi.Router) {
			r.Post("/", RestHandler(s.CreateEndpoint))
			r.Get("/{endpoint_name}", RestHandler(s.DescribeEndpoint))
			r.Delete("/{endpoint_name}", RestHandler(s.DeleteEndpoint))
			r.Post("/{endpoint_name}/invocations", RestHandler(s.InvokeEndpoint))
		})
	})
}

func (s *Server) CreateTrainingJob(r *http.Request) (any, error) {
	req, err := ParseRequest[*api.CreateTrainingJobRequest](r)
	if err != nil {
		return nil, err
	}

	if req.JobName == "" || req.TrainingImage == "" || req.Role == "" {
		return nil, CodedErrorf(http.StatusUnprocessableEntity, "missing required fields: job_name, training_image, role")
	}
	if req.InstanceCount <= 0 || req.InstanceType == "" {
		return nil, CodedErrorf(http.StatusUnprocessableEntity, "instance_count must be positive and instance_type is required")
	}
	if len(req.Channels) == 0 {
		return nil, CodedErrorf(http.StatusUnprocessableEntity, "at least one data channel is required")
	}
	if req.MiniBatchSize != nil && *req.MiniBatchSize <= 0 {
		return nil, CodedErrorf(http.StatusUnprocessableEntity, "mini_batch_size must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[req.JobName]; exists {
		return nil, CodedErrorf(http.StatusConflict, "training job %s already exists", req.JobName)
	}

	// The emulator has no trainer to run, so jobs are born completed.
	s.jobs[req.JobName] = &trainingJob{
		req:          req,
		status:       api.JobCompleted,
		artifacts:    fmt.Sprintf("s3://%s/%s/output/model.tar.gz", s.artifactBucket, req.JobName),
		creationTime: time.Now(),
	}

	slog.Info("local platform accepted training job", "job_name", req.JobName, "image", req.TrainingImage)
	return api.CreateTrainingJobResponse{JobName: req.JobName}, nil
}

func (s *Server) DescribeTrainingJob(r *http.Request) (any, error) {
	jobName := chi.URLParam(r, "job_name")

	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobName]
	if !ok {
		return nil, CodedErrorf(http.StatusNotFound, "training job %s not found", jobName)
	}

	return api.DescribeTrainingJobResponse{
		JobName:        jobName,
		Status:         job.status,
		ModelArtifacts: job.artifacts,
	}, nil
}

type listJobsQuery struct {
	Status string `schema:"status"`
	Limit  int    `schema:"limit"`
}

func (s *Server) ListTrainingJobs(r *http.Request) (any, error) {
	query, err := ParseRequestQueryParams[listJobsQuery](r)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var jobs []api.DescribeTrainingJobResponse
	for name, job := range s.jobs {
		if query.Status != "" && job.status != query.Status {
			continue
		}
		jobs = append(jobs, api.DescribeTrainingJobResponse{
			JobName:        name,
			Status:         job.status,
			ModelArtifacts: job.artifacts,
		})
		if query.Limit > 0 && len(jobs) >= query.Limit {
			break
		}
	}

	return api.ListTrainingJobsResponse{Jobs: jobs}, nil
}

func (s *Server) CreateModel(r *http.Request) (any, error) {
	req, err := ParseRequest[*api.CreateModelRequest](r)
	if err != nil {
		return nil, err
	}

	if req.ModelName == "" || req.Image == "" || req.Role == "" {
		return nil, CodedErrorf(http.StatusUnprocessableEntity, "missing required fields: model_name, image, role")
	}
	if !strings.HasPrefix(req.ModelDataLocation, "s3://") {
		return nil, CodedErrorf(http.StatusUnprocessableEntity, "model_data_location must be an s3:// URI")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.models[req.ModelName]; exists {
		return nil, CodedErrorf(http.StatusConflict, "model %s already exists", req.ModelName)
	}
	s.models[req.ModelName] = req

	return api.CreateModelResponse{ModelName: req.ModelName}, nil
}

func (s *Server) CreateEndpoint(r *http.Request) (any, error) {
	req, err := ParseRequest[*api.CreateEndpointRequest](r)
	if err != nil {
		return nil, err
	}

	if req.EndpointName == "" || req.InstanceCount <= 0 || req.InstanceType == "" {
		return nil, CodedErrorf(http.StatusUnprocessableEntity, "missing required fields: endpoint_name, instance_count, instance_type")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.models[req.ModelName]; !ok {
		return nil, CodedErrorf(http.StatusNotFound, "model %s not found", req.ModelName)
	}
	if _, exists := s.endpoints[req.EndpointName]; exists {
		return nil, CodedErrorf(http.StatusConflict, "endpoint %s already exists", req.EndpointName)
	}

	s.endpoints[req.EndpointName] = &endpoint{
		req:          req,
		status:       api.EndpointInService,
		creationTime: time.Now(),
	}

	slog.Info("local platform created endpoint", "endpoint_name", req.EndpointName, "model_name", req.ModelName)
	return api.CreateEndpointResponse{EndpointName: req.EndpointName}, nil
}

func (s *Server) DescribeEndpoint(r *http.Request) (any, error) {
	endpointName := chi.URLParam(r, "endpoint_name")

	s.mu.Lock()
	defer s.mu.Unlock()

	ep, ok := s.endpoints[endpointName]
	if !ok {
		return nil, CodedErrorf(http.StatusNotFound, "endpoint %s not found", endpointName)
	}

	return api.DescribeEndpointResponse{EndpointName: endpointName, Status: ep.status}, nil
}

func (s *Server) DeleteEndpoint(r *http.Request) (any, error) {
	endpointName := chi.URLParam(r, "endpoint_name")

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.endpoints[endpointName]; !ok {
		return nil, CodedErrorf(http.StatusNotFound, "endpoint %s not found", endpointName)
	}
	delete(s.endpoints, endpointName)

	return nil, nil
}

func (s *Server) InvokeEndpoint(r *http.Request) (any, error) {
	endpointName := chi.URLParam(r, "endpoint_name")

	s.mu.Lock()
	_, ok := s.endpoints[endpointName]
	s.mu.Unlock()
	if !ok {
		return nil, CodedErrorf(http.StatusNotFound, "endpoint %s not found", endpointName)
	}

	req, err := ParseRequest[api.InferenceRequest](r)
	if err != nil {
		return nil, err
	}

	// No model runs here; each record's projection is the record itself.
	type projection struct {
		Projection []float32 `json:"projection"`
	}
	projections := make([]projection, 0, len(req.Instances))
	for _, record := range req.Instances {
		projections = append(projections, projection{Projection: record.Features})
	}

	return map[string]any{"projections": projections}, nil
}

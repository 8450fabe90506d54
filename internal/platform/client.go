package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"mltrain/pkg/api"

	"github.com/go-resty/resty/v2"
)

// Client is the REST implementation of Backend.
type Client struct {
	http *resty.Client
}

func NewClient(baseURL, apiKey string) *Client {
	http := resty.New().SetBaseURL(baseURL)
	if apiKey != "" {
		http.SetHeader("Authorization", "Bearer "+apiKey)
	}
	return &Client{http: http}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	req := c.http.R().SetContext(ctx).SetHeader("Accept", "application/json")
	if body != nil {
		req.SetBody(body)
	}

	res, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("platform request %s %s failed: %w", method, path, err)
	}

	if !res.IsSuccess() {
		slog.Error("platform returned error", "method", method, "path", path, "status_code", res.StatusCode(), "body", res.String())
		return &APIError{StatusCode: res.StatusCode(), Message: strings.TrimSpace(res.String())}
	}

	if out != nil {
		if err := json.Unmarshal(res.Body(), out); err != nil {
			return fmt.Errorf("error parsing platform response for %s %s: %w", method, path, err)
		}
	}
	return nil
}

func (c *Client) CreateTrainingJob(ctx context.Context, req *api.CreateTrainingJobRequest) (*api.CreateTrainingJobResponse, error) {
	var res api.CreateTrainingJobResponse
	if err := c.do(ctx, resty.MethodPost, "/v1/training-jobs", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) DescribeTrainingJob(ctx context.Context, jobName string) (*api.DescribeTrainingJobResponse, error) {
	var res api.DescribeTrainingJobResponse
	if err := c.do(ctx, resty.MethodGet, "/v1/training-jobs/"+jobName, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) CreateModel(ctx context.Context, req *api.CreateModelRequest) (*api.CreateModelResponse, error) {
	var res api.CreateModelResponse
	if err := c.do(ctx, resty.MethodPost, "/v1/models", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) CreateEndpoint(ctx context.Context, req *api.CreateEndpointRequest) (*api.CreateEndpointResponse, error) {
	var res api.CreateEndpointResponse
	if err := c.do(ctx, resty.MethodPost, "/v1/endpoints", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) DescribeEndpoint(ctx context.Context, endpointName string) (*api.DescribeEndpointResponse, error) {
	var res api.DescribeEndpointResponse
	if err := c.do(ctx, resty.MethodGet, "/v1/endpoints/"+endpointName, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) DeleteEndpoint(ctx context.Context, endpointName string) error {
	return c.do(ctx, resty.MethodDelete, "/v1/endpoints/"+endpointName, nil, nil)
}

func (c *Client) InvokeEndpoint(ctx context.Context, endpointName string, req, res any) error {
	return c.do(ctx, resty.MethodPost, "/v1/endpoints/"+endpointName+"/invocations", req, res)
}

// Package pca configures the platform's built-in PCA algorithm and decodes
// its inference responses. Training and projection both run inside the
// platform; this wrapper only validates, submits, and decodes.
package pca

import (
	"context"

	"mltrain/internal/estimator"
	"mltrain/internal/hyperparams"
	"mltrain/internal/platform"
	"mltrain/pkg/api"
)

const Algorithm = "pca"

const (
	ModeRegular    = "regular"
	ModeRandomized = "randomized"
)

var table = hyperparams.NewTable(
	hyperparams.Spec{Name: "num_components", Required: true, Validate: hyperparams.PositiveInt()},
	hyperparams.Spec{Name: "algorithm_mode", Validate: hyperparams.OneOf(ModeRegular, ModeRandomized)},
	hyperparams.Spec{Name: "subtract_mean", Validate: hyperparams.IsBool()},
	hyperparams.Spec{Name: "extra_components", Validate: hyperparams.IsInt()},
)

// Options are PCA's hyperparameters. NumComponents is required; the rest
// are forwarded only when set.
type Options struct {
	NumComponents   int
	AlgorithmMode   string
	SubtractMean    *bool
	ExtraComponents *int
}

// PCA is the estimator for the platform's PCA algorithm.
type PCA struct {
	*estimator.Estimator

	NumComponents   int
	AlgorithmMode   string
	SubtractMean    *bool
	ExtraComponents *int
}

// New validates the config and hyperparameters eagerly; an invalid
// combination never yields a PCA value.
func New(backend platform.Backend, cfg estimator.Config, opts Options) (*PCA, error) {
	params := table.NewSet()

	if err := params.Set("num_components", opts.NumComponents); err != nil {
		return nil, err
	}
	if opts.AlgorithmMode != "" {
		if err := params.Set("algorithm_mode", opts.AlgorithmMode); err != nil {
			return nil, err
		}
	}
	if opts.SubtractMean != nil {
		if err := params.Set("subtract_mean", *opts.SubtractMean); err != nil {
			return nil, err
		}
	}
	if opts.ExtraComponents != nil {
		if err := params.Set("extra_components", *opts.ExtraComponents); err != nil {
			return nil, err
		}
	}

	base, err := estimator.New(backend, cfg, Algorithm, params, func(endpointName string, b platform.Backend) estimator.Predictor {
		return &Predictor{RealTimePredictor: estimator.NewRealTimePredictor(endpointName, b)}
	})
	if err != nil {
		return nil, err
	}

	return &PCA{
		Estimator:       base,
		NumComponents:   opts.NumComponents,
		AlgorithmMode:   opts.AlgorithmMode,
		SubtractMean:    opts.SubtractMean,
		ExtraComponents: opts.ExtraComponents,
	}, nil
}

// Projection is one record's principal-component projection.
type Projection struct {
	Projection []float32 `json:"projection"`
}

type projectionResponse struct {
	Projections []Projection `json:"projections"`
}

// Predictor decodes PCA endpoint responses.
type Predictor struct {
	*estimator.RealTimePredictor
}

// Predict projects dense records through the deployed PCA model.
func (p *Predictor) Predict(ctx context.Context, records [][]float32) ([]Projection, error) {
	req := api.InferenceRequest{Instances: make([]api.InferenceRecord, 0, len(records))}
	for _, features := range records {
		req.Instances = append(req.Instances, api.InferenceRecord{Features: features})
	}

	var res projectionResponse
	if err := p.Invoke(ctx, &req, &res); err != nil {
		return nil, err
	}
	return res.Projections, nil
}

package main

import (
	"context"
	"flag"
	"log"
	"log/slog"

	"mltrain/cmd"
	"mltrain/internal/config"
	"mltrain/internal/dataset"
	"mltrain/internal/estimator"
	"mltrain/internal/estimator/pca"
	"mltrain/internal/history"
	"mltrain/internal/platform"
)

func main() {
	var (
		dataPath      = flag.String("data", "", "local training data file to upload")
		dataLocation  = flag.String("location", "", "existing s3:// location of training data (skips upload)")
		recordCount   = flag.Int64("records", 0, "number of records in the training data")
		featureDim    = flag.Int("feature-dim", 0, "feature dimensionality of the training data")
		channel       = flag.String("channel", "train", "training data channel name")
		numComponents = flag.Int("num-components", 0, "number of principal components to compute")
		algorithmMode = flag.String("mode", "", "pca algorithm mode (regular or randomized)")
		subtractMean  = flag.Bool("subtract-mean", false, "subtract the data mean before projection")
		extraComps    = flag.Int("extra-components", -1, "extra components for randomized mode (-1 to omit)")
		batchSize     = flag.String("batch-size", "", "mini batch size (empty lets the platform choose)")
		instanceCount = flag.Int("instances", 1, "training instance count")
		instanceType  = flag.String("instance-type", "ml.c4.xlarge", "training instance type")
		deploy        = flag.Bool("deploy", false, "deploy an endpoint after training")
	)

	cmd.LoadEnvFile()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	// Flag-level coercion happens before anything touches the network.
	miniBatchSize, err := estimator.ParseMiniBatchSize(*batchSize)
	if err != nil {
		log.Fatalf("invalid -batch-size: %v", err)
	}

	store, err := history.Open(cfg.HistoryDBPath)
	if err != nil {
		log.Fatalf("error opening history db: %v", err)
	}

	backend := platform.NewClient(cfg.PlatformURL, cfg.PlatformAPIKey)
	ctx := context.Background()

	records, err := resolveRecordSet(ctx, cfg, *dataPath, *dataLocation, *recordCount, *featureDim, *channel)
	if err != nil {
		log.Fatalf("error preparing training data: %v", err)
	}

	opts := pca.Options{NumComponents: *numComponents, AlgorithmMode: *algorithmMode}
	if *subtractMean {
		opts.SubtractMean = subtractMean
	}
	if *extraComps >= 0 {
		opts.ExtraComponents = extraComps
	}

	est, err := pca.New(backend, estimator.Config{
		Role:          cfg.Role,
		InstanceCount: *instanceCount,
		InstanceType:  *instanceType,
		Region:        cfg.Region,
		BaseJobName:   "pca",
	}, opts)
	if err != nil {
		log.Fatalf("invalid estimator configuration: %v", err)
	}

	if err := est.Fit(ctx, records, estimator.FitOptions{MiniBatchSize: miniBatchSize}); err != nil {
		log.Fatalf("training failed: %v", err)
	}

	job := est.LatestJob()
	if err := store.RecordRun(ctx, job.Name, pca.Algorithm, cfg.Role, *instanceCount, *instanceType, est.Hyperparameters()); err != nil {
		slog.Warn("unable to record training run", "job_name", job.Name, "error", err)
	} else if err := store.MarkRunCompleted(ctx, job.Name, job.ArtifactPath); err != nil {
		slog.Warn("unable to update training run", "job_name", job.Name, "error", err)
	}

	slog.Info("training complete", "job_name", job.Name, "artifacts", job.ArtifactPath)

	if !*deploy {
		return
	}

	model, err := est.CreateModel()
	if err != nil {
		log.Fatalf("error creating model: %v", err)
	}

	predictor, err := model.Deploy(ctx, *instanceCount, *instanceType)
	if err != nil {
		log.Fatalf("error deploying endpoint: %v", err)
	}

	if err := store.RecordEndpoint(ctx, predictor.EndpointName(), job.Name, *instanceCount, *instanceType); err != nil {
		slog.Warn("unable to record endpoint", "endpoint_name", predictor.EndpointName(), "error", err)
	}

	slog.Info("endpoint deployed", "endpoint_name", predictor.EndpointName())
}

func resolveRecordSet(ctx context.Context, cfg *config.Config, dataPath, dataLocation string, recordCount int64, featureDim int, channel string) (*dataset.RecordSet, error) {
	if dataLocation != "" {
		return dataset.NewRecordSet(dataLocation, recordCount, featureDim, channel)
	}

	uploader, err := dataset.NewUploader(&dataset.Config{
		S3EndpointURL:     cfg.S3EndpointURL,
		S3AccessKeyID:     cfg.S3AccessKeyID,
		S3SecretAccessKey: cfg.S3SecretAccessKey,
		S3Region:          cfg.S3Region,
		DataBucketName:    cfg.DataBucketName,
	})
	if err != nil {
		return nil, err
	}
	uploader.ShowProgress = true

	if err := uploader.EnsureBucket(ctx); err != nil {
		return nil, err
	}

	return uploader.UploadRecordSet(ctx, dataPath, recordCount, featureDim, channel)
}

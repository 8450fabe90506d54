package images_test

import (
	"mltrain/internal/images"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrainImage(t *testing.T) {
	image, err := images.TrainImage("us-west-2", "pca")
	require.NoError(t, err)

	host, err := images.Registry("us-west-2")
	require.NoError(t, err)
	assert.Equal(t, host+"/pca:1", image)
}

func TestTrainImageDeterministic(t *testing.T) {
	first, err := images.TrainImage("eu-west-1", "pca")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		again, err := images.TrainImage("eu-west-1", "pca")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestRegionsResolveDistinctHosts(t *testing.T) {
	a, err := images.Registry("us-east-1")
	require.NoError(t, err)
	b, err := images.Registry("us-west-2")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestUnknownRegion(t *testing.T) {
	_, err := images.TrainImage("mars-north-1", "pca")
	assert.Error(t, err)
}

func TestUnknownAlgorithm(t *testing.T) {
	_, err := images.TrainImage("us-west-2", "word2vec")
	assert.Error(t, err)
}

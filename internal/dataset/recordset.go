package dataset

import (
	"fmt"
	"strings"

	"mltrain/pkg/api"
)

// RecordSet references a located, sized, dimensioned training dataset.
// Immutable once constructed; fit calls take it by reference.
type RecordSet struct {
	DataLocation string
	RecordCount  int64
	FeatureDim   int
	Channel      string
}

func NewRecordSet(dataLocation string, recordCount int64, featureDim int, channel string) (*RecordSet, error) {
	if !strings.HasPrefix(dataLocation, "s3://") {
		return nil, fmt.Errorf("invalid data location %q: must be an s3:// URI", dataLocation)
	}
	if recordCount <= 0 {
		return nil, fmt.Errorf("record count must be positive, got %d", recordCount)
	}
	if featureDim <= 0 {
		return nil, fmt.Errorf("feature dimension must be positive, got %d", featureDim)
	}
	if channel == "" {
		channel = "train"
	}
	return &RecordSet{
		DataLocation: dataLocation,
		RecordCount:  recordCount,
		FeatureDim:   featureDim,
		Channel:      channel,
	}, nil
}

// APIChannel converts the record set into the training job's data channel.
func (r *RecordSet) APIChannel() api.Channel {
	return api.Channel{
		Name:         r.Channel,
		DataLocation: r.DataLocation,
		RecordCount:  r.RecordCount,
		FeatureDim:   r.FeatureDim,
	}
}

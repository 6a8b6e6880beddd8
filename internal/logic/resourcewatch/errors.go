package resourcewatch

import "errors"

var (
	ErrMemoryThresholdParse  = errors.New("parse memory threshold")
	ErrMemoryLimitNotDefined = errors.New("memory limit not defined")
	ErrGetPodMetrics         = errors.New("get pod metrics")
	ErrIngestAlert           = errors.New("ingest alert")
)

package resourcewatch

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"k8s.io/apimachinery/pkg/api/resource"

	"github.com/skillcoder/nodechaos-controller/internal/domain"
)

// resolveMemoryThreshold returns the pod memory threshold from its annotation or the default.
// Values are absolute quantities (512Mi) or a percentage of the summed container limits (80%).
func (s *Service) resolveMemoryThreshold(
	ctx context.Context,
	logger *slog.Logger,
	pod domain.Pod,
) (resource.Quantity, error) {
	value, ok := pod.Annotations[s.annotationKey]
	if !ok {
		value = s.defaultThreshold
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return resource.Quantity{}, fmt.Errorf("%w: no threshold for pod", ErrMemoryThresholdParse)
	}

	if !strings.HasSuffix(value, "%") {
		q, err := resource.ParseQuantity(value)
		if err != nil {
			return resource.Quantity{}, fmt.Errorf("%w: %w", ErrMemoryThresholdParse, err)
		}

		return q, nil
	}

	percent, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(value, "%")))
	if err != nil {
		return resource.Quantity{}, fmt.Errorf("%w: %w", ErrMemoryThresholdParse, err)
	}

	if percent <= 0 || percent > percentScale {
		return resource.Quantity{}, fmt.Errorf("%w: percentage %d out of range 1..100", ErrMemoryThresholdParse, percent)
	}

	if pod.MemoryLimit == nil || pod.MemoryLimit.IsZero() {
		return resource.Quantity{}, ErrMemoryLimitNotDefined
	}

	threshold := pod.MemoryLimit.Value() * int64(percent) / percentScale

	logger.DebugContext(ctx, "percentage memory threshold resolved",
		"percent", percent,
		"memoryLimit", pod.MemoryLimit.String(),
		"threshold", threshold,
	)

	return *resource.NewQuantity(threshold, resource.BinarySI), nil
}

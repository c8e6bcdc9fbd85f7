package metrics

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/andrescamacho/portlogistics-go/internal/application/mediator"
	"github.com/andrescamacho/portlogistics-go/internal/domain/shared"
)

// PrometheusMiddleware times every mediator request and counts it by
// outcome. A nil collector turns it into a pass-through.
func PrometheusMiddleware(collector *CommandMetricsCollector) mediator.Middleware {
	return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		if collector == nil {
			return next(ctx, request)
		}

		start := time.Now()
		response, err := next(ctx, request)
		collector.RecordCommandExecution(commandName(request), time.Since(start).Seconds(), outcomeOf(err))

		return response, err
	}
}

func outcomeOf(err error) string {
	if err == nil {
		return outcomeSuccess
	}
	var (
		validation   *shared.ValidationError
		capacity     *shared.CapacityError
		precondition *shared.PreconditionError
		consistency  *shared.ConsistencyError
		denied       *shared.DeletionDeniedError
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &capacity), errors.As(err, &precondition),
		errors.As(err, &consistency), errors.As(err, &denied):
		return outcomeRefused
	default:
		return outcomeError
	}
}

// commandName strips the pointer and package: "*queries.GetOccupancyQuery"
// becomes "GetOccupancyQuery"
func commandName(request mediator.Request) string {
	if request == nil {
		return "UnknownCommand"
	}

	name := strings.TrimPrefix(reflect.TypeOf(request).String(), "*")
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}

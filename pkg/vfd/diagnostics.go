package vfd

import (
	"go.uber.org/zap"

	"github.com/marmos91/dittovfd/internal/logger"
	"github.com/marmos91/dittovfd/pkg/store/object"
)

// logOutcome reports a failed request together with its structured detail.
// Nothing is logged for successful outcomes.
func (d *Driver) logOutcome(op string, out object.Outcome) {
	if out.IsOK() {
		return
	}

	fields := []zap.Field{
		zap.String("driver", d.name),
		zap.String("op", op),
		zap.String("status", out.Status.String()),
		zap.Int("attempts", out.Attempts),
	}
	msg := op + " failed"

	if det := out.Detail; det != nil {
		if det.Resource != "" {
			fields = append(fields, zap.String("resource", det.Resource))
			msg = op + " " + det.Resource + " failed"
		}
		if det.Message != "" {
			fields = append(fields, zap.String("message", det.Message))
		}
		if det.FurtherDetails != "" {
			fields = append(fields, zap.String("details", det.FurtherDetails))
		}
		for _, f := range det.Extra {
			fields = append(fields, zap.String(f.Name, f.Value))
		}
	}

	log := logger.With(fields...)
	switch out.Status {
	case object.StatusCanceled, object.StatusPreconditionFailed:
		log.Debug(msg)
	case object.StatusNotFound, object.StatusAccessDenied:
		log.Warn(msg)
	default:
		log.Error(msg)
	}
}

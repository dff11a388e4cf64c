package services

import (
	"context"
	"errors"

	"github.com/go-kit/log/level"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dzoniops/booking-service/api"
	"github.com/dzoniops/booking-service/booking"
	"github.com/dzoniops/booking-service/models"
	"github.com/dzoniops/booking-service/store"
)

var reasonCodes = map[models.Reason]codes.Code{
	models.ReasonInvalidRange:         codes.InvalidArgument,
	models.ReasonInPast:               codes.InvalidArgument,
	models.ReasonGuestCountExceeded:   codes.InvalidArgument,
	models.ReasonNoDatesSelected:      codes.InvalidArgument,
	models.ReasonInvalidPriceOverride: codes.InvalidArgument,
	models.ReasonDateUnavailable:      codes.FailedPrecondition,
	models.ReasonOverlapsBooking:      codes.AlreadyExists,
}

// withReason builds a status carrying a google.rpc.ErrorInfo so clients can
// tell validation reasons apart without parsing messages.
func withReason(code codes.Code, reason, msg string) error {
	st := status.New(code, msg)
	detailed, err := st.WithDetails(&errdetails.ErrorInfo{Reason: reason, Domain: api.ErrorDomain})
	if err != nil {
		return st.Err()
	}
	return detailed.Err()
}

// fail maps an engine error onto a gRPC status and records it.
func (s *Server) fail(method string, err error) error {
	var rej *models.Rejection
	switch {
	case errors.As(err, &rej):
		s.metrics.Rejected.WithLabelValues(string(rej.Reason)).Inc()
		code, ok := reasonCodes[rej.Reason]
		if !ok {
			code = codes.InvalidArgument
		}
		return withReason(code, string(rej.Reason), rej.Error())
	case errors.Is(err, booking.ErrInvalidTransition):
		return withReason(codes.FailedPrecondition, booking.ErrInvalidTransition.Error(), err.Error())
	case errors.Is(err, booking.ErrPropertyNotFound),
		errors.Is(err, booking.ErrBookingNotFound),
		errors.Is(err, store.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, booking.ErrInvalidRequest):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		s.metrics.StoreErrors.WithLabelValues(method).Inc()
		level.Warn(s.logger).Log("msg", "store timeout", "method", method, "err", err)
		return status.Error(codes.DeadlineExceeded, "store timed out; outcome unknown, re-query before retrying")
	case store.IsTransient(err):
		s.metrics.StoreErrors.WithLabelValues(method).Inc()
		level.Warn(s.logger).Log("msg", "store unavailable", "method", method, "err", err)
		return status.Error(codes.Unavailable, "store unavailable, retry later")
	}
	level.Error(s.logger).Log("msg", "unexpected error", "method", method, "err", err)
	return status.Error(codes.Internal, "internal error")
}

func invalidArgument(err error) error {
	return status.Error(codes.InvalidArgument, err.Error())
}

var errAdminOnly = status.Error(codes.PermissionDenied, "admin capability required")

package client

import (
	"context"
	"errors"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	grpcprom "github.com/grpc-ecosystem/go-grpc-middleware/providers/prometheus"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/timeout"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dzoniops/booking-service/api"
	"github.com/dzoniops/booking-service/utils"
)

type Options struct {
	Addr string
	// Token is sent as a bearer token; admin RPCs need one with the admin role.
	Token   string
	Timeout time.Duration
	Logger  log.Logger
	// Registerer receives the client RPC metrics when set.
	Registerer  prometheus.Registerer
	DialOptions []grpc.DialOption
}

type BookingClient struct {
	conn   *grpc.ClientConn
	client api.BookingServiceClient
	logger log.Logger
}

func Dial(opts Options) (*BookingClient, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	rpcLogger := log.With(logger, "service", "gRPC/client", "component", "booking-client")

	clMetrics := grpcprom.NewClientMetrics(
		grpcprom.WithClientHandlingTimeHistogram(
			grpcprom.WithHistogramBuckets(
				[]float64{0.001, 0.01, 0.1, 0.3, 0.6, 1, 3, 6, 9, 20, 30, 60, 90, 120},
			),
		),
	)
	if opts.Registerer != nil {
		if err := opts.Registerer.Register(clMetrics); err != nil {
			return nil, err
		}
	}
	exemplarFromContext := func(ctx context.Context) prometheus.Labels {
		if span := trace.SpanContextFromContext(ctx); span.IsSampled() {
			return prometheus.Labels{"traceID": span.TraceID().String()}
		}
		return nil
	}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithChainUnaryInterceptor(
			timeout.UnaryClientInterceptor(opts.Timeout),
			bearer(opts.Token),
			otelgrpc.UnaryClientInterceptor(),
			clMetrics.UnaryClientInterceptor(grpcprom.WithExemplarFromContext(exemplarFromContext)),
			logging.UnaryClientInterceptor(
				utils.InterceptorLogger(rpcLogger),
				logging.WithFieldsFromContext(utils.TraceIDFields),
			),
		),
	}, opts.DialOptions...)

	conn, err := grpc.Dial(opts.Addr, dialOpts...)
	if err != nil {
		return nil, err
	}
	return &BookingClient{
		conn:   conn,
		client: api.NewBookingServiceClient(conn),
		logger: logger,
	}, nil
}

func bearer(token string) grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply any,
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		if token != "" {
			ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "bearer "+token)
		}
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

func (c *BookingClient) Close() error {
	return c.conn.Close()
}

// API exposes the raw stub for calls without a convenience wrapper.
func (c *BookingClient) API() api.BookingServiceClient {
	return c.client
}

func (c *BookingClient) Quote(ctx context.Context, propertyID, checkIn, checkOut string) (*api.PriceQuoteResponse, error) {
	return c.client.GetPriceQuote(ctx, &api.PriceQuoteRequest{
		PropertyID: propertyID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
	})
}

// Book creates a booking. When the outcome of the call is unknown (timeout or
// unavailable store) it looks the booking up by guest and dates before trying
// once more, so a retry never produces a second booking.
func (c *BookingClient) Book(ctx context.Context, req *api.CreateBookingRequest) (*api.Booking, error) {
	res, err := c.client.CreateBooking(ctx, req)
	if err == nil {
		return res.Booking, nil
	}
	if !Retryable(err) {
		return nil, err
	}
	level.Warn(c.logger).Log("msg", "create outcome unknown, re-querying", "guest_email", req.GuestEmail, "err", err)
	found, qerr := c.client.FindGuestBookings(ctx, &api.FindGuestBookingsRequest{
		GuestEmail: req.GuestEmail,
		CheckIn:    req.CheckIn,
		CheckOut:   req.CheckOut,
	})
	if qerr != nil {
		return nil, errors.Join(err, qerr)
	}
	for _, b := range found.Bookings {
		if b.PropertyID == req.PropertyID && b.Status != "cancelled" {
			return b, nil
		}
	}
	res, err = c.client.CreateBooking(ctx, req)
	if err != nil {
		return nil, err
	}
	return res.Booking, nil
}

func (c *BookingClient) Confirm(ctx context.Context, id string) (*api.Booking, error) {
	res, err := c.client.ConfirmBooking(ctx, &api.IDRequest{ID: id})
	if err != nil {
		return nil, err
	}
	return res.Booking, nil
}

func (c *BookingClient) Cancel(ctx context.Context, id string) (*api.Booking, error) {
	res, err := c.client.CancelBooking(ctx, &api.IDRequest{ID: id})
	if err != nil {
		return nil, err
	}
	return res.Booking, nil
}

func (c *BookingClient) SetAvailability(ctx context.Context, req *api.SetAvailabilityRequest) (*api.SetAvailabilityResponse, error) {
	return c.client.SetAvailability(ctx, req)
}

func (c *BookingClient) Calendar(ctx context.Context, propertyID, from, to string) (*api.CalendarResponse, error) {
	return c.client.GetCalendar(ctx, &api.CalendarRequest{PropertyID: propertyID, From: from, To: to})
}

// ReasonOf returns the validation reason a rejected call carried.
func ReasonOf(err error) (string, bool) {
	st, ok := status.FromError(err)
	if !ok {
		return "", false
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok && info.Domain == api.ErrorDomain {
			return info.Reason, true
		}
	}
	return "", false
}

// Retryable reports whether the call may have failed before or after the
// server committed, so the caller has to re-query before retrying.
func Retryable(err error) bool {
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded:
		return true
	}
	return false
}

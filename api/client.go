package api

import (
	"context"

	"google.golang.org/grpc"
)

type BookingServiceClient interface {
	GetPriceQuote(ctx context.Context, in *PriceQuoteRequest, opts ...grpc.CallOption) (*PriceQuoteResponse, error)
	CreateBooking(ctx context.Context, in *CreateBookingRequest, opts ...grpc.CallOption) (*BookingResponse, error)
	ConfirmBooking(ctx context.Context, in *IDRequest, opts ...grpc.CallOption) (*BookingResponse, error)
	CancelBooking(ctx context.Context, in *IDRequest, opts ...grpc.CallOption) (*BookingResponse, error)
	GetBooking(ctx context.Context, in *IDRequest, opts ...grpc.CallOption) (*BookingResponse, error)
	ListBookings(ctx context.Context, in *ListBookingsRequest, opts ...grpc.CallOption) (*BookingsResponse, error)
	FindGuestBookings(ctx context.Context, in *FindGuestBookingsRequest, opts ...grpc.CallOption) (*BookingsResponse, error)
	SetAvailability(ctx context.Context, in *SetAvailabilityRequest, opts ...grpc.CallOption) (*SetAvailabilityResponse, error)
	GetCalendar(ctx context.Context, in *CalendarRequest, opts ...grpc.CallOption) (*CalendarResponse, error)
	SaveProperty(ctx context.Context, in *SavePropertyRequest, opts ...grpc.CallOption) (*PropertyResponse, error)
	GetProperty(ctx context.Context, in *IDRequest, opts ...grpc.CallOption) (*PropertyResponse, error)
	ListProperties(ctx context.Context, in *ListPropertiesRequest, opts ...grpc.CallOption) (*PropertiesResponse, error)
}

type bookingServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewBookingServiceClient returns a stub that always negotiates the json codec.
func NewBookingServiceClient(cc grpc.ClientConnInterface) BookingServiceClient {
	return &bookingServiceClient{cc: cc}
}

func invoke[Resp any](
	ctx context.Context,
	cc grpc.ClientConnInterface,
	method string,
	in any,
	opts []grpc.CallOption,
) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *bookingServiceClient) GetPriceQuote(ctx context.Context, in *PriceQuoteRequest, opts ...grpc.CallOption) (*PriceQuoteResponse, error) {
	return invoke[PriceQuoteResponse](ctx, c.cc, "GetPriceQuote", in, opts)
}

func (c *bookingServiceClient) CreateBooking(ctx context.Context, in *CreateBookingRequest, opts ...grpc.CallOption) (*BookingResponse, error) {
	return invoke[BookingResponse](ctx, c.cc, "CreateBooking", in, opts)
}

func (c *bookingServiceClient) ConfirmBooking(ctx context.Context, in *IDRequest, opts ...grpc.CallOption) (*BookingResponse, error) {
	return invoke[BookingResponse](ctx, c.cc, "ConfirmBooking", in, opts)
}

func (c *bookingServiceClient) CancelBooking(ctx context.Context, in *IDRequest, opts ...grpc.CallOption) (*BookingResponse, error) {
	return invoke[BookingResponse](ctx, c.cc, "CancelBooking", in, opts)
}

func (c *bookingServiceClient) GetBooking(ctx context.Context, in *IDRequest, opts ...grpc.CallOption) (*BookingResponse, error) {
	return invoke[BookingResponse](ctx, c.cc, "GetBooking", in, opts)
}

func (c *bookingServiceClient) ListBookings(ctx context.Context, in *ListBookingsRequest, opts ...grpc.CallOption) (*BookingsResponse, error) {
	return invoke[BookingsResponse](ctx, c.cc, "ListBookings", in, opts)
}

func (c *bookingServiceClient) FindGuestBookings(ctx context.Context, in *FindGuestBookingsRequest, opts ...grpc.CallOption) (*BookingsResponse, error) {
	return invoke[BookingsResponse](ctx, c.cc, "FindGuestBookings", in, opts)
}

func (c *bookingServiceClient) SetAvailability(ctx context.Context, in *SetAvailabilityRequest, opts ...grpc.CallOption) (*SetAvailabilityResponse, error) {
	return invoke[SetAvailabilityResponse](ctx, c.cc, "SetAvailability", in, opts)
}

func (c *bookingServiceClient) GetCalendar(ctx context.Context, in *CalendarRequest, opts ...grpc.CallOption) (*CalendarResponse, error) {
	return invoke[CalendarResponse](ctx, c.cc, "GetCalendar", in, opts)
}

func (c *bookingServiceClient) SaveProperty(ctx context.Context, in *SavePropertyRequest, opts ...grpc.CallOption) (*PropertyResponse, error) {
	return invoke[PropertyResponse](ctx, c.cc, "SaveProperty", in, opts)
}

func (c *bookingServiceClient) GetProperty(ctx context.Context, in *IDRequest, opts ...grpc.CallOption) (*PropertyResponse, error) {
	return invoke[PropertyResponse](ctx, c.cc, "GetProperty", in, opts)
}

func (c *bookingServiceClient) ListProperties(ctx context.Context, in *ListPropertiesRequest, opts ...grpc.CallOption) (*PropertiesResponse, error) {
	return invoke[PropertiesResponse](ctx, c.cc, "ListProperties", in, opts)
}

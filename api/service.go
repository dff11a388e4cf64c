package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "booking.v1.BookingService"

// ErrorDomain tags google.rpc.ErrorInfo details produced by this service.
const ErrorDomain = "booking.dzoniops"

type BookingServiceServer interface {
	GetPriceQuote(context.Context, *PriceQuoteRequest) (*PriceQuoteResponse, error)
	CreateBooking(context.Context, *CreateBookingRequest) (*BookingResponse, error)
	ConfirmBooking(context.Context, *IDRequest) (*BookingResponse, error)
	CancelBooking(context.Context, *IDRequest) (*BookingResponse, error)
	GetBooking(context.Context, *IDRequest) (*BookingResponse, error)
	ListBookings(context.Context, *ListBookingsRequest) (*BookingsResponse, error)
	FindGuestBookings(context.Context, *FindGuestBookingsRequest) (*BookingsResponse, error)
	SetAvailability(context.Context, *SetAvailabilityRequest) (*SetAvailabilityResponse, error)
	GetCalendar(context.Context, *CalendarRequest) (*CalendarResponse, error)
	SaveProperty(context.Context, *SavePropertyRequest) (*PropertyResponse, error)
	GetProperty(context.Context, *IDRequest) (*PropertyResponse, error)
	ListProperties(context.Context, *ListPropertiesRequest) (*PropertiesResponse, error)
}

// UnimplementedBookingServiceServer can be embedded for forward compatibility.
type UnimplementedBookingServiceServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedBookingServiceServer) GetPriceQuote(context.Context, *PriceQuoteRequest) (*PriceQuoteResponse, error) {
	return nil, unimplemented("GetPriceQuote")
}
func (UnimplementedBookingServiceServer) CreateBooking(context.Context, *CreateBookingRequest) (*BookingResponse, error) {
	return nil, unimplemented("CreateBooking")
}
func (UnimplementedBookingServiceServer) ConfirmBooking(context.Context, *IDRequest) (*BookingResponse, error) {
	return nil, unimplemented("ConfirmBooking")
}
func (UnimplementedBookingServiceServer) CancelBooking(context.Context, *IDRequest) (*BookingResponse, error) {
	return nil, unimplemented("CancelBooking")
}
func (UnimplementedBookingServiceServer) GetBooking(context.Context, *IDRequest) (*BookingResponse, error) {
	return nil, unimplemented("GetBooking")
}
func (UnimplementedBookingServiceServer) ListBookings(context.Context, *ListBookingsRequest) (*BookingsResponse, error) {
	return nil, unimplemented("ListBookings")
}
func (UnimplementedBookingServiceServer) FindGuestBookings(context.Context, *FindGuestBookingsRequest) (*BookingsResponse, error) {
	return nil, unimplemented("FindGuestBookings")
}
func (UnimplementedBookingServiceServer) SetAvailability(context.Context, *SetAvailabilityRequest) (*SetAvailabilityResponse, error) {
	return nil, unimplemented("SetAvailability")
}
func (UnimplementedBookingServiceServer) GetCalendar(context.Context, *CalendarRequest) (*CalendarResponse, error) {
	return nil, unimplemented("GetCalendar")
}
func (UnimplementedBookingServiceServer) SaveProperty(context.Context, *SavePropertyRequest) (*PropertyResponse, error) {
	return nil, unimplemented("SaveProperty")
}
func (UnimplementedBookingServiceServer) GetProperty(context.Context, *IDRequest) (*PropertyResponse, error) {
	return nil, unimplemented("GetProperty")
}
func (UnimplementedBookingServiceServer) ListProperties(context.Context, *ListPropertiesRequest) (*PropertiesResponse, error) {
	return nil, unimplemented("ListProperties")
}

func RegisterBookingServiceServer(s grpc.ServiceRegistrar, srv BookingServiceServer) {
	s.RegisterService(&BookingServiceDesc, srv)
}

func unary[Req, Resp any](
	name string,
	call func(BookingServiceServer, context.Context, *Req) (*Resp, error),
) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(
			srv any,
			ctx context.Context,
			dec func(any) error,
			interceptor grpc.UnaryServerInterceptor,
		) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(BookingServiceServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var BookingServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BookingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("GetPriceQuote", BookingServiceServer.GetPriceQuote),
		unary("CreateBooking", BookingServiceServer.CreateBooking),
		unary("ConfirmBooking", BookingServiceServer.ConfirmBooking),
		unary("CancelBooking", BookingServiceServer.CancelBooking),
		unary("GetBooking", BookingServiceServer.GetBooking),
		unary("ListBookings", BookingServiceServer.ListBookings),
		unary("FindGuestBookings", BookingServiceServer.FindGuestBookings),
		unary("SetAvailability", BookingServiceServer.SetAvailability),
		unary("GetCalendar", BookingServiceServer.GetCalendar),
		unary("SaveProperty", BookingServiceServer.SaveProperty),
		unary("GetProperty", BookingServiceServer.GetProperty),
		unary("ListProperties", BookingServiceServer.ListProperties),
	},
	Streams: []grpc.StreamDesc{},
}

package api

// Dates travel as YYYY-MM-DD strings and money as integer minor units.

type IDRequest struct {
	ID string `json:"id" validate:"required"`
}

type PriceQuoteRequest struct {
	PropertyID string `json:"property_id" validate:"required"`
	CheckIn    string `json:"check_in"    validate:"required,datetime=2006-01-02"`
	CheckOut   string `json:"check_out"   validate:"required,datetime=2006-01-02"`
}

type NightPrice struct {
	Date       string `json:"date"`
	Price      int64  `json:"price"`
	Overridden bool   `json:"overridden,omitempty"`
}

type PriceQuoteResponse struct {
	PropertyID  string       `json:"property_id"`
	CheckIn     string       `json:"check_in"`
	CheckOut    string       `json:"check_out"`
	Nights      int          `json:"nights"`
	PerNight    []NightPrice `json:"per_night"`
	Subtotal    int64        `json:"subtotal"`
	CleaningFee int64        `json:"cleaning_fee"`
	ServiceFee  int64        `json:"service_fee"`
	Total       int64        `json:"total"`
}

// CreateBookingRequest carries no price; the total is always
// computed by the service.
type CreateBookingRequest struct {
	PropertyID string `json:"property_id"       validate:"required"`
	UserID     string `json:"user_id,omitempty"`
	GuestName  string `json:"guest_name"        validate:"notblank"`
	GuestEmail string `json:"guest_email"       validate:"required,email"`
	CheckIn    string `json:"check_in"          validate:"required,datetime=2006-01-02"`
	CheckOut   string `json:"check_out"         validate:"required,datetime=2006-01-02"`
	Guests     int    `json:"guests"`
}

type Booking struct {
	ID          string `json:"id"`
	PropertyID  string `json:"property_id"`
	UserID      string `json:"user_id,omitempty"`
	GuestName   string `json:"guest_name"`
	GuestEmail  string `json:"guest_email"`
	CheckIn     string `json:"check_in"`
	CheckOut    string `json:"check_out"`
	Guests      int    `json:"guests"`
	Nights      int    `json:"nights"`
	Subtotal    int64  `json:"subtotal"`
	CleaningFee int64  `json:"cleaning_fee"`
	ServiceFee  int64  `json:"service_fee"`
	TotalPrice  int64  `json:"total_price"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

type BookingResponse struct {
	Booking *Booking `json:"booking"`
}

type BookingsResponse struct {
	Bookings []*Booking `json:"bookings"`
}

type ListBookingsRequest struct {
	PropertyID string `json:"property_id,omitempty"`
	Status     string `json:"status,omitempty"      validate:"omitempty,oneof=pending confirmed cancelled"`
}

type FindGuestBookingsRequest struct {
	GuestEmail string `json:"guest_email" validate:"required,email"`
	CheckIn    string `json:"check_in"    validate:"required,datetime=2006-01-02"`
	CheckOut   string `json:"check_out"   validate:"required,datetime=2006-01-02"`
}

type SetAvailabilityRequest struct {
	PropertyID    string   `json:"property_id"              validate:"required"`
	Dates         []string `json:"dates"                    validate:"dive,datetime=2006-01-02"`
	IsAvailable   bool     `json:"is_available"`
	PriceOverride *int64   `json:"price_override,omitempty"`
}

type FailedDate struct {
	Date  string `json:"date"`
	Error string `json:"error"`
}

type SetAvailabilityResponse struct {
	Written []string     `json:"written"`
	Failed  []FailedDate `json:"failed,omitempty"`
}

type CalendarRequest struct {
	PropertyID string `json:"property_id" validate:"required"`
	From       string `json:"from"        validate:"required,datetime=2006-01-02"`
	To         string `json:"to"          validate:"required,datetime=2006-01-02"`
}

type CalendarDay struct {
	Date        string `json:"date"`
	IsAvailable bool   `json:"is_available"`
	Booked      bool   `json:"booked"`
	Price       int64  `json:"price"`
	Overridden  bool   `json:"overridden,omitempty"`
}

type CalendarResponse struct {
	PropertyID string        `json:"property_id"`
	BasePrice  int64         `json:"base_price"`
	Days       []CalendarDay `json:"days"`
}

type Property struct {
	ID            string   `json:"id"`
	Slug          string   `json:"slug,omitempty"`
	Title         string   `json:"title"           validate:"notblank,max=200"`
	Description   string   `json:"description,omitempty"`
	Location      string   `json:"location"        validate:"notblank"`
	PricePerNight int64    `json:"price_per_night" validate:"gt=0"`
	MaxGuests     int      `json:"max_guests"      validate:"min=1"`
	Bedrooms      int      `json:"bedrooms"        validate:"min=0"`
	Bathrooms     int      `json:"bathrooms"       validate:"min=0"`
	Amenities     []string `json:"amenities,omitempty"`
	Images        []string `json:"images,omitempty" validate:"dive,url"`
	IsActive      bool     `json:"is_active"`
	CreatedAt     string   `json:"created_at,omitempty"`
}

type SavePropertyRequest struct {
	Property *Property `json:"property" validate:"required"`
}

type PropertyResponse struct {
	Property *Property `json:"property"`
}

type ListPropertiesRequest struct {
	IncludeInactive bool `json:"include_inactive,omitempty"`
}

type PropertiesResponse struct {
	Properties []*Property `json:"properties"`
}

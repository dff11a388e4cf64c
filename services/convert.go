package services

import (
	"strings"
	"time"
	"unicode"

	"github.com/dzoniops/booking-service/api"
	"github.com/dzoniops/booking-service/models"
	"github.com/dzoniops/booking-service/pricing"
	"github.com/dzoniops/booking-service/utils"
)

func mapBooking(b *models.Booking) *api.Booking {
	out := &api.Booking{
		ID:          b.ID,
		PropertyID:  b.PropertyID,
		GuestName:   b.GuestName,
		GuestEmail:  b.GuestEmail,
		CheckIn:     utils.FormatDate(b.CheckIn),
		CheckOut:    utils.FormatDate(b.CheckOut),
		Guests:      b.Guests,
		Nights:      b.Nights,
		Subtotal:    b.Subtotal,
		CleaningFee: b.CleaningFee,
		ServiceFee:  b.ServiceFee,
		TotalPrice:  b.TotalPrice,
		Status:      string(b.Status),
		CreatedAt:   b.CreatedAt.UTC().Format(time.RFC3339),
	}
	if b.UserID != nil {
		out.UserID = *b.UserID
	}
	return out
}

func mapBookings(in []models.Booking) []*api.Booking {
	bookings := make([]*api.Booking, len(in))
	for i := range in {
		bookings[i] = mapBooking(&in[i])
	}
	return bookings
}

func mapQuote(propertyID string, b pricing.Breakdown) *api.PriceQuoteResponse {
	out := &api.PriceQuoteResponse{
		PropertyID:  propertyID,
		Nights:      b.Nights,
		PerNight:    make([]api.NightPrice, len(b.PerNight)),
		Subtotal:    b.Subtotal,
		CleaningFee: b.CleaningFee,
		ServiceFee:  b.ServiceFee,
		Total:       b.Total,
	}
	for i, n := range b.PerNight {
		out.PerNight[i] = api.NightPrice{Date: utils.FormatDate(n.Date), Price: n.Price, Overridden: n.Overridden}
	}
	if len(b.PerNight) > 0 {
		out.CheckIn = out.PerNight[0].Date
		out.CheckOut = utils.FormatDate(b.PerNight[len(b.PerNight)-1].Date.AddDate(0, 0, 1))
	}
	return out
}

func mapProperty(p *models.Property) *api.Property {
	return &api.Property{
		ID:            p.ID,
		Slug:          p.Slug,
		Title:         p.Title,
		Description:   p.Description,
		Location:      p.Location,
		PricePerNight: p.PricePerNight,
		MaxGuests:     p.MaxGuests,
		Bedrooms:      p.Bedrooms,
		Bathrooms:     p.Bathrooms,
		Amenities:     p.Amenities,
		Images:        p.Images,
		IsActive:      p.IsActive,
		CreatedAt:     p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func propertyFromAPI(in *api.Property) *models.Property {
	slug := in.Slug
	if slug == "" {
		slug = slugify(in.Title)
	}
	return &models.Property{
		ID:            in.ID,
		Slug:          slug,
		Title:         strings.TrimSpace(in.Title),
		Description:   in.Description,
		Location:      strings.TrimSpace(in.Location),
		PricePerNight: in.PricePerNight,
		MaxGuests:     in.MaxGuests,
		Bedrooms:      in.Bedrooms,
		Bathrooms:     in.Bathrooms,
		Amenities:     in.Amenities,
		Images:        in.Images,
		IsActive:      in.IsActive,
	}
}

func slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

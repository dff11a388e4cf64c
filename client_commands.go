package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dzoniops/booking-service/api"
	"github.com/dzoniops/booking-service/client"
)

// ClientCmd groups commands that talk to a running service.
func ClientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Call a running booking service",
	}
	cmd.PersistentFlags().String("addr", "", "service address (defaults to BOOKING_ADDR)")
	cmd.PersistentFlags().String("token", "", "bearer token (defaults to ADMIN_TOKEN)")

	cmd.AddCommand(
		quoteCmd(),
		bookCmd(),
		transitionCmd("confirm", "Confirm a pending booking", (*client.BookingClient).Confirm),
		transitionCmd("cancel", "Cancel a booking and release its nights", (*client.BookingClient).Cancel),
		availabilityCmd(),
		calendarCmd(),
	)
	return cmd
}

func withClient(cmd *cobra.Command, fn func(ctx context.Context, c *client.BookingClient) (any, error)) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.BookingAddr
	}
	token, _ := cmd.Flags().GetString("token")
	if token == "" {
		token = cfg.AdminToken
	}
	c, err := client.Dial(client.Options{
		Addr:    addr,
		Token:   token,
		Timeout: cfg.ClientTimeout,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	defer c.Close()

	out, err := fn(cmd.Context(), c)
	if err != nil {
		if reason, ok := client.ReasonOf(err); ok {
			return fmt.Errorf("rejected (%s): %w", reason, err)
		}
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func quoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quote PROPERTY_ID CHECK_IN CHECK_OUT",
		Short: "Price a stay without booking it",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *client.BookingClient) (any, error) {
				return c.Quote(ctx, args[0], args[1], args[2])
			})
		},
	}
}

func bookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "book PROPERTY_ID CHECK_IN CHECK_OUT",
		Short: "Create a pending booking",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")
			guests, _ := cmd.Flags().GetInt("guests")
			return withClient(cmd, func(ctx context.Context, c *client.BookingClient) (any, error) {
				return c.Book(ctx, &api.CreateBookingRequest{
					PropertyID: args[0],
					GuestName:  name,
					GuestEmail: email,
					CheckIn:    args[1],
					CheckOut:   args[2],
					Guests:     guests,
				})
			})
		},
	}
	cmd.Flags().String("name", "", "guest name")
	cmd.Flags().String("email", "", "guest email")
	cmd.Flags().Int("guests", 1, "number of guests")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func transitionCmd(
	use, short string,
	call func(*client.BookingClient, context.Context, string) (*api.Booking, error),
) *cobra.Command {
	return &cobra.Command{
		Use:   use + " BOOKING_ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *client.BookingClient) (any, error) {
				return call(c, ctx, args[0])
			})
		},
	}
}

func availabilityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "availability PROPERTY_ID DATE...",
		Short: "Set availability and price override for a set of dates",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			blocked, _ := cmd.Flags().GetBool("blocked")
			req := &api.SetAvailabilityRequest{
				PropertyID:  args[0],
				Dates:       args[1:],
				IsAvailable: !blocked,
			}
			if p, _ := cmd.Flags().GetString("price"); p != "" {
				price, err := strconv.ParseInt(p, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid --price: %w", err)
				}
				req.PriceOverride = &price
			}
			return withClient(cmd, func(ctx context.Context, c *client.BookingClient) (any, error) {
				return c.SetAvailability(ctx, req)
			})
		},
	}
	cmd.Flags().Bool("blocked", false, "mark the dates unavailable")
	cmd.Flags().String("price", "", "nightly price override in minor units; omit to clear")
	return cmd
}

func calendarCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "calendar PROPERTY_ID FROM TO",
		Short: "Show availability, bookings and prices per date",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *client.BookingClient) (any, error) {
				return c.Calendar(ctx, args[0], args[1], args[2])
			})
		},
	}
}

package handler // handler defines http handlers

import (
	"errors"   // errors provides sentinel values and errors.As
	"net/http" // HTTP status codes
	"strconv"  // strconv converts strings to numeric types

	"github.com/labstack/echo/v4" // echo defines request context types

	"github.com/afisha/theater-booking/internal/booking"
)

// getUserID extracts the user_id from echo.Context and converts it to uint64
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// actor builds a booking.Actor from the authenticated request context.
// The role claim was stored by the JWT middleware.
func actor(c echo.Context) (booking.Actor, error) {
	uid, err := getUserID(c)
	if err != nil {
		return booking.Actor{}, err
	}
	role, _ := c.Get("role").(string)
	return booking.Actor{ID: uid, Admin: role == "ADMIN"}, nil
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// bookingError translates booking core errors into JSON responses.
// Unrecognized errors become a generic 500 so internals never leak.
func bookingError(c echo.Context, err error) error {
	var vErr *booking.ValidationError
	var seatsErr *booking.InsufficientSeatsError
	var amountErr *booking.AmountOutOfRangeError
	switch {
	case errors.Is(err, booking.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, booking.ErrPermissionDenied):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, booking.ErrEmptyCart):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cart is empty"})
	case errors.Is(err, booking.ErrReservationRaceLost):
		return c.JSON(http.StatusConflict, echo.Map{"error": "seats were taken by a concurrent order, please retry"})
	case errors.As(err, &vErr):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": vErr.Msg})
	case errors.As(err, &seatsErr):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":       seatsErr.Error(),
			"schedule_id": seatsErr.EntryID,
			"available":   seatsErr.Available,
			"requested":   seatsErr.Requested,
		})
	case errors.As(err, &amountErr):
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": amountErr.Error(),
			"total": amountErr.Total.StringFixed(2),
			"min":   amountErr.Min.StringFixed(2),
			"max":   amountErr.Max.StringFixed(2),
		})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

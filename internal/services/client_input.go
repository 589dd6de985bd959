package services

import (
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/terraincognita07/fortuna/internal/models"
)

const (
	maxClientNameLength  = 100
	maxClientPlaceLength = 200
	maxClientNotesLength = 5000
)

// ClientInput holds raw client form values.
type ClientInput struct {
	FirstName      string `json:"first_name" form:"first_name"`
	LastName       string `json:"last_name" form:"last_name"`
	Nickname       string `json:"nickname" form:"nickname"`
	Gender         string `json:"gender" form:"gender"`
	BirthDate      string `json:"birth_date" form:"birth_date"`
	BirthTime      string `json:"birth_time" form:"birth_time"`
	BirthPlace     string `json:"birth_place" form:"birth_place"`
	BirthLatitude  string `json:"birth_latitude" form:"birth_latitude"`
	BirthLongitude string `json:"birth_longitude" form:"birth_longitude"`
	ContactPhone   string `json:"contact_phone" form:"contact_phone"`
	ContactEmail   string `json:"contact_email" form:"contact_email"`
	Notes          string `json:"notes" form:"notes"`
}

// ClientInputFromModel renders a stored client back into form values.
func ClientInputFromModel(client models.Client) ClientInput {
	return ClientInput{
		FirstName:      client.FirstName,
		LastName:       client.LastName,
		Nickname:       client.Nickname,
		Gender:         client.Gender,
		BirthDate:      client.BirthDate,
		BirthTime:      client.BirthTime,
		BirthPlace:     client.BirthPlace,
		BirthLatitude:  formatCoordinate(client.BirthLatitude),
		BirthLongitude: formatCoordinate(client.BirthLongitude),
		ContactPhone:   client.ContactPhone,
		ContactEmail:   client.ContactEmail,
		Notes:          client.Notes,
	}
}

// Validate normalizes the input into a client without ID or owner.
func (input ClientInput) Validate(now time.Time) (models.Client, error) {
	validation := &ValidationError{}
	client := models.Client{
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Nickname:     strings.TrimSpace(input.Nickname),
		Gender:       strings.ToLower(strings.TrimSpace(input.Gender)),
		BirthDate:    strings.TrimSpace(input.BirthDate),
		BirthTime:    strings.TrimSpace(input.BirthTime),
		BirthPlace:   strings.TrimSpace(input.BirthPlace),
		ContactPhone: strings.TrimSpace(input.ContactPhone),
		ContactEmail: strings.ToLower(strings.TrimSpace(input.ContactEmail)),
		Notes:        strings.TrimSpace(input.Notes),
	}

	requireText(validation, "first_name", "First name", client.FirstName, maxClientNameLength)
	requireText(validation, "last_name", "Last name", client.LastName, maxClientNameLength)
	if len([]rune(client.Nickname)) > maxClientNameLength {
		validation.add("nickname", "Nickname is too long.")
	}
	if client.Gender != "" && !models.IsValidGender(client.Gender) {
		validation.add("gender", "Invalid gender.")
	}

	if client.BirthDate == "" {
		validation.add("birth_date", "Birth date is required.")
	} else if birthDate, err := time.ParseInLocation(models.BirthDateLayout, client.BirthDate, now.Location()); err != nil {
		validation.add("birth_date", "Birth date must use YYYY-MM-DD.")
	} else if birthDate.After(now) {
		validation.add("birth_date", "Birth date cannot be in the future.")
	}

	if client.BirthTime == "" {
		validation.add("birth_time", "Birth time is required.")
	} else if _, err := time.Parse(models.BirthTimeLayout, client.BirthTime); err != nil {
		validation.add("birth_time", "Birth time must use HH:MM.")
	}

	requireText(validation, "birth_place", "Birth place", client.BirthPlace, maxClientPlaceLength)

	client.BirthLatitude = parseCoordinate(validation, "birth_latitude", input.BirthLatitude, 90)
	client.BirthLongitude = parseCoordinate(validation, "birth_longitude", input.BirthLongitude, 180)

	if client.ContactEmail != "" {
		if _, err := mail.ParseAddress(client.ContactEmail); err != nil {
			validation.add("contact_email", "Invalid email address.")
		}
	}
	if len([]rune(client.Notes)) > maxClientNotesLength {
		validation.add("notes", "Notes are too long.")
	}

	if err := validation.orNil(); err != nil {
		return models.Client{}, err
	}
	return client, nil
}

func ValidateClientNotes(raw string) (string, error) {
	notes := strings.TrimSpace(raw)
	if len([]rune(notes)) > maxClientNotesLength {
		validation := &ValidationError{}
		validation.add("notes", "Notes are too long.")
		return "", validation
	}
	return notes, nil
}

func requireText(validation *ValidationError, field string, label string, value string, maxLength int) {
	if value == "" {
		validation.add(field, label+" is required.")
		return
	}
	if len([]rune(value)) > maxLength {
		validation.add(field, label+" is too long.")
	}
}

func parseCoordinate(validation *ValidationError, field string, raw string, limit float64) *float64 {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || value < -limit || value > limit {
		validation.add(field, "Invalid coordinate.")
		return nil
	}
	return &value
}

func formatCoordinate(value *float64) string {
	if value == nil {
		return ""
	}
	return strconv.FormatFloat(*value, 'f', -1, 64)
}

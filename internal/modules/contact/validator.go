package contact

import (
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Info is the contact data entered on the booking form.
type Info struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Result reports overall validity plus a per-field message map for
// inline display. An absent field means no error.
type Result struct {
	Valid  bool
	Errors map[string]string

	// Phone holds the E.164 form of the input when it validated,
	// preferred over NormalizePhone for the booking request.
	Phone string
}

const (
	msgNameRequired  = "Name is required."
	msgEmailRequired = "Email is required."
	msgEmailInvalid  = "Please enter a valid email address."
	msgPhoneInvalid  = "Please enter a valid phone number."
	msgPhoneFormat   = "Invalid phone number format."
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Validator checks contact info before a booking attempt. Region is the
// default dialing region for phone numbers without a country code; empty
// means only E.164 input parses.
type Validator struct {
	region string
}

func NewValidator(region string) *Validator {
	return &Validator{region: region}
}

// Validate never returns an error or panics: malformed input is a
// validation failure, not a crash.
func (v *Validator) Validate(info Info) Result {
	res := Result{Valid: true, Errors: map[string]string{}}

	if strings.TrimSpace(info.Name) == "" {
		res.Errors["name"] = msgNameRequired
		res.Valid = false
	}

	if strings.TrimSpace(info.Email) == "" {
		res.Errors["email"] = msgEmailRequired
		res.Valid = false
	} else if !emailPattern.MatchString(info.Email) {
		res.Errors["email"] = msgEmailInvalid
		res.Valid = false
	}

	num, err := phonenumbers.Parse(info.Phone, v.region)
	switch {
	case err != nil:
		res.Errors["phone"] = msgPhoneFormat
		res.Valid = false
	case !phonenumbers.IsValidNumber(num):
		res.Errors["phone"] = msgPhoneInvalid
		res.Valid = false
	default:
		res.Phone = phonenumbers.Format(num, phonenumbers.E164)
	}

	return res
}

// NormalizePhone strips a phone value down to digits and a leading plus,
// independent of display formatting.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '+' && b.Len() == 0 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

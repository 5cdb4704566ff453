package phone

import "github.com/nyaruka/phonenumbers"

const unknownRegion = "ZZ"

// Details is the display view of a phone number.
type Details struct {
	E164          string `json:"e164"`
	Valid         bool   `json:"valid"`
	Region        string `json:"region,omitempty"`
	International string `json:"international,omitempty"`
}

// Describe normalizes input with ToE164 and, when the result is a number the
// numbering plan knows, adds its region and international display format.
// The E164 and Valid fields are never altered by the lookup.
func Describe(input, defaultRegion string) Details {
	details := Details{
		E164:  ToE164(input),
		Valid: IsValidPhoneNumber(input),
	}
	if len(details.E164) < 2 {
		return details
	}

	num, err := phonenumbers.Parse(details.E164, defaultRegion)
	if err != nil {
		return details
	}

	if region := phonenumbers.GetRegionCodeForNumber(num); region != unknownRegion {
		details.Region = region
	}
	if details.Region != "" {
		details.International = phonenumbers.Format(num, phonenumbers.INTERNATIONAL)
	}
	return details
}

package domain

import "time"

// Provider identifies an external integration configured from the console.
type Provider string

const (
	ProviderSMTP     Provider = "smtp"
	ProviderSendGrid Provider = "sendgrid"
	ProviderTwilio   Provider = "twilio"
	ProviderBranding Provider = "branding"
)

// KnownProvider reports whether p is one of the supported providers.
func KnownProvider(p Provider) bool {
	switch p {
	case ProviderSMTP, ProviderSendGrid, ProviderTwilio, ProviderBranding:
		return true
	}
	return false
}

// ProviderSettings holds the credentials or branding values saved for a provider.
type ProviderSettings struct {
	Provider  Provider
	Values    map[string]string
	UpdatedBy string
	UpdatedAt time.Time
}

// ProviderStatus carries the configured/tested bookkeeping flags.
type ProviderStatus struct {
	Provider   Provider `json:"provider"`
	Configured bool     `json:"configured"`
	Tested     bool     `json:"tested"`
}

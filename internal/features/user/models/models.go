package models

import "time"

// DeviceInfo is the client device snapshot captured at registration. The
// fingerprint is the stable component used for fraud correlation.
type DeviceInfo struct {
	OS               string `json:"os"`
	Browser          string `json:"browser"`
	Model            string `json:"model"`
	Fingerprint      string `json:"fingerprint"`
	ScreenResolution string `json:"screen_resolution"`
	IsMobile         bool   `json:"is_mobile"`
}

// Welcome tracks the one-time welcome reward promised at registration. The
// bundle code is fixed at signup so the user claims exactly what they were
// shown.
type Welcome struct {
	IsClaimed  bool      `json:"is_claimed"`
	BundleCode string    `json:"bundle_code"`
	Date       time.Time `json:"date,omitempty"`
}

// User is the stored account profile. PhoneNumber holds the cipher-encoded
// form; it is only decoded at the service boundary.
type User struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	MNO         string `json:"mno"`

	Country   string `json:"country"`
	IPAddress string `json:"ip_address"`
	Timezone  string `json:"timezone"`
	Language  string `json:"language"`

	DeviceInfo DeviceInfo `json:"device_info"`
	UserAgent  string     `json:"user_agent"`
	IsDarkMode bool       `json:"is_dark_mode"`

	Welcome     Welcome `json:"is_new_user"`
	LoginMethod string  `json:"login_method"`
	Referrer    string  `json:"referrer,omitempty"`

	IsBlocked     bool `json:"is_blocked"`
	FraudDetected bool `json:"fraud_detected"`

	CreatedAt time.Time `json:"created_at"`
	LastLogin time.Time `json:"last_login"`
}

// DailyCounter is client-held state for per-day limited actions. The server
// validates it against the current date instead of persisting its own copy.
type DailyCounter struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Reset returns the counter valid for today, clearing counts carried over
// from a previous day.
func (c DailyCounter) Reset(today string) DailyCounter {
	if c.Date != today {
		return DailyCounter{Date: today}
	}
	return c
}

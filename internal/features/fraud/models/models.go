package models

// RegistrationInput carries everything the registration-time checks look at.
// Phone is the raw submitted number; normalization happens inside the gate.
type RegistrationInput struct {
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	Password          string `json:"password"`
	IP                string `json:"ip"`
	DeviceFingerprint string `json:"device_fingerprint"`
}

// Package timezone keeps the application timezone (APP_TIMEZONE, default UTC).
//
// It is loaded when the package is imported. Stored timestamps stay absolute; this
// package only decides how they are read from and shown to people:
//
//	at, err := timezone.Parse("2006-01-02 15:04", "2025-06-02 18:30")
//	timezone.Humanize(at) // "Monday, 02 June 2025 18:30 WIB"
//
// Use IANA names such as "UTC", "Asia/Jakarta" or "Europe/London".
package timezone

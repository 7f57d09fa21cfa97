package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

var API_ENV = os.Getenv("API_ENV")

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

// PaymentAPIURL is the base URL of the payment provider's REST API. Webhook
// bodies are never trusted; payment details are always re-fetched from here.
func PaymentAPIURL() string {
	return os.Getenv("PAYMENT_API_URL")
}

func PaymentAPIToken() string {
	return os.Getenv("PAYMENT_API_TOKEN")
}

// SiteURL is the public site address used to build transfer accept links.
func SiteURL() string {
	return os.Getenv("SITE_URL")
}

func MailFrom() (address string, name string) {
	address = os.Getenv("MAIL_FROM")
	name = os.Getenv("MAIL_FROM_NAME")
	if address == "" {
		address = "no-reply@gatepass.local"
	}
	if name == "" {
		name = "Gatepass"
	}
	return address, name
}

// TransferTTL is how long a pending transfer may sit before the sweep
// cancels it. Zero disables the sweep.
func TransferTTL() time.Duration {
	hours, err := strconv.Atoi(os.Getenv("TRANSFER_TTL_HOURS"))
	if err != nil || hours <= 0 {
		return 0
	}
	return time.Duration(hours) * time.Hour
}

const TIME_PARSE_FORMAT = "2006-01-02 15:04:05 -07:00"

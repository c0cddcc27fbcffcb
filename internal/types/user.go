package types

import (
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is a registered banking customer.
type User struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Phone             string    `json:"phone"`
	Village           string    `json:"village"`
	District          string    `json:"district"`
	State             string    `json:"state"`
	Pincode           string    `json:"pincode"`
	AadhaarNumber     string    `json:"-"`
	PreferredLanguage Language  `json:"preferred_language"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Account is a user's balance record.
type Account struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	Name          string    `json:"name"`
	WalletAddress string    `json:"wallet_address"`
	Balance       int64     `json:"balance"`
	Currency      string    `json:"currency"`
	LastUpdated   time.Time `json:"last_updated"`
}

// GenerateWalletAddress builds a human-readable wallet address from the first
// four characters of the holder's name (padded with X) plus four random digits.
func GenerateWalletAddress(name string) string {
	runes := []rune(strings.ToUpper(name) + "XXXX")
	return string(runes[:4]) + strconv.Itoa(1000+rand.Intn(9000))
}

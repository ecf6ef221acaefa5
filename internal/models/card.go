package models

import (
	"fmt"
	"strings"
	"time"
)

// CardType selects which shape of Data a card carries.
type CardType string

const (
	CardTypeBusiness CardType = "business"
	CardTypeBank     CardType = "bank"
	CardTypePersonal CardType = "personal"
)

// Card is a shareable digital card. Data is validated against the card type
// at the API boundary; the storage layer treats cards as opaque records.
type Card struct {
	ID        string    `json:"id"`
	Type      CardType  `json:"type"`
	Style     string    `json:"style"`
	Data      *CardData `json:"data,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UserID    string    `json:"userId,omitempty"` // empty for legacy/anonymous cards
}

// SocialLinks holds the optional social handles of a personal card.
type SocialLinks struct {
	Instagram string `json:"instagram,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
}

// CardData is the union of the per-type payloads. Which fields are required
// depends on the card type; everything else is optional.
type CardData struct {
	// business + personal
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Website string `json:"website,omitempty"`
	Address string `json:"address,omitempty"`
	Image   string `json:"image,omitempty"` // base64 or URL

	// business
	Title    string `json:"title,omitempty"`
	Company  string `json:"company,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`

	// bank
	AccountHolder string `json:"accountHolder,omitempty"`
	BankName      string `json:"bankName,omitempty"`
	AccountNumber string `json:"accountNumber,omitempty"`
	IFSCCode      string `json:"ifscCode,omitempty"`
	RoutingNumber string `json:"routingNumber,omitempty"`
	UPIID         string `json:"upiId,omitempty"`
	Logo          string `json:"logo,omitempty"`

	// personal
	Birthday string       `json:"birthday,omitempty"`
	Socials  *SocialLinks `json:"socials,omitempty"`
}

// requiredFields lists the data fields each card type must carry,
// by their JSON names.
var requiredFields = map[CardType][]string{
	CardTypeBusiness: {"name", "title", "company", "email", "phone"},
	CardTypeBank:     {"accountHolder", "bankName", "accountNumber"},
	CardTypePersonal: {"name", "email", "phone"},
}

// cardStyles enumerates the display variants valid for each card type.
var cardStyles = map[CardType][]string{
	CardTypeBusiness: {"style1", "style2", "style3", "style4"},
	CardTypeBank:     {"style1", "style2", "style3"},
	CardTypePersonal: {"style1", "style2", "style3", "style4"},
}

// field returns the value of a data field by its JSON name.
func (d *CardData) field(name string) string {
	switch name {
	case "name":
		return d.Name
	case "title":
		return d.Title
	case "company":
		return d.Company
	case "email":
		return d.Email
	case "phone":
		return d.Phone
	case "accountHolder":
		return d.AccountHolder
	case "bankName":
		return d.BankName
	case "accountNumber":
		return d.AccountNumber
	default:
		return ""
	}
}

// Validate checks type, style, and the required per-type data fields.
// The returned error message is surfaced verbatim to the client.
func (c *Card) Validate() error {
	if c.Type == "" {
		return fmt.Errorf("Missing required field: type")
	}
	styles, ok := cardStyles[c.Type]
	if !ok {
		return fmt.Errorf("Invalid card type: %s", c.Type)
	}
	if c.Style == "" {
		return fmt.Errorf("Missing required field: style")
	}
	if !contains(styles, c.Style) {
		return fmt.Errorf("Invalid style for %s card: %s", c.Type, c.Style)
	}
	if c.Data == nil {
		return fmt.Errorf("Missing required field: data")
	}
	for _, name := range requiredFields[c.Type] {
		if strings.TrimSpace(c.Data.field(name)) == "" {
			return fmt.Errorf("Missing required field: %s", name)
		}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

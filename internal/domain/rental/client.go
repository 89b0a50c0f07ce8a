package rental

import (
	"strings"

	"github.com/loca-mat/service-rental/internal/domain"
)

// Client is a customer of the rental fleet. The VIP flag grants an
// additional pricing discount and is the only field mutable once the client
// is referenced by a contract.
type Client struct {
	id        uint64
	firstName string
	lastName  string
	email     string
	phone     string
	address   string
	vip       bool
}

// NewClient creates a new client with validated fields.
func NewClient(firstName, lastName, email, phone, address string, vip bool) (*Client, error) {
	if firstName == "" {
		return nil, domain.NewValidationError("first name is required")
	}
	if lastName == "" {
		return nil, domain.NewValidationError("last name is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.NewValidationError("a valid email is required")
	}

	return &Client{
		firstName: firstName,
		lastName:  lastName,
		email:     strings.ToLower(email),
		phone:     phone,
		address:   address,
		vip:       vip,
	}, nil
}

// ReconstructClient rebuilds a Client from persistence data (no validation).
func ReconstructClient(id uint64, firstName, lastName, email, phone, address string, vip bool) *Client {
	return &Client{
		id:        id,
		firstName: firstName,
		lastName:  lastName,
		email:     email,
		phone:     phone,
		address:   address,
		vip:       vip,
	}
}

// --- Getters ---

func (c *Client) ID() uint64        { return c.id }
func (c *Client) FirstName() string { return c.firstName }
func (c *Client) LastName() string  { return c.lastName }
func (c *Client) Email() string     { return c.email }
func (c *Client) Phone() string     { return c.phone }
func (c *Client) Address() string   { return c.address }
func (c *Client) IsVIP() bool       { return c.vip }

// SetVIP toggles the VIP pricing flag.
func (c *Client) SetVIP(vip bool) {
	c.vip = vip
}

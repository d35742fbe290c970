package domain

import "time"

// Customer is a plain CRM record managed through the portal. It carries no
// credential state; accounts and customers are unrelated aggregates.
type Customer struct {
	ID        string
	Name      string
	Address   string
	Phone     string
	CreatedAt time.Time
}

package entity

import "time"

// Ruoli validi per User.
const (
	RoleAdmin     = "admin"
	RoleOperatore = "operatore" // front desk: vendite e anagrafiche
	RoleContabile = "contabile" // fatturazione, invii SdI, conservazione
)

// User rappresenta un utente del sistema (appartiene a una Company).
type User struct {
	ID           string
	CompanyID    string
	Email        string
	PasswordHash string // hash bcrypt, mai in chiaro dopo la persistenza
	Name         string
	Role         string // admin, operatore, contabile
	Status       string // active, inactive, suspended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

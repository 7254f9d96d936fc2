package model

import "time"

type User struct {
	ID            string     `db:"id" json:"id"`
	Email         string     `db:"email" json:"email"`
	PasswordHash  string     `db:"password_hash" json:"-"`
	Nom           string     `db:"nom" json:"nom"`
	Prenom        string     `db:"prenom" json:"prenom"`
	Telephone     string     `db:"telephone" json:"telephone"`
	NumIdentite   *string    `db:"num_identite" json:"num_identite"`
	DateNaissance *time.Time `db:"date_naissance" json:"date_naissance"`
	LieuNaissance *string    `db:"lieu_naissance" json:"lieu_naissance"`
	Ville         *string    `db:"ville" json:"ville"`
	Pays          *string    `db:"pays" json:"pays"`
	Role          UserRole   `db:"role" json:"role"`
	TicketNumber  *string    `db:"ticket_number" json:"ticket_number"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// FullName is the display name stored on tracking sessions.
func (u *User) FullName() string {
	return u.Prenom + " " + u.Nom
}

type CreateUserParams struct {
	Email         string
	PasswordHash  string
	Nom           string
	Prenom        string
	Telephone     string
	NumIdentite   *string
	DateNaissance *time.Time
	LieuNaissance *string
	Ville         *string
	Pays          *string
	Role          UserRole
	TicketNumber  *string
}

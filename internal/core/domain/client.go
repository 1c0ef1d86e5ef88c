package domain

import "time"

// Client is a company record. It has no owning principal.
type Client struct {
	ID         string    `json:"id"`
	NomSociete string    `json:"nom_societe"`
	Adresse    string    `json:"adresse"`
	Nom        *string   `json:"nom"`
	Prenom     *string   `json:"prenom"`
	Numero     *string   `json:"numero"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

package entity

import "time"

// Category agrupa productos (papelería, cables, tóner...). Name es único sin distinguir mayúsculas.
type Category struct {
	ID        string
	Name      string
	Slug      string // único, apto para URL
	CreatedAt time.Time
}

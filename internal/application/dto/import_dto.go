package dto

// ImportResult resumen de una importación masiva.
// LastCommittedLine es la última línea cuyo bloque quedó confirmado; sirve como punto de
// reanudación si la importación se corta por un fallo de almacenamiento.
type ImportResult struct {
	Created           int      `json:"count"`
	NewCategories     int      `json:"new_categories_count"`
	NewProducts       int      `json:"new_products_count"`
	Errors            []string `json:"errors"`
	LastCommittedLine int      `json:"last_committed_line"`
}

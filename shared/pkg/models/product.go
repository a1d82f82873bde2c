package models

import "time"

type Category string

const (
	CategoryVideoGames Category = "videojuegos"
	CategoryFigures    Category = "figuras"
)

var Categories = []Category{CategoryVideoGames, CategoryFigures}

func (c Category) Valid() bool {
	switch c {
	case CategoryVideoGames, CategoryFigures:
		return true
	}
	return false
}

type Product struct {
	ID          int64     `json:"id_producto"`
	Name        string    `json:"nombre"`
	Description string    `json:"descripcion"`
	Price       Money     `json:"precio"`
	Stock       int       `json:"stock"`
	Brand       string    `json:"marca"`
	Category    Category  `json:"categoria"`
	Image       string    `json:"imagen"`
	CreatedBy   int64     `json:"id_usuario"`
	CreatedAt   time.Time `json:"fecha_creacion"`
	UpdatedAt   time.Time `json:"fecha_actualizacion"`
}

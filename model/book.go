// model/book.go
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type AgeGroup string

const (
	AgeChild AgeGroup = "CHILD"
	AgeTeen  AgeGroup = "TEEN"
	AgeAdult AgeGroup = "ADULT"
	AgeOther AgeGroup = "OTHER"
)

type Language string

const (
	LangEnglish   Language = "ENGLISH"
	LangUkrainian Language = "UKRAINIAN"
	LangOther     Language = "OTHER"
)

// Book is a catalog record. Orders snapshot name and price at checkout,
// so editing or deleting a book never rewrites past receipts.
type Book struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Author          string          `json:"author"`
	Genre           string          `json:"genre"`
	AgeGroup        AgeGroup        `json:"age_group"`
	Language        Language        `json:"language"`
	Pages           int             `json:"pages"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	PublicationDate time.Time       `json:"publication_date"`
	ImagePath       *string         `json:"image_path,omitempty"`
}

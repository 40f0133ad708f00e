package book

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wixieee/BookStore/model"
)

type BookReq struct {
	Name            string `json:"name" validate:"required"`
	Author          string `json:"author" validate:"required"`
	Genre           string `json:"genre" validate:"required"`
	AgeGroup        string `json:"age_group" validate:"required,oneof=CHILD TEEN ADULT OTHER"`
	Language        string `json:"language" validate:"required"`
	Pages           int    `json:"pages" validate:"required,gt=0"`
	Description     string `json:"description"`
	Price           string `json:"price" validate:"required"`
	PublicationDate string `json:"publication_date" validate:"required,datetime=2006-01-02"`
	ImagePath       string `json:"image_path"`
}

func (r BookReq) toModel() (*model.Book, error) {
	price, err := decimal.NewFromString(r.Price)
	if err != nil {
		return nil, err
	}
	pub, err := time.Parse("2006-01-02", r.PublicationDate)
	if err != nil {
		return nil, err
	}
	b := &model.Book{
		Name:            r.Name,
		Author:          r.Author,
		Genre:           r.Genre,
		AgeGroup:        model.AgeGroup(r.AgeGroup),
		Language:        model.Language(r.Language),
		Pages:           r.Pages,
		Description:     r.Description,
		Price:           price,
		PublicationDate: pub,
	}
	if r.ImagePath != "" {
		b.ImagePath = &r.ImagePath
	}
	return b, nil
}

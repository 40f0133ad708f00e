package cart

type AddBookReq struct {
	BookName   string `json:"book_name" validate:"required"`
	BookAuthor string `json:"book_author" validate:"required"`
	Quantity   int    `json:"quantity" validate:"omitempty,gt=0"`
}

type SetQuantityReq struct {
	Quantity int `json:"quantity"`
}

// app/echoServer/paging/paging.go
package paging

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/wixieee/BookStore/model"
)

// FromQuery reads page/size/sort/desc query params. Out-of-range
// values are clamped by PageRequest.Normalize in the repositories.
func FromQuery(c echo.Context) model.PageRequest {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	desc, _ := strconv.ParseBool(c.QueryParam("desc"))
	return model.PageRequest{
		Page: page,
		Size: size,
		Sort: c.QueryParam("sort"),
		Desc: desc,
	}
}

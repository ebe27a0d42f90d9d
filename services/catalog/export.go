package catalog

import (
	"context"
	"io"
	"strings"

	"github.com/junaidrashid-git/swiftcart-api/auth"
	"github.com/junaidrashid-git/swiftcart-api/models"
	"github.com/tealeg/xlsx"
)

var exportHeaders = []string{
	"ID", "Title", "Brand", "Category", "Price", "OriginalPrice", "Discount",
	"Rating", "ReviewsCount", "Trending", "Colors", "Image",
}

// ExportProducts writes the product collection as an .xlsx workbook.
func (s *Service) ExportProducts(ctx context.Context, session *auth.Session, w io.Writer) error {
	if !session.IsAdmin() {
		return ErrForbidden
	}
	products, err := s.products.Load(ctx)
	if err != nil {
		return err
	}
	file, err := productWorkbook(products)
	if err != nil {
		return err
	}
	return file.Write(w)
}

func productWorkbook(products []models.Product) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return nil, err
	}

	header := sheet.AddRow()
	for _, h := range exportHeaders {
		header.AddCell().SetValue(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetValue(p.ID)
		row.AddCell().SetValue(p.Title)
		row.AddCell().SetValue(p.Brand)
		row.AddCell().SetValue(p.Category)
		row.AddCell().SetValue(p.Price)
		row.AddCell().SetValue(p.OriginalPrice)
		row.AddCell().SetValue(Discount(p))
		row.AddCell().SetValue(p.Rating)
		row.AddCell().SetValue(p.ReviewsCount)
		row.AddCell().SetBool(p.Trending)
		row.AddCell().SetValue(strings.Join(p.Colors, ","))
		row.AddCell().SetValue(p.Image)
	}
	return file, nil
}

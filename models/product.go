package models

import "time"

type Product struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Price         float64  `json:"price"`
	OriginalPrice float64  `json:"originalPrice"`
	Category      string   `json:"category"`
	Image         string   `json:"image"`
	Gallery       []string `json:"gallery"`
	Rating        float64  `json:"rating"` // 0..5
	ReviewsCount  int      `json:"reviewsCount"`
	Reviews       []Review `json:"reviews"`
	Trending      bool     `json:"trending"`
	Brand         string   `json:"brand"`
	Colors        []string `json:"colors"`
	Custom        bool     `json:"isCustom"`
}

// Review belongs to exactly one product. Only Likes changes after creation.
type Review struct {
	ID                string    `json:"id"`
	UserID            string    `json:"userId"`
	UserName          string    `json:"userName"`
	Rating            int       `json:"rating"` // 1..5
	Comment           string    `json:"comment"`
	Date              time.Time `json:"date"`
	Likes             int       `json:"likes"`
	CertifiedPurchase bool      `json:"certifiedPurchase"`
}

package model

import (
	"time"

	g "github.com/tu-csb/csbench/generator"
)

// Item is one sellable article. The price fields are the only entity state
// the run phase ever mutates (price-update operation).
type Item struct {
	ID          string
	Title       string
	PubDate     time.Time
	Publisher   string
	Subject     string
	Description string
	SRP         float64
	Cost        float64
	ISBN        string
	PageCount   int
}

// NewRandomItem builds a fully populated item with a fresh unique id.
// Cost is always at or below the suggested retail price.
func NewRandomItem(rs *g.RandomStream) *Item {
	srp := rs.FloatBetween(5, 120)
	return &Item{
		ID:          rs.UUID(),
		Title:       rs.StringWithLength(5, 60),
		PubDate:     millisToTime(rs.Int63Between(1, time.Now().UnixNano()/int64(time.Millisecond))),
		Publisher:   rs.StringWithLength(5, 60),
		Subject:     rs.StringWithLength(5, 60),
		Description: rs.StringWithLength(60, 500),
		SRP:         srp,
		Cost:        srp * rs.FloatBetween(0.5, 1),
		ISBN:        rs.StringWithLength(12, 13),
		PageCount:   rs.IntBetween(10, 1800),
	}
}

func (self *Item) TableName() string {
	return "item"
}

func (self *Item) InsertColumns() []string {
	return []string{
		"i_id", "i_title", "i_pub_date", "i_publisher", "i_subject",
		"i_desc", "i_srp", "i_cost", "i_isbn", "i_page",
	}
}

func (self *Item) InsertArgs() []interface{} {
	return []interface{}{
		self.ID, self.Title, self.PubDate, self.Publisher, self.Subject,
		self.Description, self.SRP, self.Cost, self.ISBN, self.PageCount,
	}
}

func (self *Item) PrimaryKey() (string, string) {
	return "i_id", self.ID
}

func (self *Item) ScanFrom(row RowScanner) error {
	return row.Scan(
		&self.ID, &self.Title, &self.PubDate, &self.Publisher, &self.Subject,
		&self.Description, &self.SRP, &self.Cost, &self.ISBN, &self.PageCount,
	)
}

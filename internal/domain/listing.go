// internal/domain/listing.go
package domain

// ListingReference is what a list page tells us about one listing card.
// Empty strings mean the attribute was missing from the markup.
type ListingReference struct {
	ListingID   string `json:"listingId,omitempty"`
	ListingHref string `json:"listingHref,omitempty"`
}

// PaginationCursor is the pagination state read from a list page.
// An empty NextPageHref marks the last page.
type PaginationCursor struct {
	CurrentPageNumber string `json:"currentPageNumber,omitempty"`
	NextPageHref      string `json:"nextPageHref,omitempty"`
}

// HasNext reports whether the crawl should continue past this page.
func (c PaginationCursor) HasNext() bool {
	return c.NextPageHref != ""
}

// ListPageResult holds everything extracted from one list page, listings in
// document order.
type ListPageResult struct {
	Pagination PaginationCursor   `json:"pagination"`
	Listings   []ListingReference `json:"listings"`
}

// DetailFields are the attributes extracted from a detail page. Price, Area
// and Rooms are nil when no labeled span matched their marker.
type DetailFields struct {
	Title  string  `json:"title"`
	Price  *string `json:"price,omitempty"`
	Area   *string `json:"area,omitempty"`
	Rooms  *string `json:"rooms,omitempty"`
	Agency bool    `json:"agency"`
}

// ListingRecord is the final, immutable output for one listing.
type ListingRecord struct {
	ListingID   string  `json:"listingId,omitempty"`
	ListingHref string  `json:"listingHref,omitempty"`
	URL         string  `json:"url"`
	Title       string  `json:"title"`
	Price       *string `json:"price,omitempty"`
	Area        *string `json:"area,omitempty"`
	Rooms       *string `json:"rooms,omitempty"`
	Agency      bool    `json:"agency"`
}

// NewListingRecord merges a reference, its parsed detail fields and the
// resolved absolute URL.
func NewListingRecord(ref ListingReference, fields DetailFields, url string) ListingRecord {
	return ListingRecord{
		ListingID:   ref.ListingID,
		ListingHref: ref.ListingHref,
		URL:         url,
		Title:       fields.Title,
		Price:       fields.Price,
		Area:        fields.Area,
		Rooms:       fields.Rooms,
		Agency:      fields.Agency,
	}
}

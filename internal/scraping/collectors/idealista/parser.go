// internal/scraping/collectors/idealista/parser.go
package idealista

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ps-vitor/imoveis-crawler/internal/config"
	"github.com/ps-vitor/imoveis-crawler/internal/domain"
)

const (
	selCurrentPage = "li.selected span"
	selNextPage    = ".next a"
	selListingCard = ".item"
	selListingLink = ".item-link"
	attrListingID  = "data-adid"

	selTitle          = ".main-info h1"
	selInfoSpan       = ".info-data span"
	selBigText        = ".txt-big"
	selProfessionalAd = ".advertiser-data .professional-name"
)

// Parser extracts list and detail data from the site's server-rendered HTML.
// It holds no mutable state and is safe for concurrent use.
type Parser struct {
	markers config.MarkersConfig
}

func NewParser(markers config.MarkersConfig) *Parser {
	def := config.DefaultMarkers()
	if markers.Price == "" {
		markers.Price = def.Price
	}
	if markers.Area == "" {
		markers.Area = def.Area
	}
	if markers.Rooms == "" {
		markers.Rooms = def.Rooms
	}
	return &Parser{markers: markers}
}

func newDocument(body string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// ParseListPage returns nil when body is empty. Missing attributes on a card
// become empty fields, never errors.
func (p *Parser) ParseListPage(body string) (*domain.ListPageResult, error) {
	if body == "" {
		return nil, nil
	}
	doc, err := newDocument(body)
	if err != nil {
		return nil, err
	}

	nextHref, _ := doc.Find(selNextPage).First().Attr("href")
	result := &domain.ListPageResult{
		Pagination: domain.PaginationCursor{
			CurrentPageNumber: strings.TrimSpace(doc.Find(selCurrentPage).Text()),
			NextPageHref:      strings.TrimSpace(nextHref),
		},
		Listings: []domain.ListingReference{},
	}

	doc.Find(selListingCard).Each(func(_ int, card *goquery.Selection) {
		id, _ := card.Attr(attrListingID)
		href, _ := card.Find(selListingLink).First().Attr("href")
		result.Listings = append(result.Listings, domain.ListingReference{
			ListingID:   strings.TrimSpace(id),
			ListingHref: strings.TrimSpace(href),
		})
	})

	return result, nil
}

// ParseDetailPage returns nil when body is empty. Each labeled span is
// classified on its own; when several spans match one marker the last wins.
func (p *Parser) ParseDetailPage(body string) (*domain.DetailFields, error) {
	if body == "" {
		return nil, nil
	}
	doc, err := newDocument(body)
	if err != nil {
		return nil, err
	}

	fields := &domain.DetailFields{
		Title: strings.TrimSpace(doc.Find(selTitle).Text()),
	}

	doc.Find(selInfoSpan).Each(func(_ int, span *goquery.Selection) {
		text := span.Text()
		value := func() *string {
			v := span.Find(selBigText).Text()
			return &v
		}
		if strings.Contains(text, p.markers.Price) {
			fields.Price = value()
		}
		if strings.Contains(text, p.markers.Area) {
			fields.Area = value()
		}
		if strings.Contains(text, p.markers.Rooms) {
			fields.Rooms = value()
		}
	})

	fields.Agency = doc.Find(selProfessionalAd).Length() > 0
	return fields, nil
}

package idealista

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ps-vitor/imoveis-crawler/internal/config"
	"github.com/ps-vitor/imoveis-crawler/internal/domain"
)

const listPageWithNext = `<html><body>
	<section class="items-container">
		<article class="item" data-adid="101">
			<div class="item-info-container"><a class="item-link" href="/a">Piso en Sol</a></div>
		</article>
		<article class="item" data-adid="102">
			<div class="item-info-container"><a class="item-link" href="/b">Ático en Chueca</a></div>
		</article>
	</section>
	<div class="pagination"><ul>
		<li class="selected"><span>1</span></li>
		<li><a href="/page2">2</a></li>
		<li class="next"><a href="/page2">Siguiente</a></li>
	</ul></div>
</body></html>`

const lastListPage = `<html><body>
	<article class="item" data-adid="301"><a class="item-link" href="/c">C</a></article>
	<div class="pagination"><ul><li class="selected"><span>3</span></li></ul></div>
</body></html>`

const detailPage = `<html><body>
	<div class="main-info">
		<h1>
			Piso en calle de Alcalá, Madrid
		</h1>
	</div>
	<div class="info-data">
		<span><span class="txt-big">650</span> €/mes</span>
		<span><span class="txt-big">60</span> m²</span>
		<span><span class="txt-big">2</span> hab.</span>
	</div>
	<div class="advertiser-data"><div class="professional-name">Inmobiliaria Centro</div></div>
</body></html>`

func newTestParser() *Parser {
	return NewParser(config.MarkersConfig{})
}

func TestParseListPage_ListingsAndNext(t *testing.T) {
	res, err := newTestParser().ParseListPage(listPageWithNext)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, "/page2", res.Pagination.NextPageHref)
	assert.Equal(t, "1", res.Pagination.CurrentPageNumber)
	assert.True(t, res.Pagination.HasNext())
	assert.Equal(t, []domain.ListingReference{
		{ListingID: "101", ListingHref: "/a"},
		{ListingID: "102", ListingHref: "/b"},
	}, res.Listings)
}

func TestParseListPage_NoNext(t *testing.T) {
	res, err := newTestParser().ParseListPage(lastListPage)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Empty(t, res.Pagination.NextPageHref)
	assert.False(t, res.Pagination.HasNext())
	assert.Len(t, res.Listings, 1)
}

func TestParseListPage_EmptyLastPage(t *testing.T) {
	res, err := newTestParser().ParseListPage(`<html><body><p>Sin resultados</p></body></html>`)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Empty(t, res.Listings)
	assert.False(t, res.Pagination.HasNext())
}

func TestParseListPage_MissingAttributes(t *testing.T) {
	body := `<html><body>
		<article class="item"><a class="item-link" href="/x">x</a></article>
		<article class="item" data-adid="7"><span>no link</span></article>
	</body></html>`

	res, err := newTestParser().ParseListPage(body)
	require.NoError(t, err)
	assert.Equal(t, []domain.ListingReference{
		{ListingID: "", ListingHref: "/x"},
		{ListingID: "7", ListingHref: ""},
	}, res.Listings)
}

func TestParseListPage_EmptyBody(t *testing.T) {
	res, err := newTestParser().ParseListPage("")
	assert.NoError(t, err)
	assert.Nil(t, res)
}

func TestParseListPage_WhitespaceBodyIsLastPage(t *testing.T) {
	res, err := newTestParser().ParseListPage("  \n\t")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Empty(t, res.Listings)
	assert.False(t, res.Pagination.HasNext())
}

func TestParseListPage_Idempotent(t *testing.T) {
	p := newTestParser()
	first, err := p.ParseListPage(listPageWithNext)
	require.NoError(t, err)
	second, err := p.ParseListPage(listPageWithNext)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestParseDetailPage_AllFields(t *testing.T) {
	fields, err := newTestParser().ParseDetailPage(detailPage)
	require.NoError(t, err)
	require.NotNil(t, fields)

	assert.Equal(t, "Piso en calle de Alcalá, Madrid", fields.Title)
	require.NotNil(t, fields.Price)
	require.NotNil(t, fields.Area)
	require.NotNil(t, fields.Rooms)
	assert.Equal(t, "650", *fields.Price)
	assert.Equal(t, "60", *fields.Area)
	assert.Equal(t, "2", *fields.Rooms)
	assert.True(t, fields.Agency)
}

func TestParseDetailPage_NoMatchesNoAgency(t *testing.T) {
	body := `<html><body>
		<div class="main-info"><h1>Estudio</h1></div>
		<div class="info-data"><span>Planta 3ª exterior</span></div>
		<div class="advertiser-data"><span class="particular">Particular</span></div>
	</body></html>`

	fields, err := newTestParser().ParseDetailPage(body)
	require.NoError(t, err)
	assert.Equal(t, "Estudio", fields.Title)
	assert.Nil(t, fields.Price)
	assert.Nil(t, fields.Area)
	assert.Nil(t, fields.Rooms)
	assert.False(t, fields.Agency)
}

func TestParseDetailPage_LastMatchWins(t *testing.T) {
	body := `<html><body>
		<div class="info-data">
			<span><span class="txt-big">650</span> €/mes</span>
			<span><span class="txt-big">700</span> €/mes</span>
		</div>
	</body></html>`

	fields, err := newTestParser().ParseDetailPage(body)
	require.NoError(t, err)
	require.NotNil(t, fields.Price)
	assert.Equal(t, "700", *fields.Price)
	assert.Empty(t, fields.Title)
}

func TestParseDetailPage_MatchWithoutBigText(t *testing.T) {
	body := `<html><body><div class="info-data"><span>80 m²</span></div></body></html>`

	fields, err := newTestParser().ParseDetailPage(body)
	require.NoError(t, err)
	require.NotNil(t, fields.Area)
	assert.Equal(t, "", *fields.Area)
}

func TestParseDetailPage_CustomMarkers(t *testing.T) {
	body := `<html><body><div class="info-data">
		<span><span class="txt-big">900</span> €/mês</span>
	</div></body></html>`

	p := NewParser(config.MarkersConfig{Price: "€/mês"})
	fields, err := p.ParseDetailPage(body)
	require.NoError(t, err)
	require.NotNil(t, fields.Price)
	assert.Equal(t, "900", *fields.Price)
}

func TestParseDetailPage_EmptyBody(t *testing.T) {
	fields, err := newTestParser().ParseDetailPage("")
	assert.NoError(t, err)
	assert.Nil(t, fields)
}

func TestParseDetailPage_WhitespaceBodyIsNotNull(t *testing.T) {
	fields, err := newTestParser().ParseDetailPage(" \n ")
	require.NoError(t, err)
	require.NotNil(t, fields)
	assert.Empty(t, fields.Title)
	assert.Nil(t, fields.Price)
}

func TestParseDetailPage_Idempotent(t *testing.T) {
	p := newTestParser()
	first, err := p.ParseDetailPage(detailPage)
	require.NoError(t, err)
	second, err := p.ParseDetailPage(detailPage)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestParseDetailPage_ShippedPortugueseMarkers(t *testing.T) {
	cfg, err := config.LoadDir("../../../../configs")
	require.NoError(t, err)
	site, ok := cfg.Site("lisboa-arrendar")
	require.True(t, ok)

	fields, err := NewParser(site.Markers).ParseDetailPage(`<html><body>
		<div class="main-info"><h1>T2 em Lisboa</h1></div>
		<div class="info-data">
			<span><span class="txt-big">1200</span> €/mês</span>
			<span><span class="txt-big">75</span> m²</span>
			<span><span class="txt-big">2</span> quartos</span>
			<span><span class="txt-big">Sim</span> Terraço</span>
		</div>
	</body></html>`)

	require.NoError(t, err)
	require.NotNil(t, fields.Rooms)
	assert.Equal(t, "2", *fields.Rooms)
	require.NotNil(t, fields.Price)
	assert.Equal(t, "1200", *fields.Price)
}

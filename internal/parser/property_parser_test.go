package parser

import (
	"testing"

	"github.com/property-sync/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<properties>
  <property>
    <id>1</id>
    <Title>Sea view flat</Title>
    <Features>
      <Feature>Balcony</Feature>
      <Feature>Parking</Feature>
    </Features>
    <Images>
      <Image>https://img.example/1a.jpg</Image>
    </Images>
    <geopoints>
      <Longitude>23.72</Longitude>
      <Latitude>37.98</Latitude>
    </geopoints>
    <Price>250000</Price>
  </property>
  <property>
    <id>2</id>
    <Title/>
    <Price>99000</Price>
  </property>
</properties>`

func TestParse_RecordCountAndOrder(t *testing.T) {
	records, err := Parse([]byte(sampleFeed))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t,
		[]string{"id", "Title", "Features", "Images", "Longitude", "Latitude", "Price"},
		records[0].Names())
	assert.Equal(t, []string{"id", "Title", "Price"}, records[1].Names())
}

func TestParse_Features(t *testing.T) {
	records, err := Parse([]byte(`<r><property><Features><F>a</F><F>b</F><F>a</F></Features></property></r>`))
	require.NoError(t, err)
	require.Len(t, records, 1)

	v, ok := records[0].Get("Features")
	require.True(t, ok)
	list, ok := v.List()
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b", "a"}, list)
}

func TestParse_GeopointsFlattened(t *testing.T) {
	records, err := Parse([]byte(sampleFeed))
	require.NoError(t, err)

	rec := records[0]
	_, hasGeo := rec.Get("geopoints")
	assert.False(t, hasGeo)

	lon, _ := rec.Get("Longitude")
	lat, _ := rec.Get("Latitude")
	assert.True(t, lon.Equal(models.Text("23.72")))
	assert.True(t, lat.Equal(models.Text("37.98")))
}

func TestParse_MissingCoordinate(t *testing.T) {
	_, err := Parse([]byte(`<r><property><geopoints><Longitude>1</Longitude></geopoints></property></r>`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingField)
	assert.Contains(t, err.Error(), "geopoints/Latitude")
}

func TestParse_EmptyCoordinateIsNull(t *testing.T) {
	records, err := Parse([]byte(`<r><property><geopoints><Longitude/><Latitude>2</Latitude></geopoints></property></r>`))
	require.NoError(t, err)
	lon, ok := records[0].Get("Longitude")
	require.True(t, ok)
	assert.True(t, lon.IsNull())
}

func TestParse_SelfClosingIsNull(t *testing.T) {
	records, err := Parse([]byte(sampleFeed))
	require.NoError(t, err)

	title, ok := records[1].Get("Title")
	require.True(t, ok)
	assert.True(t, title.IsNull())
}

func TestParse_NoProperties(t *testing.T) {
	for _, doc := range []string{`<properties/>`, `<properties><other>x</other></properties>`} {
		records, err := Parse([]byte(doc))
		require.NoError(t, err)
		assert.NotNil(t, records)
		assert.Empty(t, records)
	}
}

func TestParse_OnlyDirectChildrenOfRoot(t *testing.T) {
	records, err := Parse([]byte(`<r><group><property><id>9</id></property></group><property><id>1</id></property></r>`))
	require.NoError(t, err)
	require.Len(t, records, 1)
	id, _ := records[0].Get("id")
	assert.True(t, id.Equal(models.Text("1")))
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty input", ``},
		{"whitespace only", "  \n "},
		{"unclosed element", `<r><property><id>1</id></r>`},
		{"truncated", `<r><property><id>1</id>`},
		{"two roots", `<r/><r/>`},
		{"trailing text", `<r/>junk`},
		{"not xml", `{"json": true}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := Parse([]byte(tt.doc))
			assert.ErrorIs(t, err, ErrParse)
			assert.Nil(t, records)
		})
	}
}

func TestParse_DirectTextOnly(t *testing.T) {
	records, err := Parse([]byte(`<r><property><Address>Main St <b>12</b> tail</Address></property></r>`))
	require.NoError(t, err)
	addr, _ := records[0].Get("Address")
	text, ok := addr.Text()
	require.True(t, ok)
	assert.Equal(t, "Main St ", text)
}

func TestParse_DuplicateTagKeepsFirstPosition(t *testing.T) {
	records, err := Parse([]byte(`<r><property><a>1</a><b>2</b><a>3</a></property></r>`))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, records[0].Names())
	a, _ := records[0].Get("a")
	assert.True(t, a.Equal(models.Text("3")))
}

func TestParse_Latin1(t *testing.T) {
	doc := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><r><property><City>Ath\xe8nes</City></property></r>"
	records, err := Parse([]byte(doc))
	require.NoError(t, err)
	city, _ := records[0].Get("City")
	assert.True(t, city.Equal(models.Text("Athènes")))
}

func TestParse_UnknownEncoding(t *testing.T) {
	_, err := Parse([]byte(`<?xml version="1.0" encoding="x-no-such-charset"?><r/>`))
	assert.ErrorIs(t, err, ErrParse)
}

func TestParse_CustomRules(t *testing.T) {
	rules := Rules{
		RecordElement: "listing",
		ListFields:    []string{"Tags"},
		Nested:        []NestedRule{{Element: "location", Fields: []string{"lat", "lng"}}},
	}
	p := NewPropertyParser(rules)

	records, err := p.Parse([]byte(`<feed>
		<listing><Tags><t>new</t></Tags><location><lng>1</lng><lat>2</lat></location></listing>
		<property><id>ignored</id></property>
	</feed>`))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"Tags", "lat", "lng"}, records[0].Names())
}

func TestParse_ByteOrderMark(t *testing.T) {
	feed := "\xef\xbb\xbf<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n" +
		"<properties><property><id>1</id></property><property><id>2</id></property></properties>"

	records, err := Parse([]byte(feed))
	require.NoError(t, err)
	require.Len(t, records, 2)
	id, _ := records[1].Get("id")
	assert.Equal(t, models.Text("2"), id)
}

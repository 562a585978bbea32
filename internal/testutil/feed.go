package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// SampleFeed is a two-property listing feed with list and nested fields.
const SampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<properties>
  <property>
    <id>1</id>
    <Title>Sea view flat</Title>
    <Features><Feature>pool</Feature><Feature>garden</Feature></Features>
    <geopoints><Longitude>23.72</Longitude><Latitude>37.98</Latitude></geopoints>
  </property>
  <property>
    <id>2</id>
    <Title>Loft</Title>
    <Features/>
    <geopoints><Longitude>22.94</Longitude><Latitude>40.64</Latitude></geopoints>
  </property>
</properties>`

// ServeFeed starts a server answering every request with body as XML.
// The server is closed when the test ends.
func ServeFeed(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

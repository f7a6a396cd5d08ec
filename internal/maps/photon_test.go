package maps

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haul/internal/types"
)

const photonBody = `{"type":"FeatureCollection","features":[
 {"type":"Feature","geometry":{"type":"Point","coordinates":[10.1815,36.8065]},
  "properties":{"osm_id":42,"osm_type":"W","name":"Avenue Habib Bourguiba","city":"Tunis","postcode":"1000","country":"Tunisia","countrycode":"tn"}},
 {"type":"Feature","geometry":{"type":"Point","coordinates":[10.6369,35.8256]},
  "properties":{"osm_id":7,"osm_type":"N","street":"Rue de Paris","housenumber":"12","city":"Sousse","country":"Tunisia"}}]}`

func TestPhotonClient_Autocomplete(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		_, _ = w.Write([]byte(photonBody))
	}))
	defer srv.Close()

	c := NewPhotonClient(PhotonConfig{BaseURL: srv.URL, Language: "fr"})
	near := types.Point{Lat: 36.8, Lng: 10.2}
	places, err := c.Autocomplete(context.Background(), AutocompleteRequest{Query: "avenue", Near: &near, Limit: 5})
	require.NoError(t, err)
	require.Len(t, places, 2)

	assert.Equal(t, "/api", got.URL.Path)
	assert.Equal(t, "avenue", got.URL.Query().Get("q"))
	assert.Equal(t, "5", got.URL.Query().Get("limit"))
	assert.Equal(t, "36.8", got.URL.Query().Get("lat"))
	assert.Equal(t, "10.2", got.URL.Query().Get("lon"))
	assert.Equal(t, "fr", got.URL.Query().Get("lang"))

	first := places[0]
	assert.Equal(t, "Avenue Habib Bourguiba", first.Name)
	assert.Equal(t, "TN", first.CountryCode)
	assert.Equal(t, "W42", first.PlaceID)
	require.NotNil(t, first.Point)
	assert.Equal(t, types.Point{Lat: 36.8065, Lng: 10.1815}, *first.Point)

	assert.Equal(t, "Rue de Paris", places[1].Street)
	assert.Equal(t, "12", places[1].HouseNumber)
}

func TestPhotonClient_Reverse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		if r.URL.Query().Get("lat") == "0" {
			_, _ = w.Write([]byte(`{"type":"FeatureCollection","features":[]}`))
			return
		}
		_, _ = w.Write([]byte(photonBody))
	}))
	defer srv.Close()

	c := NewPhotonClient(PhotonConfig{BaseURL: srv.URL})
	place, err := c.Reverse(context.Background(), types.Point{Lat: 36.8065, Lng: 10.1815})
	require.NoError(t, err)
	require.NotNil(t, place)
	assert.Equal(t, "Tunis", place.City)

	place, err = c.Reverse(context.Background(), types.Point{Lat: 0, Lng: 0})
	require.NoError(t, err)
	assert.Nil(t, place)
}

func TestPhotonClient_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewPhotonClient(PhotonConfig{BaseURL: srv.URL})
	_, err := c.Autocomplete(context.Background(), AutocompleteRequest{Query: "tunis"})
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)

	_, err = c.Reverse(context.Background(), types.Point{Lat: 1, Lng: 1})
	assert.Error(t, err)
}

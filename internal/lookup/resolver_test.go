package lookup

import (
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/TomasB/geoip2-server/internal/apierror"
	"github.com/TomasB/geoip2-server/internal/data"
	"github.com/TomasB/geoip2-server/internal/reserved"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLookup implements data.Lookup for testing.
type mockLookup struct {
	city    *data.CityRecord
	country *data.CountryRecord
	err     error
	calls   int
}

func (m *mockLookup) City(_ net.IP) (*data.CityRecord, error) {
	m.calls++
	return m.city, m.err
}

func (m *mockLookup) Country(_ net.IP) (*data.CountryRecord, error) {
	m.calls++
	return m.country, m.err
}

func (m *mockLookup) Close() error {
	return nil
}

func TestResolverInvalidAddress(t *testing.T) {
	db := &mockLookup{}
	r := NewResolver(db)

	for _, raw := range []string{"", "not-an-ip", "999.999.999.999", "1.2.3", "1.2.3.4/24", "fe80::1%eth0", "01.2.3.4", " 1.2.3.4"} {
		_, err := r.City(raw)
		assert.Equal(t, apierror.IPAddressInvalid, apierror.KindOf(err), "city %q", raw)

		_, err = r.Country(raw)
		assert.Equal(t, apierror.IPAddressInvalid, apierror.KindOf(err), "country %q", raw)
	}

	assert.Zero(t, db.calls, "database must not be queried for invalid input")
}

func TestResolverNotFound(t *testing.T) {
	r := NewResolver(&mockLookup{err: data.ErrNotFound})

	_, err := r.City("203.0.113.1")
	require.Error(t, err)
	assert.Equal(t, apierror.IPAddressNotFound, apierror.KindOf(err))
	assert.NoError(t, errors.Unwrap(err), "absence carries no internal cause")
}

func TestResolverLookupFailure(t *testing.T) {
	cause := fmt.Errorf("decode failure")
	r := NewResolver(&mockLookup{err: cause})

	_, err := r.Country("2001:db8::1")
	require.Error(t, err)
	assert.Equal(t, apierror.IPAddressNotFound, apierror.KindOf(err))
	assert.ErrorIs(t, err, cause)
}

func TestResolverSuccess(t *testing.T) {
	city := &data.CityRecord{Country: map[string]any{"iso_code": "US"}}
	country := &data.CountryRecord{Country: map[string]any{"iso_code": "US"}}
	r := NewResolver(&mockLookup{city: city, country: country})

	gotCity, err := r.City("8.8.8.8")
	require.NoError(t, err)
	assert.Same(t, city, gotCity)

	gotCountry, err := r.Country("::ffff:8.8.8.8")
	require.NoError(t, err)
	assert.Same(t, country, gotCountry)
}

func TestResolverReserved(t *testing.T) {
	db := &mockLookup{err: data.ErrNotFound}

	t.Run("disabled", func(t *testing.T) {
		_, err := NewResolver(db).City("10.0.0.1")
		assert.Equal(t, apierror.IPAddressNotFound, apierror.KindOf(err))
	})

	t.Run("enabled", func(t *testing.T) {
		r := NewResolver(db, WithReserved(reserved.Default()))

		for _, raw := range []string{"10.0.0.1", "127.0.0.1", "::1", "fe80::1"} {
			_, err := r.City(raw)
			assert.Equal(t, apierror.IPAddressReserved, apierror.KindOf(err), raw)
		}

		_, err := r.Country("203.0.113.1")
		assert.Equal(t, apierror.IPAddressNotFound, apierror.KindOf(err))
	})
}

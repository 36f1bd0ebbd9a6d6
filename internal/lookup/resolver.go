// Package lookup implements the transport-independent lookup pipeline:
// parse the address, optionally reject reserved ranges, query the database
// and classify every failure into an apierror.Kind.
package lookup

import (
	"errors"
	"net"

	"github.com/TomasB/geoip2-server/internal/apierror"
	"github.com/TomasB/geoip2-server/internal/data"
	"github.com/TomasB/geoip2-server/internal/reserved"
)

// Resolver runs lookups against a shared read-only database.
type Resolver struct {
	db       data.Lookup
	reserved *reserved.Set
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithReserved rejects addresses contained in set with IP_ADDRESS_RESERVED.
func WithReserved(set *reserved.Set) Option {
	return func(r *Resolver) {
		r.reserved = set
	}
}

// NewResolver creates a Resolver over db.
func NewResolver(db data.Lookup, opts ...Option) *Resolver {
	r := &Resolver{db: db}
	for _, o := range opts {
		o(r)
	}
	return r
}

// City resolves raw to a city record.
func (r *Resolver) City(raw string) (*data.CityRecord, error) {
	return resolve(r, raw, r.db.City)
}

// Country resolves raw to a country record.
func (r *Resolver) Country(raw string) (*data.CountryRecord, error) {
	return resolve(r, raw, r.db.Country)
}

func resolve[T any](r *Resolver, raw string, find func(net.IP) (*T, error)) (*T, error) {
	ip := net.ParseIP(raw)
	if ip == nil {
		return nil, apierror.New(apierror.IPAddressInvalid, nil)
	}

	if r.reserved != nil && r.reserved.Contains(ip) {
		return nil, apierror.New(apierror.IPAddressReserved, nil)
	}

	record, err := find(ip)
	switch {
	case errors.Is(err, data.ErrNotFound):
		return nil, apierror.New(apierror.IPAddressNotFound, nil)
	case err != nil:
		return nil, apierror.New(apierror.IPAddressNotFound, err)
	case record == nil:
		return nil, apierror.New(apierror.IPAddressNotFound, nil)
	}

	return record, nil
}

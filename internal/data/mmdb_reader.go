package data

import (
	"fmt"
	"net"
	"time"

	"github.com/oschwald/maxminddb-golang"
)

// MmdbReader implements Lookup using a memory-mapped MaxMind DB file.
type MmdbReader struct {
	db *maxminddb.Reader
}

// Metadata describes an opened database.
type Metadata struct {
	DatabaseType string
	IPVersion    uint
	NodeCount    uint
	RecordSize   uint
	BuildTime    time.Time
	Languages    []string
}

// NewMmdbReader maps the MMDB file at the given path and returns a reader.
func NewMmdbReader(path string) (*MmdbReader, error) {
	db, err := maxminddb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open MMDB file: %w", err)
	}
	return &MmdbReader{db: db}, nil
}

// City returns the city record for the given IP address.
func (r *MmdbReader) City(ip net.IP) (*CityRecord, error) {
	var record CityRecord
	if err := r.lookup(ip, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Country returns the country record for the given IP address.
func (r *MmdbReader) Country(ip net.IP) (*CountryRecord, error) {
	var record CountryRecord
	if err := r.lookup(ip, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *MmdbReader) lookup(ip net.IP, result any) error {
	_, ok, err := r.db.LookupNetwork(ip, result)
	if err != nil {
		return fmt.Errorf("lookup of %s failed: %w", ip, err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// Metadata returns the metadata section of the database.
func (r *MmdbReader) Metadata() Metadata {
	m := r.db.Metadata
	return Metadata{
		DatabaseType: m.DatabaseType,
		IPVersion:    m.IPVersion,
		NodeCount:    m.NodeCount,
		RecordSize:   m.RecordSize,
		BuildTime:    time.Unix(int64(m.BuildEpoch), 0).UTC(),
		Languages:    m.Languages,
	}
}

// Verify checks the integrity of the whole database. It walks every node
// and data record, so it is only worth running once at startup.
func (r *MmdbReader) Verify() error {
	if err := r.db.Verify(); err != nil {
		return fmt.Errorf("MMDB verification failed: %w", err)
	}
	return nil
}

// Close unmaps the database file.
func (r *MmdbReader) Close() error {
	return r.db.Close()
}

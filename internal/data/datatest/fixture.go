// Package datatest builds small MaxMind DB fixtures for tests.
package datatest

import (
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/maxmind/mmdbwriter"
	"github.com/maxmind/mmdbwriter/mmdbtype"
)

// Addresses with known content in the fixture written by CityDatabase.
const (
	USAddress = "8.8.8.8"
	GBAddress = "2.125.160.216"
	JPAddress = "2001:218::1"

	// AbsentAddress is a valid address with no record in the fixture.
	AbsentAddress = "203.0.113.1"
)

// CityDatabase writes a GeoIP2-City shaped database into a temporary
// directory and returns its path.
func CityDatabase(tb testing.TB) string {
	tb.Helper()

	writer, err := mmdbwriter.New(mmdbwriter.Options{
		DatabaseType: "GeoIP2-City",
		Description:  map[string]string{"en": "geoip2-server test database"},
		Languages:    []string{"en", "de"},
		IPVersion:    6,
		RecordSize:   24,
	})
	if err != nil {
		tb.Fatalf("failed to create mmdb writer: %v", err)
	}

	records := []struct {
		cidr   string
		record mmdbtype.Map
	}{
		{"8.8.8.0/24", usRecord()},
		{"2.125.160.216/29", gbRecord()},
		{"2001:218::/32", jpRecord()},
	}

	for _, r := range records {
		_, network, err := net.ParseCIDR(r.cidr)
		if err != nil {
			tb.Fatalf("invalid fixture network %s: %v", r.cidr, err)
		}
		if err := writer.Insert(network, r.record); err != nil {
			tb.Fatalf("failed to insert %s: %v", r.cidr, err)
		}
	}

	path := filepath.Join(tb.TempDir(), "GeoIP2-City-Test.mmdb")
	f, err := os.Create(path)
	if err != nil {
		tb.Fatalf("failed to create fixture file: %v", err)
	}
	defer f.Close()

	if _, err := writer.WriteTo(f); err != nil {
		tb.Fatalf("failed to write fixture: %v", err)
	}

	return path
}

// CorruptDatabase writes a file that is not a MaxMind DB and returns its path.
func CorruptDatabase(tb testing.TB) string {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "corrupt.mmdb")
	if err := os.WriteFile(path, []byte("this is not a maxmind database"), 0o600); err != nil {
		tb.Fatalf("failed to write corrupt fixture: %v", err)
	}
	return path
}

func names(en, de string) mmdbtype.Map {
	return mmdbtype.Map{
		"en": mmdbtype.String(en),
		"de": mmdbtype.String(de),
	}
}

func country(geonameID uint32, iso, en, de string, eu bool) mmdbtype.Map {
	m := mmdbtype.Map{
		"geoname_id": mmdbtype.Uint32(geonameID),
		"iso_code":   mmdbtype.String(iso),
		"names":      names(en, de),
	}
	if eu {
		m["is_in_european_union"] = mmdbtype.Bool(true)
	}
	return m
}

func usRecord() mmdbtype.Map {
	us := country(6252001, "US", "United States", "USA", false)
	return mmdbtype.Map{
		"city": mmdbtype.Map{
			"geoname_id": mmdbtype.Uint32(5375480),
			"names":      names("Mountain View", "Mountain View"),
		},
		"continent": mmdbtype.Map{
			"code":       mmdbtype.String("NA"),
			"geoname_id": mmdbtype.Uint32(6255149),
			"names":      names("North America", "Nordamerika"),
		},
		"country":            us,
		"registered_country": us,
		"location": mmdbtype.Map{
			"accuracy_radius": mmdbtype.Uint16(1000),
			"latitude":        mmdbtype.Float64(37.386),
			"longitude":       mmdbtype.Float64(-122.0838),
			"metro_code":      mmdbtype.Uint16(807),
			"time_zone":       mmdbtype.String("America/Los_Angeles"),
		},
		"postal": mmdbtype.Map{
			"code": mmdbtype.String("94035"),
		},
		"subdivisions": mmdbtype.Slice{
			mmdbtype.Map{
				"geoname_id": mmdbtype.Uint32(5332921),
				"iso_code":   mmdbtype.String("CA"),
				"names":      names("California", "Kalifornien"),
			},
		},
	}
}

func gbRecord() mmdbtype.Map {
	return mmdbtype.Map{
		"city": mmdbtype.Map{
			"geoname_id": mmdbtype.Uint32(2655045),
			"names":      names("Boxford", "Boxford"),
		},
		"continent": mmdbtype.Map{
			"code":       mmdbtype.String("EU"),
			"geoname_id": mmdbtype.Uint32(6255148),
			"names":      names("Europe", "Europa"),
		},
		"country":            country(2635167, "GB", "United Kingdom", "Vereinigtes Königreich", false),
		"registered_country": country(3017382, "FR", "France", "Frankreich", true),
		"location": mmdbtype.Map{
			"accuracy_radius": mmdbtype.Uint16(100),
			"latitude":        mmdbtype.Float64(51.75),
			"longitude":       mmdbtype.Float64(-1.25),
			"time_zone":       mmdbtype.String("Europe/London"),
		},
		"postal": mmdbtype.Map{
			"code": mmdbtype.String("OX1"),
		},
	}
}

func jpRecord() mmdbtype.Map {
	jp := country(1861060, "JP", "Japan", "Japan", false)
	return mmdbtype.Map{
		"continent": mmdbtype.Map{
			"code":       mmdbtype.String("AS"),
			"geoname_id": mmdbtype.Uint32(6255147),
			"names":      names("Asia", "Asien"),
		},
		"country":            jp,
		"registered_country": jp,
		"location": mmdbtype.Map{
			"accuracy_radius": mmdbtype.Uint16(100),
			"latitude":        mmdbtype.Float64(35.69),
			"longitude":       mmdbtype.Float64(139.69),
			"time_zone":       mmdbtype.String("Asia/Tokyo"),
		},
	}
}

package service

import (
	"testing"

	"github.com/Vanjivaka-Sairam/url-shortener/internal/app/model"
)

const (
	uaIPhone  = "Mozilla/5.0 (iPhone; CPU iPhone OS 16_5 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.5 Mobile/15E148 Safari/604.1"
	uaIPad    = "Mozilla/5.0 (iPad; CPU OS 16_5 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.5 Mobile/15E148 Safari/604.1"
	uaChrome  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	uaGarbage = "definitely not a browser"
)

type stubGeoOracle struct {
	country, city string
	ok            bool
}

func (s *stubGeoOracle) Lookup(sourceAddress string) (string, string, bool) {
	return s.country, s.city, s.ok
}

func TestClassifier_UnparseableDefaultsAreAsymmetric(t *testing.T) {
	c := NewClassifier(nil)
	visit := c.Classify(uaGarbage, "203.0.113.9")

	// Unrecognized clients are presumed desktop, but the browser stays
	// unknown: "we assume" and "we don't know" must not conflate.
	if visit.DeviceClass != model.DeviceDesktop {
		t.Fatalf("expected desktop default, got %q", visit.DeviceClass)
	}
	if visit.BrowserFamily != model.BrowserUnknown {
		t.Fatalf("expected unknown browser, got %q", visit.BrowserFamily)
	}
	if visit.Timestamp.IsZero() {
		t.Fatal("expected timestamp to be stamped")
	}
	if visit.SourceAddress != "203.0.113.9" {
		t.Fatalf("expected source address kept, got %q", visit.SourceAddress)
	}
}

func TestClassifier_DeviceClasses(t *testing.T) {
	c := NewClassifier(nil)

	cases := []struct {
		name, ua, device string
	}{
		{"iphone", uaIPhone, model.DeviceMobile},
		{"ipad", uaIPad, model.DeviceTablet},
		{"chrome desktop", uaChrome, model.DeviceDesktop},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			visit := c.Classify(tc.ua, "")
			if visit.DeviceClass != tc.device {
				t.Fatalf("expected %q, got %q", tc.device, visit.DeviceClass)
			}
			if visit.BrowserFamily == model.BrowserUnknown {
				t.Fatalf("expected a browser family for %q", tc.ua)
			}
		})
	}
}

func TestClassifier_GeoAbsenceLeavesFieldsUnset(t *testing.T) {
	c := NewClassifier(&stubGeoOracle{ok: false})
	visit := c.Classify(uaChrome, "203.0.113.9")

	if visit.GeoCountry != nil || visit.GeoCity != nil {
		t.Fatalf("expected absent geo fields, got country=%v city=%v", visit.GeoCountry, visit.GeoCity)
	}
}

func TestClassifier_GeoMatchSetsFields(t *testing.T) {
	c := NewClassifier(&stubGeoOracle{country: "France", city: "Paris", ok: true})
	visit := c.Classify(uaChrome, "203.0.113.9")

	if visit.GeoCountry == nil || *visit.GeoCountry != "France" {
		t.Fatalf("expected country France, got %v", visit.GeoCountry)
	}
	if visit.GeoCity == nil || *visit.GeoCity != "Paris" {
		t.Fatalf("expected city Paris, got %v", visit.GeoCity)
	}
}

func TestClassifier_NoGeoLookupWithoutAddress(t *testing.T) {
	// An oracle that would match must still not run without an address.
	c := NewClassifier(&stubGeoOracle{country: "France", ok: true})
	visit := c.Classify(uaChrome, "")

	if visit.GeoCountry != nil {
		t.Fatalf("expected no geo without a source address, got %v", *visit.GeoCountry)
	}
}

package otel

import (
	"context"
	"reflect"
	"testing"
)

func TestSplitEndpoint(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want endpointTarget
	}{
		{
			name: "http with path",
			raw:  "http://localhost:3000/api/public/otel",
			want: endpointTarget{host: "localhost:3000", basePath: "/api/public/otel", insecure: true},
		},
		{
			name: "https trims trailing slash",
			raw:  "https://collector.example.com/otel/",
			want: endpointTarget{host: "collector.example.com", basePath: "/otel", insecure: false},
		},
		{
			name: "bare host",
			raw:  "https://collector:4318",
			want: endpointTarget{host: "collector:4318", basePath: "", insecure: false},
		},
	}
	for _, tt := range tests {
		got, err := splitEndpoint(tt.raw)
		if err != nil {
			t.Errorf("%s: splitEndpoint(%q): %v", tt.name, tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: splitEndpoint(%q) = %+v, want %+v", tt.name, tt.raw, got, tt.want)
		}
	}

	if _, err := splitEndpoint("not a url"); err == nil {
		t.Error("hostless endpoint should be rejected")
	}
}

func TestParseHeaders(t *testing.T) {
	got := parseHeaders("Authorization=Basic abc123, X-Extra = v ,=bad,novalue")
	want := map[string]string{
		"Authorization": "Basic abc123",
		"X-Extra":       "v",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseHeaders = %v, want %v", got, want)
	}
	if got := parseHeaders(""); len(got) != 0 {
		t.Errorf("empty input produced headers: %v", got)
	}
}

func TestInitWithoutEndpointIsNoop(t *testing.T) {
	tel, err := Init(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if tel.tp != nil || tel.mp != nil {
		t.Error("providers installed without an endpoint")
	}
	if tel.Tracer == nil || tel.Metrics == nil {
		t.Error("no-op tracer and metrics must still be usable")
	}

	// Recording through the no-op handle must not panic.
	tel.Metrics.RecordPanesAnalyzed(context.Background(), 3)
	tel.Shutdown(context.Background())
}

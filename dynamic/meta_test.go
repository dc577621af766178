package dynamic

import (
	"testing"

	"github.com/tidwall/gjson"
)

func TestMetaGeneratorServiceInfo(t *testing.T) {
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "shop-api-go-db-01")

	gen := NewMetaGenerator("/tmp/warehouse", "s3://packages")
	result := gen.Generate("")

	if !gjson.Valid(result) {
		t.Fatalf("invalid meta %s", result)
	}
	if got := gjson.Get(result, "service.business").String(); got != "shop" {
		t.Errorf("business %q", got)
	}
	if got := gjson.Get(result, "service.instance").String(); got != "01" {
		t.Errorf("instance %q", got)
	}
	if got := gjson.Get(result, "warehouse.remote").String(); got != "s3://packages" {
		t.Errorf("remote warehouse %q", got)
	}
}

func TestMetaGeneratorMergesTunnelMeta(t *testing.T) {
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "shop-api-go-db-01")

	gen := NewMetaGenerator("/tmp/warehouse", "s3://packages")
	result := gen.Generate(`{"service":"override","package":{"name":"user"}}`)

	// Tunnel fields join the document without replacing bootstrap ones.
	if got := gjson.Get(result, "service.business").String(); got != "shop" {
		t.Errorf("service overridden: %s", result)
	}
	if got := gjson.Get(result, "package.name").String(); got != "user" {
		t.Errorf("tunnel meta missing: %s", result)
	}
}

func TestMetaGeneratorIgnoresInvalidTunnelMeta(t *testing.T) {
	gen := NewMetaGenerator("", "")
	result := gen.Generate("not json")
	if !gjson.Valid(result) || !gjson.Get(result, "lambda").Exists() {
		t.Fatalf("unexpected meta %s", result)
	}
}

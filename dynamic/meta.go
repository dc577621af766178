package dynamic

import (
	"encoding/json"
	"os"
	"runtime/debug"
	"strings"
)

// ServiceInfo is parsed from AWS_LAMBDA_FUNCTION_NAME, which encodes
// business-framework-runtime-resource-instance.
type ServiceInfo struct {
	Business  string `json:"business"`
	Framework string `json:"framework"`
	Runtime   string `json:"runtime"`
	Resource  string `json:"resource"`
	Instance  string `json:"instance"`
}

// LambdaInfo describes the running bootstrap build.
type LambdaInfo struct {
	Module  string `json:"module"`
	Version string `json:"version"`
	Built   string `json:"built"`
}

// WarehouseInfo reports where packages are cached and fetched from.
type WarehouseInfo struct {
	Local  string `json:"local"`
	Remote string `json:"remote"`
}

// Meta is the diagnostic document served on the meta route.
type Meta struct {
	Service   ServiceInfo   `json:"service"`
	Lambda    LambdaInfo    `json:"lambda"`
	Warehouse WarehouseInfo `json:"warehouse"`
}

// MetaGenerator merges bootstrap build information with the meta
// document a loaded tunnel reports about itself.
type MetaGenerator struct {
	localWarehouse  string
	remoteWarehouse string
}

func NewMetaGenerator(localWarehouse, remoteWarehouse string) *MetaGenerator {
	return &MetaGenerator{
		localWarehouse:  localWarehouse,
		remoteWarehouse: remoteWarehouse,
	}
}

func parseServiceInfo() ServiceInfo {
	funcName := os.Getenv("AWS_LAMBDA_FUNCTION_NAME")
	parts := strings.SplitN(funcName, "-", 5)

	info := ServiceInfo{}
	if len(parts) > 0 {
		info.Business = parts[0]
	}
	if len(parts) > 1 {
		info.Framework = parts[1]
	}
	if len(parts) > 2 {
		info.Runtime = parts[2]
	}
	if len(parts) > 3 {
		info.Resource = parts[3]
	}
	if len(parts) > 4 {
		info.Instance = parts[4]
	}

	return info
}

func parseLambdaInfo() LambdaInfo {
	info := LambdaInfo{}

	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}

	info.Module = buildInfo.Main.Path
	info.Version = buildInfo.Main.Version

	for _, setting := range buildInfo.Settings {
		if setting.Key == "vcs.time" {
			info.Built = setting.Value
			break
		}
	}

	return info
}

// Generate renders the meta document. tunnelMeta, when it is valid
// JSON, is merged in without overriding the bootstrap's own fields.
func (g *MetaGenerator) Generate(tunnelMeta string) string {
	meta := Meta{
		Service: parseServiceInfo(),
		Lambda:  parseLambdaInfo(),
		Warehouse: WarehouseInfo{
			Local:  g.localWarehouse,
			Remote: g.remoteWarehouse,
		},
	}

	result, err := json.Marshal(meta)
	if err != nil {
		return "{}"
	}

	if tunnelMeta == "" {
		return string(result)
	}

	var baseMap map[string]interface{}
	if err := json.Unmarshal(result, &baseMap); err != nil {
		return string(result)
	}

	var tunnelMap map[string]interface{}
	if err := json.Unmarshal([]byte(tunnelMeta), &tunnelMap); err != nil {
		return string(result)
	}

	for k, v := range tunnelMap {
		if _, exists := baseMap[k]; !exists {
			baseMap[k] = v
		}
	}

	merged, err := json.Marshal(baseMap)
	if err != nil {
		return string(result)
	}

	return string(merged)
}

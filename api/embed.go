// Package api 内嵌 OpenAPI 文档
package api

import "embed"

//go:embed openapi/*.yaml
var OpenAPIFS embed.FS

// SpecPath 内嵌文档路径
const SpecPath = "openapi/openapi.yaml"

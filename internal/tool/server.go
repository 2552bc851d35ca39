// SPDX-License-Identifier: Apache-2.0

// Package tool exposes the extraction engine as MCP tools.
package tool

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ServerName is the MCP implementation name.
const ServerName = "sof-mcp"

// NewServer creates an MCP server with every tool of ts registered.
func NewServer(version string, ts *Toolset) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: version}, nil)
	mcp.AddTool(server, MetadataExtractSoFEvents, ts.ExtractSoFEvents)
	mcp.AddTool(server, MetadataExportSoFEvents, ts.ExportSoFEvents)
	mcp.AddTool(server, MetadataQuerySoFEvents, ts.QuerySoFEvents)
	return server
}

// Package mcp provides a Model Context Protocol server for vcfmerge.
// It exposes preview and merge runs as MCP tools so an agent can drive a
// mail merge without shelling out.
package mcp

import (
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer creates an MCP server with all vcfmerge tools registered.
func NewServer(version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "vcfmerge",
		Version: version,
	}, nil)
	registerTools(server, time.Now)
	return server
}

func boolPtr(b bool) *bool {
	return &b
}

// readOnlyAnnotations returns annotations for tools that write nothing.
func readOnlyAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		ReadOnlyHint:   true,
		IdempotentHint: true,
		OpenWorldHint:  boolPtr(false),
	}
}

// writeAnnotations returns annotations for the merge tool. Re-running a
// merge overwrites earlier output for the same contacts.
func writeAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		DestructiveHint: boolPtr(true),
		IdempotentHint:  true,
		OpenWorldHint:   boolPtr(false),
	}
}

func registerTools(server *mcp.Server, now func() time.Time) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "defaults",
		Description: "List the built-in field mappings, unique-ID fields, separator and substitution markers.",
		Annotations: readOnlyAnnotations(),
	}, handleDefaults())

	mcp.AddTool(server, &mcp.Tool{
		Name:        "preview",
		Description: "Parse vCard files and show every contact's ID and extracted fields without writing anything.",
		Annotations: readOnlyAnnotations(),
	}, handlePreview(now))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "merge",
		Description: "Render the templates once per contact into <out>/<contact ID>/, copying includes and linking shared files.",
		Annotations: writeAnnotations(),
	}, handleMerge(now))
}

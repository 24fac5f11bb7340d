package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/juander/eihub-rag/internal/appstate"
	"github.com/juander/eihub-rag/internal/qa"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	QA    *qa.Service
	State *appstate.Manager
}

// NewMCPServer creates an MCP server exposing document question answering
// beside the HTTP surface.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"eihub-rag",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions("eihub-rag answers questions over the EI-Hub and PCG documentation set."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("ask_documents",
			mcp.WithDescription("Ask a question against the indexed documentation and get a structured answer with sources."),
			mcp.WithString("question", mcp.Description("Free-text question"), mcp.Required()),
		),
		mcpAskDocuments(deps),
	)

	s.AddTool(
		mcp.NewTool("system_status",
			mcp.WithDescription("Report backend readiness, any initialization failure, and the indexed document count."),
		),
		mcpSystemStatus(deps),
	)

	return s
}

func mcpAskDocuments(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := req.RequireString("question")
		if err != nil {
			return mcpError("question is required"), nil
		}

		result, err := deps.QA.Ask(ctx, question)
		if err != nil {
			var notReady *qa.NotReadyError
			if errors.As(err, &notReady) {
				return mcpError(notReady.Error()), nil
			}
			return mcpError(fmt.Sprintf("question failed: %v", err)), nil
		}

		b, err := json.Marshal(result)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpSystemStatus(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		b, err := json.Marshal(statusPayload(deps.State.Snapshot()))
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal status: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	configloader "github.com/opsgate/opsgate/internal/adapters/outbound/config"
	"github.com/opsgate/opsgate/internal/adapters/outbound/gitinfo"
	resourceadapter "github.com/opsgate/opsgate/internal/adapters/outbound/resources"
	"github.com/opsgate/opsgate/internal/adapters/outbound/rulesource"
	"github.com/opsgate/opsgate/internal/adapters/outbound/scanners"
	"github.com/opsgate/opsgate/internal/application"
	"github.com/opsgate/opsgate/internal/domain"
)

// registerTools registers the opsgate MCP tools on the given server.
func registerTools(s *server.MCPServer, targetPath string) {
	s.AddTool(
		mcplib.NewTool("opsgate_check",
			mcplib.WithDescription("Run the validation gate against the target directory and return the full report as JSON"),
			mcplib.WithString("environment", mcplib.Description("Deployment environment override (e.g. prod, dev)")),
		),
		handleCheck(targetPath),
	)

	s.AddTool(
		mcplib.NewTool("opsgate_rules",
			mcplib.WithDescription("Return the loaded rule set (id, framework, category, severity, check type) as JSON"),
		),
		handleRules(targetPath),
	)
}

// newGate assembles the gate service from the target's configuration, the
// same way the CLI does.
func newGate(targetPath string) (domain.GateConfig, *application.GateService, []domain.Tool, error) {
	cfg, err := configloader.New().Load(targetPath)
	if err != nil {
		return domain.GateConfig{}, nil, nil, fmt.Errorf("loading config: %w", err)
	}

	svc := application.NewGateService(
		rulesource.New(),
		resourceadapter.New(),
		func(dir string) domain.FileSet { return resourceadapter.NewDirFileSet(dir) },
		gitinfo.New(),
		nil,
		log.Logger,
	)

	if len(cfg.RulePaths) > 0 {
		rulePaths := make([]string, 0, len(cfg.RulePaths))
		for _, p := range cfg.RulePaths {
			if !filepath.IsAbs(p) {
				p = filepath.Join(targetPath, p)
			}
			rulePaths = append(rulePaths, p)
		}
		if err := svc.LoadRules(rulePaths); err != nil {
			return domain.GateConfig{}, nil, nil, err
		}
	}

	tools, err := scanners.FromConfig(cfg.Tools)
	if err != nil {
		return domain.GateConfig{}, nil, nil, fmt.Errorf("configuring tools: %w", err)
	}

	return cfg, svc, tools, nil
}

func handleCheck(targetPath string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		cfg, svc, tools, err := newGate(targetPath)
		if err != nil {
			return errorResult(fmt.Sprintf("gate setup failed: %v", err)), nil
		}

		if env, ok := request.GetArguments()["environment"].(string); ok && env != "" {
			cfg.Environment = env
		}

		report, err := svc.Run(ctx, targetPath, cfg, tools)
		if err != nil {
			return errorResult(fmt.Sprintf("gate run failed: %v", err)), nil
		}
		return jsonResult(report)
	}
}

func handleRules(targetPath string) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		_, svc, _, err := newGate(targetPath)
		if err != nil {
			return errorResult(fmt.Sprintf("gate setup failed: %v", err)), nil
		}
		return jsonResult(svc.Rules())
	}
}

// jsonResult marshals v to JSON and returns it as a text content result.
func jsonResult(v interface{}) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}

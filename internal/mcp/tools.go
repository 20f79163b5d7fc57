package mcp

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/hdlast/internal/discovery"
	"github.com/mvp-joe/hdlast/internal/exporter"
	"github.com/mvp-joe/hdlast/internal/graph"
	"github.com/mvp-joe/hdlast/internal/hdlobjects"
	"github.com/mvp-joe/hdlast/internal/jsonvalue"
	"github.com/mvp-joe/hdlast/internal/storage"
)

type toolHandler = func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

// AddExportTool registers the hdl_export tool.
func AddExportTool(s *server.MCPServer, exp *exporter.Exporter) {
	tool := mcp.NewTool(
		"hdl_export",
		mcp.WithDescription("Parse one VHDL or Verilog file and return its JSON export: entities with generics and ports, architectures with their component instances and association maps."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("File path relative to the project root (e.g., 'rtl/cpu.vhd')")),
		mcp.WithBoolean("sort_instances",
			mcp.Description("Order component instances by name instead of declaration order (default: false)")),
	)

	s.AddTool(tool, createExportHandler(exp))
}

func createExportHandler(exp *exporter.Exporter) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := argsOf(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		rel, err := args.str("path", true)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		path, err := resolve(exp.Root(), rel)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		r := exp.WithSortInstances(args.boolean("sort_instances", false)).ExportFile(ctx, path)
		if r.Err != nil {
			return mcp.NewToolResultError(r.Err.Error()), nil
		}
		return mcp.NewToolResultText(r.Document.String()), nil
	}
}

// AddHierarchyTool registers the hdl_hierarchy tool.
func AddHierarchyTool(s *server.MCPServer, exp *exporter.Exporter, fd *discovery.FileDiscovery) {
	tool := mcp.NewTool(
		"hdl_hierarchy",
		mcp.WithDescription("Resolve component instantiations across HDL files and return the design hierarchy: top-level units, instantiation tree, unresolved references and cycles."),
		mcp.WithArray("paths",
			mcp.Description("Files relative to the project root. Leave empty to use every HDL file in the project.")),
	)

	s.AddTool(tool, createHierarchyHandler(exp, fd))
}

func createHierarchyHandler(exp *exporter.Exporter, fd *discovery.FileDiscovery) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := argsOf(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var results []exporter.Result
		if rels := args.strings("paths"); len(rels) > 0 {
			paths := make([]string, 0, len(rels))
			for _, rel := range rels {
				p, err := resolve(exp.Root(), rel)
				if err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				paths = append(paths, p)
			}
			results, _, err = exp.ExportFiles(ctx, paths)
		} else {
			results, _, err = exp.ExportDir(ctx, fd)
		}
		if err != nil {
			return nil, fmt.Errorf("export failed: %w", err)
		}

		doc, err := hierarchyDocument(results)
		if err != nil {
			return nil, err
		}
		return mcp.NewToolResultText(doc.String()), nil
	}
}

// hierarchyDocument builds {"hierarchy": ..., "failed": [{file, error}]}.
func hierarchyDocument(results []exporter.Result) (jsonvalue.Value, error) {
	var contexts []*hdlobjects.Context
	failed := []jsonvalue.Value{}
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, jsonvalue.ObjectOf(
				jsonvalue.F("file", jsonvalue.String(r.RelPath)),
				jsonvalue.F("error", jsonvalue.String(r.Err.Error())),
			))
			continue
		}
		contexts = append(contexts, r.Context)
	}

	h, err := graph.Build(contexts)
	if err != nil {
		return jsonvalue.Null(), fmt.Errorf("failed to build hierarchy: %w", err)
	}
	hv, err := h.Serialize()
	if err != nil {
		return jsonvalue.Null(), fmt.Errorf("failed to serialize hierarchy: %w", err)
	}
	return jsonvalue.ObjectOf(
		jsonvalue.F("hierarchy", hv),
		jsonvalue.F("failed", jsonvalue.Array(failed...)),
	), nil
}

// AddInstancesTool registers the hdl_instances tool, answering from the
// sqlite index built by "hdlast index".
func AddInstancesTool(s *server.MCPServer, reader *storage.Reader) {
	tool := mcp.NewTool(
		"hdl_instances",
		mcp.WithDescription("List every indexed instantiation of an entity or module, with the instantiating file, architecture and source position."),
		mcp.WithString("entity",
			mcp.Required(),
			mcp.Description("Entity or module name (case-insensitive)")),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results to return (1-500, default: 100)")),
	)

	s.AddTool(tool, createInstancesHandler(reader))
}

func createInstancesHandler(reader *storage.Reader) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if reader == nil {
			return mcp.NewToolResultError("no index available; run 'hdlast index' first"), nil
		}
		args, err := argsOf(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		entity, err := args.str("entity", true)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		limit := args.clampedInt("limit", 100, 1, 500)

		insts, err := reader.InstancesOf(entity)
		if err != nil {
			return nil, fmt.Errorf("query failed: %w", err)
		}

		archCache := map[string]*storage.ArchRecord{}
		items := make([]jsonvalue.Value, 0, min(limit, len(insts)))
		for _, inst := range insts {
			if len(items) == limit {
				break
			}
			arch, err := archFor(reader, archCache, inst.ArchID)
			if err != nil {
				return nil, err
			}
			items = append(items, jsonvalue.ObjectOf(
				jsonvalue.F("file", jsonvalue.String(arch.FilePath)),
				jsonvalue.F("architecture", jsonvalue.String(arch.Name)),
				jsonvalue.F("entity", jsonvalue.StringOrNull(arch.EntityName)),
				jsonvalue.F("instance", jsonvalue.String(inst.Name)),
				jsonvalue.F("kind", jsonvalue.StringOrNull(inst.Kind)),
				jsonvalue.F("line", jsonvalue.Int(inst.Line)),
				jsonvalue.F("col", jsonvalue.Int(inst.Col)),
			))
		}

		doc := jsonvalue.ObjectOf(
			jsonvalue.F("entity", jsonvalue.String(entity)),
			jsonvalue.F("instances", jsonvalue.Array(items...)),
			jsonvalue.F("total", jsonvalue.Int(len(insts))),
			jsonvalue.F("truncated", jsonvalue.Bool(len(insts) > len(items))),
		)
		return mcp.NewToolResultText(doc.String()), nil
	}
}

func archFor(reader *storage.Reader, cache map[string]*storage.ArchRecord, archID string) (*storage.ArchRecord, error) {
	if a, ok := cache[archID]; ok {
		return a, nil
	}
	a, err := reader.Architecture(archID)
	if err != nil {
		return nil, err
	}
	cache[archID] = a
	return a, nil
}

// resolve joins rel onto root and rejects paths that leave root.
func resolve(root, rel string) (string, error) {
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("path must be relative to the project root: %s", rel)
	}
	joined := filepath.Join(root, filepath.FromSlash(rel))
	back, err := filepath.Rel(root, joined)
	if err != nil || back == ".." || strings.HasPrefix(back, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes the project root: %s", rel)
	}
	return joined, nil
}

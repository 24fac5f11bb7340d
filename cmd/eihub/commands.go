package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/juander/eihub-rag/internal/config"
	"github.com/juander/eihub-rag/internal/docs"
)

// --- status ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server and backend readiness",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		serverURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
		client := &http.Client{Timeout: 2 * time.Second}

		resp, err := client.Get(serverURL + "/health")
		if err != nil {
			printError("server not running on port %d", cfg.Server.Port)
			printStatus("Backend URL", "%s", cfg.Backend.BaseURL)
			printStatus("Documents dir", "%s", cfg.Backend.DocumentsDir)
			return nil
		}
		resp.Body.Close()
		printSuccess("server running on port %d", cfg.Server.Port)

		api, err := newAPIClient()
		if err != nil {
			return err
		}
		statusResp, err := api.get(cmd.Context(), "/status")
		if err != nil {
			return err
		}
		var snap struct {
			Status        string `json:"status"`
			ErrorDetail   string `json:"error_detail"`
			DocumentCount int    `json:"document_count"`
		}
		if err := decodeJSON(statusResp, &snap); err != nil {
			return err
		}

		printStatus("Backend", "%s", snap.Status)
		if snap.ErrorDetail != "" {
			printStatus("Failure", "%s", snap.ErrorDetail)
		}
		if snap.Status == "ready" {
			printStatus("Indexed documents", "%d", snap.DocumentCount)
		}
		printStatus("Backend URL", "%s", cfg.Backend.BaseURL)
		printStatus("Documents dir", "%s", cfg.Backend.DocumentsDir)
		return nil
	},
}

// --- ask ---

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question against the indexed documentation",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args, " ")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/ask", map[string]string{"question": question})
		if err != nil {
			return err
		}

		var result struct {
			Sections struct {
				Answer      string `json:"answer"`
				Sources     string `json:"sources"`
				Confidence  string `json:"confidence"`
				Assumptions string `json:"assumptions"`
			} `json:"sections"`
			ConfidencePercent float64 `json:"confidence_percent"`
			Sources           []struct {
				Source string `json:"source"`
				Page   any    `json:"page"`
			} `json:"sources"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSection("ANSWER:", result.Sections.Answer)
		printSection("SOURCES:", result.Sections.Sources)
		printSection("CONFIDENCE:", result.Sections.Confidence)
		printSection("ASSUMPTIONS:", result.Sections.Assumptions)
		printSection("CONFIDENCE SCORE:", fmt.Sprintf("%.0f%%", result.ConfidencePercent))

		if len(result.Sources) > 0 {
			fmt.Println()
			for _, s := range result.Sources {
				fmt.Printf("  %s (page %v)\n", colorize(colorCyan, s.Source), s.Page)
			}
		}
		return nil
	},
}

// --- docs ---

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Inspect the local documents directory",
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List local documents with PDF page counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		infos, err := docs.Scan(cmd.Context(), cfg.Backend.DocumentsDir)
		if err != nil {
			return err
		}
		if len(infos) == 0 {
			fmt.Printf("No documents in %s\n", cfg.Backend.DocumentsDir)
			return nil
		}

		for _, d := range infos {
			pages := ""
			if d.Pages > 0 {
				pages = fmt.Sprintf("  %d pages", d.Pages)
			}
			fmt.Printf("%s  %s%s\n", colorize(colorBold, d.Name), formatSize(d.Size), pages)
		}
		return nil
	},
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		for _, k := range config.ShowAll(cfg) {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

func init() {
	docsCmd.AddCommand(docsListCmd)
	configCmd.AddCommand(configShowCmd)
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

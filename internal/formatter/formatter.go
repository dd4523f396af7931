// package formatter renders search results for the terminal and exports them
// to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"scout/internal/models"
)

// SearchExport bundles a search with its ranked results for rendering and export.
type SearchExport struct {
	SessionID string
	Query     string
	InputType models.InputType
	Results   []models.ResultItem
}

// RenderResultCards renders one card per result for terminal output.
// Cards keep the backend's ranking order; the display price prefers per-unit.
func RenderResultCards(export *SearchExport) string {
	var buf bytes.Buffer

	if len(export.Results) == 0 {
		buf.WriteString("No results found.\n")
		return buf.String()
	}

	for i, item := range export.Results {
		buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, item.ProductName))
		buf.WriteString(fmt.Sprintf("   Platform: %s\n", item.Platform))

		if price := item.DisplayPrice(); price != "" {
			label := "Price"
			if item.PerUnitPrice != nil && *item.PerUnitPrice != "" {
				label = "Per-unit price"
			}
			buf.WriteString(fmt.Sprintf("   %s: %s\n", label, price))
		}
		if item.ProductType == models.ProductTypeBulk {
			buf.WriteString("   Type: bulk/combo\n")
		}

		buf.WriteString(fmt.Sprintf("   %s\n", item.URL))
		if i < len(export.Results)-1 {
			buf.WriteString("\n")
		}
	}

	return buf.String()
}

// ExportToCSV converts a SearchExport to CSV format with columns: Rank, Product, Platform, Price, PerUnitPrice, Type, URL
func ExportToCSV(export *SearchExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Rank", "Product", "Platform", "Price", "PerUnitPrice", "Type", "URL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, item := range export.Results {
		record := []string{
			strconv.Itoa(i + 1),
			item.ProductName,
			item.Platform,
			stringValue(item.Price),
			stringValue(item.PerUnitPrice),
			string(item.ProductType),
			item.URL,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a SearchExport to Markdown format
func ExportToMarkdown(export *SearchExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", export.Query))
	buf.WriteString(fmt.Sprintf("**Session**: %s\n", export.SessionID))
	buf.WriteString(fmt.Sprintf("**Results**: %d\n\n", len(export.Results)))

	buf.WriteString("## Results\n\n")
	for i, item := range export.Results {
		pricePart := ""
		if price := item.DisplayPrice(); price != "" {
			pricePart = fmt.Sprintf(" — %s", price)
		}
		buf.WriteString(fmt.Sprintf("%d. [%s](%s) (%s)%s\n", i+1, item.ProductName, item.URL, item.Platform, pricePart))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a SearchExport to plain text format
func ExportToText(export *SearchExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Search: %s\n", export.Query))
	buf.WriteString(fmt.Sprintf("Session: %s\n", export.SessionID))
	buf.WriteString(fmt.Sprintf("Results: %d\n\n", len(export.Results)))

	for i, item := range export.Results {
		buf.WriteString(fmt.Sprintf("%d. %s (%s) %s\n", i+1, item.ProductName, item.Platform, item.DisplayPrice()))
		buf.WriteString(fmt.Sprintf("   %s\n", item.URL))
	}

	return buf.Bytes(), nil
}

// ToMetadataJSON generates a JSON representation of the search metadata (without results)
func ToMetadataJSON(export *SearchExport) ([]byte, error) {
	meta := map[string]any{
		"session_id":    export.SessionID,
		"query":         export.Query,
		"input_type":    export.InputType,
		"total_results": len(export.Results),
	}
	return json.MarshalIndent(meta, "", "  ")
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	ResultsFile  string
	MetadataFile string
}

// WriteCSVExport exports a search to CSV format with accompanying metadata JSON file.
//
// Defaults to the session ID as the base filename & creates {base}_results.csv and {base}_metadata.json
func WriteCSVExport(export *SearchExport, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = export.SessionID
	}

	csvData, err := ExportToCSV(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	resultsFile := baseFilepath + "_results.csv"
	if err := os.WriteFile(resultsFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		ResultsFile:  resultsFile,
		MetadataFile: metadataFile,
	}, nil
}

// WriteMarkdownExport exports a search to a Markdown file.
//
// Defaults to {session_id}.md as the filename.
func WriteMarkdownExport(export *SearchExport, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%s.md", export.SessionID)
	}

	mdData, err := ExportToMarkdown(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	if err := os.WriteFile(filepath, mdData, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return filepath, nil
}

// WriteTextExport exports a search to plain text format.
//
// Defaults to {session_id}_results.txt as the filename.
func WriteTextExport(export *SearchExport, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%s_results.txt", export.SessionID)
	}

	textData, err := ExportToText(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"scout/internal/models"
)

var (
	_ list.Item = candidateItem{}
	_ list.Item = variantItem{}
	_ list.Item = resultItem{}
)

// candidateItem wraps [models.ProductCandidate] to implement [list.Item].
// The index is the confirmation key posted back to the backend.
type candidateItem struct {
	index     int
	candidate models.ProductCandidate
}

func (i candidateItem) FilterValue() string { return i.candidate.Name }
func (i candidateItem) Title() string       { return i.candidate.Name }
func (i candidateItem) Description() string {
	desc := i.candidate.Description
	if desc == "" {
		desc = i.candidate.URL
	}
	return desc
}

// variantItem wraps [models.VariantCandidate] to implement [list.Item].
type variantItem struct {
	index   int
	variant models.VariantCandidate
}

func (i variantItem) FilterValue() string { return i.variant.Value }
func (i variantItem) Title() string       { return i.variant.Value }
func (i variantItem) Description() string {
	if i.variant.Type == "" {
		return "variant"
	}
	return i.variant.Type
}

// resultItem wraps [models.ResultItem] to implement [list.Item].
type resultItem struct {
	rank   int
	result models.ResultItem
}

func (i resultItem) FilterValue() string { return i.result.ProductName }
func (i resultItem) Title() string {
	return fmt.Sprintf("%d. %s", i.rank, i.result.ProductName)
}
func (i resultItem) Description() string {
	desc := i.result.Platform
	if price := i.result.DisplayPrice(); price != "" {
		desc = fmt.Sprintf("%s • %s", desc, price)
	}
	if i.result.ProductType == models.ProductTypeBulk {
		desc = fmt.Sprintf("%s • bulk", desc)
	}
	return desc
}

// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for product discovery:
//  1. [InputView] : Enter a keyword or product URL
//  2. [StreamView] : Watch live progress logs while the backend works
//  3. [ProductConfirmView] : Pick the intended product from candidates
//  4. [VariantConfirmView] : Pick the intended variant
//  5. [ExtractionConfirmView] : Accept or reject details extracted from a URL
//  6. [ResultView] : Display the ranked price results
//
// The view [Model] implements bubbletea's standard Init/Update/View pattern.
// All session state lives in the workflow controller; the model only decides
// which view renders the controller's latest snapshot. Progress events arrive
// on the controller's stream channel and are pumped into Update one at a
// time, so controller methods are never called concurrently.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with
// contextual help displayed via charmbracelet/bubbles/help.
package ui
